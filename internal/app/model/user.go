package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account identified by an opaque UUID. There is no
// authentication layer; holding the UUID is what ownership means.
type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser mints a user with a fresh random identifier.
func NewUser(now time.Time) *User {
	return &User{
		ID:        uuid.New(),
		CreatedAt: now,
	}
}
