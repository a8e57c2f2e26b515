package model

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedClicks disables the click quota on a link.
const UnlimitedClicks = -1

// Link describes the core short-link entity: a short code mapped to its
// original URL together with the owner, the expiry deadline and the click
// quota. All fields except ClickLimit and ClickCount are immutable after
// creation.
type Link struct {
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	ClickLimit  int       `json:"click_limit"`
	ClickCount  int       `json:"click_count"`
}

// Expired reports whether the link's TTL has elapsed at the given time.
func (l *Link) Expired(at time.Time) bool {
	return at.After(l.ExpiresAt)
}

// LimitReached reports whether the click quota is used up.
func (l *Link) LimitReached() bool {
	return l.ClickLimit != UnlimitedClicks && l.ClickCount >= l.ClickLimit
}

// Accessible reports whether a click at the given time would succeed.
func (l *Link) Accessible(at time.Time) bool {
	return !l.Expired(at) && !l.LimitReached()
}

// OwnedBy reports whether userID is the link's owner.
func (l *Link) OwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}
