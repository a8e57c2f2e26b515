package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLink_Expired(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	link := &Link{ExpiresAt: deadline}

	assert.False(t, link.Expired(deadline.Add(-time.Second)))
	// Expiry is strict: the link is still alive at the exact deadline.
	assert.False(t, link.Expired(deadline))
	assert.True(t, link.Expired(deadline.Add(time.Nanosecond)))
}

func TestLink_LimitReached(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		count   int
		reached bool
	}{
		{"below limit", 5, 4, false},
		{"at limit", 5, 5, true},
		{"above limit", 5, 6, true},
		{"zero limit", 0, 0, true},
		{"unlimited", UnlimitedClicks, 1_000_000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &Link{ClickLimit: tt.limit, ClickCount: tt.count}
			assert.Equal(t, tt.reached, link.LimitReached())
		})
	}
}

func TestLink_Accessible(t *testing.T) {
	now := time.Now()
	link := &Link{ExpiresAt: now.Add(time.Hour), ClickLimit: 1}

	assert.True(t, link.Accessible(now))
	assert.False(t, link.Accessible(now.Add(2*time.Hour)), "expired link")

	link.ClickCount = 1
	assert.False(t, link.Accessible(now), "exhausted link")
}

func TestLink_OwnedBy(t *testing.T) {
	owner := uuid.New()
	link := &Link{OwnerID: owner}

	assert.True(t, link.OwnedBy(owner))
	assert.False(t, link.OwnedBy(uuid.New()))
}
