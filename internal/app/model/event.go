package model

import "time"

// Link event kinds emitted by the eventing notification sink.
const (
	EventLinkExpired  = "link_expired"
	EventLimitReached = "limit_reached"
)

// NATS subjects the link events are published on.
const (
	EventSubjectExpired      = "shortly.links.expired"
	EventSubjectLimitReached = "shortly.links.limit_reached"
)

// LinkEvent is the wire form of an expiry or quota notification.
type LinkEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClickLimit  int       `json:"click_limit,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
