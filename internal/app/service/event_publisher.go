package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/magaru/shortly/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// EventPublisher is a Notifier that publishes link lifecycle events to
// NATS as JSON, so external consumers (mailers, dashboards) can react to
// expiries and exhausted quotas. Publishing is best-effort: failures are
// logged, never surfaced to the operation that triggered the event.
type EventPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewEventPublisher creates a NATS-backed notification sink.
func NewEventPublisher(conn *nats.Conn, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventPublisher{conn: conn, logger: logger}
}

func (p *EventPublisher) LinkExpired(shortCode, originalURL string) {
	p.publish(model.EventSubjectExpired, model.LinkEvent{
		ID:          uuid.New().String(),
		Kind:        model.EventLinkExpired,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		Timestamp:   time.Now(),
	})
}

func (p *EventPublisher) ClickLimitReached(shortCode, originalURL string, limit int) {
	p.publish(model.EventSubjectLimitReached, model.LinkEvent{
		ID:          uuid.New().String(),
		Kind:        model.EventLimitReached,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		ClickLimit:  limit,
		Timestamp:   time.Now(),
	})
}

func (p *EventPublisher) publish(subject string, event model.LinkEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal link event", zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish link event",
			zap.String("subject", subject),
			zap.String("code", event.ShortCode),
			zap.Error(err))
	}
}

var (
	_ Notifier = NopNotifier{}
	_ Notifier = (*ConsoleNotifier)(nil)
	_ Notifier = (*EventPublisher)(nil)
)
