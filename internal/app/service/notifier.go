package service

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Notifier receives link lifecycle notifications: a link's TTL elapsed,
// or its click quota ran out. Implementations must be safe for use from
// both the foreground request path and the background cleanup worker.
type Notifier interface {
	LinkExpired(shortCode, originalURL string)
	ClickLimitReached(shortCode, originalURL string, limit int)
}

// NopNotifier drops every notification. Used when notifications are
// disabled in configuration.
type NopNotifier struct{}

func (NopNotifier) LinkExpired(string, string) {}

func (NopNotifier) ClickLimitReached(string, string, int) {}

// ConsoleNotifier prints notifications to a writer, typically stdout of
// the interactive session.
type ConsoleNotifier struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsoleNotifier creates a notifier writing human-readable messages
// to out.
func NewConsoleNotifier(out io.Writer, logger *zap.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleNotifier{out: out, logger: logger}
}

func (n *ConsoleNotifier) LinkExpired(shortCode, originalURL string) {
	fmt.Fprintf(n.out, "\nNOTICE: link %s has expired\n  original url: %s\n", shortCode, originalURL)
	n.logger.Info("link expired notification",
		zap.String("code", shortCode))
}

func (n *ConsoleNotifier) ClickLimitReached(shortCode, originalURL string, limit int) {
	fmt.Fprintf(n.out, "\nNOTICE: link %s reached its click limit (%d)\n  original url: %s\n", shortCode, limit, originalURL)
	n.logger.Info("click limit reached notification",
		zap.String("code", shortCode),
		zap.Int("limit", limit))
}
