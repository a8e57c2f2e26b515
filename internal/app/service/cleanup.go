package service

import (
	"time"

	"go.uber.org/zap"
)

// CleanupWorker periodically removes expired links through the link
// service. Sweeps run on one dedicated goroutine, so at most one sweep is
// ever in flight; ticks due while a sweep is still running are dropped.
type CleanupWorker struct {
	logger   *zap.Logger
	service  *LinkService
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewCleanupWorker creates a worker sweeping at the given interval.
func NewCleanupWorker(logger *zap.Logger, service *LinkService, interval time.Duration) *CleanupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupWorker{
		logger:   logger,
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins periodic sweeps on a background goroutine.
func (w *CleanupWorker) Start() {
	go w.run()
}

// Stop ends the loop and waits for an in-flight sweep to finish. It must
// be called at most once.
func (w *CleanupWorker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}

func (w *CleanupWorker) run() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cleanup worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopChan:
			w.logger.Info("cleanup worker stopped")
			return
		}
	}
}

// sweep runs one bulk-expire pass. A failure inside a single sweep is
// recovered and logged; it must not kill the loop.
func (w *CleanupWorker) sweep() {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("cleanup sweep failed", zap.Any("panic", r))
		}
	}()

	if deleted := w.service.CleanupExpired(); deleted > 0 {
		w.logger.Info("cleanup sweep completed", zap.Int("deleted", deleted))
	}
}
