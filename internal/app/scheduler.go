package app

import (
	"context"
	"time"

	"github.com/dormops/dormd/internal/service"
	"go.uber.org/zap"
)

// Scheduler drives the background reconciliation jobs
type Scheduler struct {
	expiration *service.ExpirationService
	logger     *zap.Logger
	stopChan   chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(expiration *service.ExpirationService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		expiration: expiration,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the background jobs
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runExpirationTask(ctx)
}

// Stop stops the background jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runExpirationTask sweeps expired assignments once a day. The sweep is
// idempotent, so the exact time of day does not matter and a missed tick
// is caught up by the next one.
func (s *Scheduler) runExpirationTask(ctx context.Context) {
	// First run right at startup
	s.sweep(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Expiration task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Expiration task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if err := s.expiration.RunSweep(ctx, time.Now()); err != nil {
		s.logger.Error("Expiration sweep failed", zap.Error(err))
	}
}
