package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/store"
)

// Retention of swept records.
const (
	ExpiredChallengeRetention = 24 * time.Hour
	StaleCounterRetention     = 7 * 24 * time.Hour
	LoginLocationRetention    = 180 * 24 * time.Hour
)

// HousekeepingService periodically removes records nothing depends on any
// more: long expired OTP challenges, idle attempt counters and old login
// locations. None of it is needed for correctness.
type HousekeepingService struct {
	Store    store.Store
	Counters store.AttemptCounters
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour. Counters defaults to the
// store's own attempt counters.
func NewHousekeepingService(s store.Store, counters store.AttemptCounters, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if counters == nil {
		counters = s.AttemptCounters()
	}

	return &HousekeepingService{
		Store:    s,
		Counters: counters,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one sweep. Each deletion is independent - failures in one
// won't stop the others. It returns the number of rows removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var total int64

	if n, err := s.Store.OTPChallenges().DeleteExpiredOTPChallenges(ctx, now.Add(-ExpiredChallengeRetention)); err != nil {
		s.Logger.Error("failed to delete expired otp challenges", "error", err)
	} else {
		s.Logger.Debug("deleted expired otp challenges", "count", n)
		total += n
	}

	if n, err := s.Counters.DeleteStaleAttemptCounters(ctx, now.Add(-StaleCounterRetention), now); err != nil {
		s.Logger.Error("failed to delete stale attempt counters", "error", err)
	} else {
		s.Logger.Debug("deleted stale attempt counters", "count", n)
		total += n
	}

	if n, err := s.Store.LoginLocations().DeleteLoginLocationsBefore(ctx, now.Add(-LoginLocationRetention)); err != nil {
		s.Logger.Error("failed to delete old login locations", "error", err)
	} else {
		s.Logger.Debug("deleted old login locations", "count", n)
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
	return total
}
