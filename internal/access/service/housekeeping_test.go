package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := h.otp.Issue(ctx, "alice@example.com", domain.ChannelEmail, "login")
	require.NoError(t, err)
	_, err = h.guard.RecordFailure(ctx, "alice@example.com", domain.ActionLogin)
	require.NoError(t, err)
	h.anomaly.RecordLogin(ctx, "alice@example.com", domain.LoginContext{IP: "203.0.113.45"})

	hk := NewHousekeepingService(h.store, nil, logger, time.Hour)
	hk.Now = h.clock.Now

	// Nothing is old enough yet.
	require.Zero(t, hk.Cleanup(ctx))

	h.clock.Advance(181 * 24 * time.Hour)
	require.Equal(t, int64(3), hk.Cleanup(ctx))

	_, err = h.store.OTPChallenges().GetCurrentOTPChallenge(ctx, "alice@example.com", "login")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = h.store.AttemptCounters().GetAttemptCounter(ctx, "alice@example.com", domain.ActionLogin)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := NewHousekeepingService(h.store, nil, logger, 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
