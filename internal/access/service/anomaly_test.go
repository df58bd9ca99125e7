package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/stretchr/testify/require"
)

func TestNetworkResolver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NetworkResolver{}

	loc, err := r.Resolve(ctx, domain.LoginContext{IP: "203.0.113.45", Country: "au"})
	require.NoError(t, err)
	require.Equal(t, "AU|203.0.0.0/16", loc.Key)

	loc, err = r.Resolve(ctx, domain.LoginContext{IP: "::ffff:203.0.113.45"})
	require.NoError(t, err)
	require.Equal(t, "ZZ|203.0.0.0/16", loc.Key)

	loc, err = r.Resolve(ctx, domain.LoginContext{IP: "2001:db8:1234::1", Country: "NZ"})
	require.NoError(t, err)
	require.Equal(t, "NZ|2001:db8::/32", loc.Key)

	_, err = r.Resolve(ctx, domain.LoginContext{IP: "not-an-ip"})
	require.ErrorIs(t, err, ErrLocationUnavailable)
}

func TestIsSuspiciousLocation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := "alice@example.com"
	home := domain.LoginContext{IP: "203.0.113.45", Country: "AU"}

	t.Run("no history is not suspicious", func(t *testing.T) {
		require.False(t, h.anomaly.IsSuspiciousLocation(ctx, id, home))
	})

	h.anomaly.RecordLogin(ctx, id, home)

	t.Run("known network", func(t *testing.T) {
		require.False(t, h.anomaly.IsSuspiciousLocation(ctx, id, domain.LoginContext{IP: "203.0.7.9", Country: "AU"}))
	})

	t.Run("new network", func(t *testing.T) {
		require.True(t, h.anomaly.IsSuspiciousLocation(ctx, id, domain.LoginContext{IP: "198.51.100.7", Country: "AU"}))
		require.Contains(t, h.eventTypes(t, id), domain.EventSuspiciousLocation)
	})

	t.Run("unresolvable fails open", func(t *testing.T) {
		require.False(t, h.anomaly.IsSuspiciousLocation(ctx, id, domain.LoginContext{IP: ""}))
		require.Contains(t, h.eventTypes(t, id), domain.EventLocationUnresolved)
	})

	t.Run("only the most recent locations count", func(t *testing.T) {
		for i := 1; i <= DefaultLocationHistory; i++ {
			h.clock.Advance(time.Hour)
			h.anomaly.RecordLogin(ctx, id, domain.LoginContext{IP: fmt.Sprintf("10.%d.0.1", i), Country: "AU"})
		}
		require.True(t, h.anomaly.IsSuspiciousLocation(ctx, id, home))
	})
}

func TestIsSuspiciousLocationFailsOpenOnStoreError(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.anomaly.RecordLogin(ctx, "bob@example.com", domain.LoginContext{IP: "203.0.113.45"})
	require.NoError(t, h.store.Close())

	require.False(t, h.anomaly.IsSuspiciousLocation(ctx, "bob@example.com", domain.LoginContext{IP: "198.51.100.7"}))
}

func TestLoginService(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	login := &LoginService{Guard: h.guard, Anomaly: h.anomaly}
	id := "carol@example.com"
	home := domain.LoginContext{IP: "203.0.113.45", Country: "AU"}
	away := domain.LoginContext{IP: "198.51.100.7", Country: "US"}

	a, err := login.Assess(ctx, id, home)
	require.NoError(t, err)
	require.True(t, a.Allowed)
	require.False(t, a.OTPRequired)
	require.NoError(t, login.Complete(ctx, id, home, true))

	a, err = login.Assess(ctx, id, away)
	require.NoError(t, err)
	require.True(t, a.Allowed)
	require.True(t, a.OTPRequired)

	for i := 0; i < 5; i++ {
		require.NoError(t, login.Complete(ctx, id, away, false))
	}

	a, err = login.Assess(ctx, id, home)
	require.NoError(t, err)
	require.False(t, a.Allowed)
	require.Equal(t, 15, *a.LockoutMinutes)
	require.False(t, a.OTPRequired)
}
