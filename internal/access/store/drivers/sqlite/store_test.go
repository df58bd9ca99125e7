package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestAttemptCounters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.AttemptCounters()
	action := domain.ActionLogin

	t.Run("missing counter is not found", func(t *testing.T) {
		_, err := repo.GetAttemptCounter(ctx, "nobody@example.com", action)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("increments within the window", func(t *testing.T) {
		id := "alice@example.com"
		for i := 1; i <= 3; i++ {
			c, err := repo.IncrementAttemptCounter(ctx, id, action, epoch.Add(time.Duration(i)*time.Minute), 15*time.Minute)
			require.NoError(t, err)
			require.Equal(t, i, c.Count)
			require.Equal(t, epoch.Add(time.Minute), c.WindowStart)
		}
	})

	t.Run("opens a new window once the old one elapses", func(t *testing.T) {
		id := "bob@example.com"
		_, err := repo.IncrementAttemptCounter(ctx, id, action, epoch, 15*time.Minute)
		require.NoError(t, err)
		_, err = repo.IncrementAttemptCounter(ctx, id, action, epoch.Add(time.Minute), 15*time.Minute)
		require.NoError(t, err)

		c, err := repo.IncrementAttemptCounter(ctx, id, action, epoch.Add(15*time.Minute), 15*time.Minute)
		require.NoError(t, err)
		require.Equal(t, 1, c.Count)
		require.Equal(t, epoch.Add(15*time.Minute), c.WindowStart)
	})

	t.Run("lock only applies at threshold and once", func(t *testing.T) {
		id := "carol@example.com"
		for i := 0; i < 2; i++ {
			_, err := repo.IncrementAttemptCounter(ctx, id, action, epoch, 15*time.Minute)
			require.NoError(t, err)
		}

		applied, err := repo.LockAttemptCounter(ctx, id, action, 3, epoch, epoch.Add(15*time.Minute), 1)
		require.NoError(t, err)
		require.False(t, applied, "below threshold")

		_, err = repo.IncrementAttemptCounter(ctx, id, action, epoch, 15*time.Minute)
		require.NoError(t, err)

		applied, err = repo.LockAttemptCounter(ctx, id, action, 3, epoch, epoch.Add(15*time.Minute), 1)
		require.NoError(t, err)
		require.True(t, applied)

		applied, err = repo.LockAttemptCounter(ctx, id, action, 3, epoch.Add(time.Minute), epoch.Add(time.Hour), 2)
		require.NoError(t, err)
		require.False(t, applied, "already locked")

		c, err := repo.GetAttemptCounter(ctx, id, action)
		require.NoError(t, err)
		require.NotNil(t, c.LockoutUntil)
		require.Equal(t, epoch.Add(15*time.Minute), *c.LockoutUntil)
		require.Equal(t, 1, c.Lockouts)
	})

	t.Run("elapsed lockout clears count but keeps escalation", func(t *testing.T) {
		id := "dave@example.com"
		_, err := repo.IncrementAttemptCounter(ctx, id, action, epoch, 15*time.Minute)
		require.NoError(t, err)
		_, err = repo.LockAttemptCounter(ctx, id, action, 1, epoch, epoch.Add(15*time.Minute), 1)
		require.NoError(t, err)

		cleared, err := repo.ClearElapsedLockout(ctx, id, action, epoch.Add(14*time.Minute))
		require.NoError(t, err)
		require.False(t, cleared)

		cleared, err = repo.ClearElapsedLockout(ctx, id, action, epoch.Add(15*time.Minute))
		require.NoError(t, err)
		require.True(t, cleared)

		c, err := repo.GetAttemptCounter(ctx, id, action)
		require.NoError(t, err)
		require.Zero(t, c.Count)
		require.Nil(t, c.LockoutUntil)
		require.Equal(t, 1, c.Lockouts)
	})

	t.Run("reset clears everything and reports change", func(t *testing.T) {
		id := "erin@example.com"
		changed, err := repo.ResetAttemptCounter(ctx, id, action, epoch)
		require.NoError(t, err)
		require.False(t, changed)

		_, err = repo.IncrementAttemptCounter(ctx, id, action, epoch, 15*time.Minute)
		require.NoError(t, err)
		_, err = repo.LockAttemptCounter(ctx, id, action, 1, epoch, epoch.Add(time.Hour), 3)
		require.NoError(t, err)

		changed, err = repo.ResetAttemptCounter(ctx, id, action, epoch.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, changed)

		c, err := repo.GetAttemptCounter(ctx, id, action)
		require.NoError(t, err)
		require.Zero(t, c.Count)
		require.Nil(t, c.LockoutUntil)
		require.Zero(t, c.Lockouts)
		require.Nil(t, c.LastLockoutAt)
	})

	t.Run("actions are counted separately", func(t *testing.T) {
		id := "frank@example.com"
		_, err := repo.IncrementAttemptCounter(ctx, id, domain.ActionLogin, epoch, 15*time.Minute)
		require.NoError(t, err)
		c, err := repo.IncrementAttemptCounter(ctx, id, domain.ActionPasswordReset, epoch, 15*time.Minute)
		require.NoError(t, err)
		require.Equal(t, 1, c.Count)
	})

	t.Run("stale sweep spares locked counters", func(t *testing.T) {
		_, err := repo.IncrementAttemptCounter(ctx, "stale@example.com", action, epoch, time.Minute)
		require.NoError(t, err)
		_, err = repo.IncrementAttemptCounter(ctx, "locked@example.com", action, epoch, time.Minute)
		require.NoError(t, err)
		_, err = repo.LockAttemptCounter(ctx, "locked@example.com", action, 1, epoch, epoch.Add(72*time.Hour), 1)
		require.NoError(t, err)

		_, err = repo.DeleteStaleAttemptCounters(ctx, epoch.Add(time.Hour), epoch.Add(2*time.Hour))
		require.NoError(t, err)

		_, err = repo.GetAttemptCounter(ctx, "stale@example.com", action)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = repo.GetAttemptCounter(ctx, "locked@example.com", action)
		require.NoError(t, err)
	})
}

func newChallenge(target, purpose string, at time.Time) domain.OTPChallenge {
	return domain.OTPChallenge{
		ID:                idx.NewAt(at).String(),
		Target:            target,
		Channel:           domain.ChannelEmail,
		CodeHash:          "argon2id$hash",
		Purpose:           purpose,
		CreatedAt:         at,
		ExpiresAt:         at.Add(10 * time.Minute),
		AttemptsRemaining: 3,
	}
}

func TestOTPChallenges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.OTPChallenges()

	t.Run("only one current challenge per target and purpose", func(t *testing.T) {
		first := newChallenge("a@example.com", "login", epoch)
		require.NoError(t, repo.CreateOTPChallenge(ctx, first))

		err := repo.CreateOTPChallenge(ctx, newChallenge("a@example.com", "login", epoch.Add(time.Second)))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		// Different purpose is independent
		require.NoError(t, repo.CreateOTPChallenge(ctx, newChallenge("a@example.com", "document_confirmation", epoch)))

		n, err := repo.SupersedeOTPChallenges(ctx, "a@example.com", "login")
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		second := newChallenge("a@example.com", "login", epoch.Add(time.Minute))
		require.NoError(t, repo.CreateOTPChallenge(ctx, second))

		cur, err := repo.GetCurrentOTPChallenge(ctx, "a@example.com", "login")
		require.NoError(t, err)
		require.Equal(t, second.ID, cur.ID)

		ok, err := repo.ConsumeOTPChallenge(ctx, first.ID, epoch.Add(2*time.Minute))
		require.NoError(t, err)
		require.False(t, ok, "superseded challenge cannot be consumed")
	})

	t.Run("attempts stop at zero", func(t *testing.T) {
		c := newChallenge("b@example.com", "login", epoch)
		require.NoError(t, repo.CreateOTPChallenge(ctx, c))

		for want := 2; want >= 0; want-- {
			got, err := repo.DecrementOTPChallengeAttempts(ctx, c.ID)
			require.NoError(t, err)
			require.Equal(t, want, got.AttemptsRemaining)
		}

		_, err := repo.DecrementOTPChallengeAttempts(ctx, c.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		ok, err := repo.ConsumeOTPChallenge(ctx, c.ID, epoch)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("consume is single use and respects expiry", func(t *testing.T) {
		c := newChallenge("c@example.com", "login", epoch)
		require.NoError(t, repo.CreateOTPChallenge(ctx, c))

		ok, err := repo.ConsumeOTPChallenge(ctx, c.ID, epoch.Add(11*time.Minute))
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = repo.ConsumeOTPChallenge(ctx, c.ID, epoch.Add(9*time.Minute))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.ConsumeOTPChallenge(ctx, c.ID, epoch.Add(9*time.Minute))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := repo.GetCurrentOTPChallenge(ctx, "c@example.com", "login")
		require.NoError(t, err)
		require.True(t, got.Consumed)
		require.NotNil(t, got.ConsumedAt)
	})

	t.Run("delivery flag and expiry sweep", func(t *testing.T) {
		c := newChallenge("d@example.com", "login", epoch)
		require.NoError(t, repo.CreateOTPChallenge(ctx, c))
		require.NoError(t, repo.MarkOTPChallengeDelivered(ctx, c.ID))

		got, err := repo.GetCurrentOTPChallenge(ctx, "d@example.com", "login")
		require.NoError(t, err)
		require.True(t, got.Delivered)

		n, err := repo.DeleteExpiredOTPChallenges(ctx, epoch.Add(time.Hour))
		require.NoError(t, err)
		require.Positive(t, n)

		_, err = repo.GetCurrentOTPChallenge(ctx, "d@example.com", "login")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAccessCodes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.AccessCodes()

	code := domain.AccessCode{
		ID:         idx.NewAt(epoch).String(),
		CodeHash:   "hash-1",
		CodePrefix: "AB12-CD34",
		OwnerID:    "owner-1",
		Scope:      domain.ScopeFull,
		CreatedAt:  epoch,
		ExpiresAt:  epoch.Add(24 * time.Hour),
	}
	require.NoError(t, repo.CreateAccessCode(ctx, code))

	t.Run("duplicate hash is rejected", func(t *testing.T) {
		dup := code
		dup.ID = idx.NewAt(epoch.Add(time.Second)).String()
		require.ErrorIs(t, repo.CreateAccessCode(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("single document scope requires a target", func(t *testing.T) {
		bad := domain.AccessCode{
			ID:         idx.NewAt(epoch).String(),
			CodeHash:   "hash-bad",
			CodePrefix: "ZZZZ-ZZZZ",
			OwnerID:    "owner-1",
			Scope:      domain.ScopeSingleDocument,
			CreatedAt:  epoch,
			ExpiresAt:  epoch.Add(time.Hour),
		}
		require.Error(t, repo.CreateAccessCode(ctx, bad))
	})

	t.Run("extend from the later of expiry and now", func(t *testing.T) {
		got, ok, err := repo.ExtendAccessCode(ctx, code.ID, epoch, 48*time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, epoch.Add(72*time.Hour), got.ExpiresAt)

		later := epoch.Add(100 * time.Hour)
		got, ok, err = repo.ExtendAccessCode(ctx, code.ID, later, 24*time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, later.Add(24*time.Hour), got.ExpiresAt)
	})

	t.Run("revoke transitions once and blocks extension", func(t *testing.T) {
		ok, err := repo.RevokeAccessCode(ctx, code.ID, epoch)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = repo.RevokeAccessCode(ctx, code.ID, epoch)
		require.NoError(t, err)
		require.False(t, ok)

		_, ok, err = repo.ExtendAccessCode(ctx, code.ID, epoch, time.Hour)
		require.NoError(t, err)
		require.False(t, ok)

		got, err := repo.GetAccessCodeByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, got.Revoked)
		require.NotNil(t, got.RevokedAt)
	})

	t.Run("a code can only be superseded once", func(t *testing.T) {
		next := domain.AccessCode{
			ID:         idx.NewAt(epoch.Add(time.Minute)).String(),
			CodeHash:   "hash-2",
			CodePrefix: "EF56-GH78",
			OwnerID:    "owner-1",
			Scope:      domain.ScopeFull,
			CreatedAt:  epoch,
			ExpiresAt:  epoch.Add(time.Hour),
			Supersedes: code.ID,
		}
		require.NoError(t, repo.CreateAccessCode(ctx, next))

		fork := next
		fork.ID = idx.NewAt(epoch.Add(2 * time.Minute)).String()
		fork.CodeHash = "hash-3"
		require.ErrorIs(t, repo.CreateAccessCode(ctx, fork), store.ErrAlreadyExists)

		list, err := repo.ListAccessCodesByOwner(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
	})
}

func TestSecurityEventsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	repo := s.SecurityEvents()

	for i, risk := range []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh} {
		require.NoError(t, repo.AppendSecurityEvent(ctx, domain.SecurityEvent{
			ID:        idx.NewAt(epoch.Add(time.Duration(i) * time.Second)).String(),
			EventType: "test_event",
			ActorID:   "actor-1",
			Details:   map[string]string{"n": string(rune('a' + i))},
			RiskLevel: risk,
			CreatedAt: epoch.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := repo.ListSecurityEvents(ctx, domain.SecurityEventFilter{MinRisk: domain.RiskMedium})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, domain.RiskHigh, events[0].RiskLevel)
	require.Equal(t, "c", events[0].Details["n"])

	events, err = repo.ListSecurityEvents(ctx, domain.SecurityEventFilter{ActorID: "someone-else"})
	require.NoError(t, err)
	require.Empty(t, events)

	_, err = s.db.ExecContext(ctx, `DELETE FROM security_events`)
	require.Error(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE security_events SET risk_level = 'low'`)
	require.Error(t, err)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Documents().UpsertDocument(ctx, domain.Document{ID: "d1", OwnerID: "o1", Title: "Directive", UpdatedAt: epoch}))
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Documents().GetDocument(ctx, "d1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfilesAndLocations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := domain.Profile{
		OwnerID:   "owner-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		BirthDate: time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC),
		UpdatedAt: epoch,
	}
	require.NoError(t, s.Profiles().UpsertProfile(ctx, p))
	got, err := s.Profiles().GetProfile(ctx, "owner-1")
	require.NoError(t, err)
	require.Equal(t, p.BirthDate, got.BirthDate)

	locs := s.LoginLocations()
	require.NoError(t, locs.RecordLoginLocation(ctx, "ada@example.com", "AU|10.1.0.0/16", epoch))
	require.NoError(t, locs.RecordLoginLocation(ctx, "ada@example.com", "NZ|10.2.0.0/16", epoch.Add(time.Hour)))
	require.NoError(t, locs.RecordLoginLocation(ctx, "ada@example.com", "AU|10.1.0.0/16", epoch.Add(2*time.Hour)))

	recent, err := locs.ListRecentLoginLocations(ctx, "ada@example.com", 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "AU|10.1.0.0/16", recent[0].LocationKey)
	require.Equal(t, 2, recent[0].Logins)
}
