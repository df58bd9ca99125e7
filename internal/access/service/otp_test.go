package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/stretchr/testify/require"
)

func TestOTPIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "alice@example.com"

	id, err := h.otp.Issue(ctx, "Alice@Example.com", domain.ChannelEmail, "login")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	code := h.sender.lastCode(t, target)
	require.Len(t, code, 6)

	c, err := h.store.OTPChallenges().GetCurrentOTPChallenge(ctx, target, "login")
	require.NoError(t, err)
	require.Equal(t, id, c.ID)
	require.True(t, c.Delivered)
	require.NotContains(t, c.CodeHash, code)
	require.Equal(t, c.CreatedAt.Add(10*time.Minute), c.ExpiresAt)

	res, err := h.otp.Verify(ctx, target, "login", code)
	require.NoError(t, err)
	require.True(t, res.Valid)

	// A consumed challenge never verifies again.
	res, err = h.otp.Verify(ctx, target, "login", code)
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, domain.ReasonExhaustedOrConsumed, res.Reason)
}

func TestOTPExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("valid at minute nine", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.otp.Issue(ctx, "+61412345678", domain.ChannelSMS, "document_confirmation")
		require.NoError(t, err)
		code := h.sender.lastCode(t, "+61412345678")

		h.clock.Advance(9 * time.Minute)
		res, err := h.otp.Verify(ctx, "+61412345678", "document_confirmation", code)
		require.NoError(t, err)
		require.True(t, res.Valid)
	})

	t.Run("expired at minute eleven", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.otp.Issue(ctx, "+61 412 345 678", domain.ChannelSMS, "document_confirmation")
		require.NoError(t, err)
		code := h.sender.lastCode(t, "+61412345678")

		h.clock.Advance(11 * time.Minute)
		res, err := h.otp.Verify(ctx, "+61412345678", "document_confirmation", code)
		require.NoError(t, err)
		require.False(t, res.Valid)
		require.Equal(t, domain.ReasonExpired, res.Reason)
	})
}

func TestOTPReissueSupersedes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "bob@example.com"

	_, err := h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)
	first := h.sender.lastCode(t, target)

	h.clock.Advance(time.Minute)
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)
	second := h.sender.lastCode(t, target)

	if first != second {
		res, err := h.otp.Verify(ctx, target, "login", first)
		require.NoError(t, err)
		require.False(t, res.Valid)
	}

	res, err := h.otp.Verify(ctx, target, "login", second)
	require.NoError(t, err)
	require.True(t, res.Valid)

	// Purposes are independent.
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "password_reset")
	require.NoError(t, err)
}

func TestOTPMismatchExhaustsChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "carol@example.com"

	_, err := h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)
	code := h.sender.lastCode(t, target)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 3; i++ {
		res, err := h.otp.Verify(ctx, target, "login", wrong)
		require.NoError(t, err)
		require.Equal(t, domain.ReasonMismatch, res.Reason)
	}

	res, err := h.otp.Verify(ctx, target, "login", code)
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, domain.ReasonExhaustedOrConsumed, res.Reason)

	require.Equal(t, []string{
		domain.EventOTPIssued,
		domain.EventOTPMismatch,
		domain.EventOTPMismatch,
		domain.EventOTPMismatch,
		domain.EventOTPExhausted,
	}, h.eventTypes(t, target))
}

func TestOTPVerifyWithoutChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	res, err := h.otp.Verify(ctx, "nobody@example.com", "login", "123456")
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, domain.ReasonNotFound, res.Reason)
}

func TestOTPDeliveryFailureKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "dave@example.com"

	h.sender.err = errBoom
	id, err := h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.ErrorIs(t, err, ErrDeliveryFailure)
	require.NotEmpty(t, id)

	c, err := h.store.OTPChallenges().GetCurrentOTPChallenge(ctx, target, "login")
	require.NoError(t, err)
	require.Equal(t, id, c.ID)
	require.False(t, c.Delivered)

	// An undelivered challenge can be resent immediately.
	h.sender.err = nil
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)

	require.Contains(t, h.eventTypes(t, target), domain.EventOTPDeliveryFailed)
}

func TestOTPDeliveryIsTimeBounded(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.otp.DeliveryTimeout = 20 * time.Millisecond
	h.otp.Sender = SenderFunc(func(ctx context.Context, _ string, _ domain.Channel, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	_, err := h.otp.Issue(ctx, "erin@example.com", domain.ChannelEmail, "login")
	require.ErrorIs(t, err, ErrDeliveryFailure)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestOTPResendThrottle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "frank@example.com"

	_, err := h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)

	h.clock.Advance(10 * time.Second)
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.ErrorIs(t, err, ErrRateLimited)

	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	require.Equal(t, 20*time.Second, rl.RetryAfter)

	h.clock.Advance(20 * time.Second)
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)
}

func TestOTPValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	cases := []struct {
		name    string
		target  string
		channel domain.Channel
		purpose string
	}{
		{"bad email", "not-an-email", domain.ChannelEmail, "login"},
		{"display name", "Alice <alice@example.com>", domain.ChannelEmail, "login"},
		{"bad phone", "0412345678", domain.ChannelSMS, "login"},
		{"email on sms", "alice@example.com", domain.ChannelSMS, "login"},
		{"unknown channel", "alice@example.com", domain.Channel("pigeon"), "login"},
		{"bad purpose", "alice@example.com", domain.ChannelEmail, "Login!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.otp.Issue(ctx, tc.target, tc.channel, tc.purpose)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := h.otp.Verify(ctx, "alice@example.com", "login", "12ab56")
	require.ErrorIs(t, err, ErrValidation)
}

func TestOTPVerifyGuarded(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	target := "grace@example.com"

	// Every miss counts against the guard, even with no challenge at all.
	for i := 0; i < 5; i++ {
		res, err := h.otp.VerifyGuarded(ctx, target, "login", "123456")
		require.NoError(t, err)
		require.False(t, res.Valid)
	}

	_, err := h.otp.VerifyGuarded(ctx, target, "login", "123456")
	require.ErrorIs(t, err, ErrLocked)

	// After the lockout a correct code succeeds and clears the counter.
	h.clock.Advance(15 * time.Minute)
	_, err = h.otp.Issue(ctx, target, domain.ChannelEmail, "login")
	require.NoError(t, err)
	code := h.sender.lastCode(t, target)

	res, err := h.otp.VerifyGuarded(ctx, target, "login", code)
	require.NoError(t, err)
	require.True(t, res.Valid)

	d, err := h.guard.CheckAttempt(ctx, target, domain.ActionOTPVerification)
	require.NoError(t, err)
	require.Equal(t, 5, d.RemainingAttempts)
}

func TestOTPMessage(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Document confirmation code: 123456", otpMessage("document_confirmation", "123456"))
	require.Equal(t, "Login code: 000111", otpMessage("login", "000111"))
}
