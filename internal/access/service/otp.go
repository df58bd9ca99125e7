package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/idx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

const (
	DefaultOTPTTL          = 10 * time.Minute
	DefaultOTPAttempts     = 3
	DefaultResendInterval  = 30 * time.Second
	DefaultDeliveryTimeout = 5 * time.Second

	otpDigits = 6
)

var (
	purposePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)
	e164Pattern    = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)
	otpCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// OTPService issues and verifies one-time codes. At most one challenge per
// (target, purpose) is live; issuing supersedes the previous one.
type OTPService struct {
	Store   store.Store
	Guard   *Guard
	Sender  Sender
	Events  *EventLog
	Metrics *Metrics
	Now     func() time.Time

	TTL             time.Duration
	MaxAttempts     int
	ResendInterval  time.Duration
	DeliveryTimeout time.Duration
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

func (s *OTPService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultOTPAttempts
}

func (s *OTPService) resendInterval() time.Duration {
	if s.ResendInterval > 0 {
		return s.ResendInterval
	}
	return DefaultResendInterval
}

func (s *OTPService) deliveryTimeout() time.Duration {
	if s.DeliveryTimeout > 0 {
		return s.DeliveryTimeout
	}
	return DefaultDeliveryTimeout
}

// Lifetime is how long a freshly issued challenge stays verifiable.
func (s *OTPService) Lifetime() time.Duration {
	return s.ttl()
}

// Issue creates a challenge for (target, purpose) and delivers its code. If
// delivery fails the challenge still exists and its id is returned together
// with ErrDeliveryFailure.
func (s *OTPService) Issue(ctx context.Context, target string, channel domain.Channel, purpose string) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input.
	if !channel.Valid() {
		return "", validationError("%v: %q", domain.ErrUnknownChannel, channel)
	}
	target, err := normalizeTargetFor(target, channel)
	if err != nil {
		return "", err
	}
	if !purposePattern.MatchString(purpose) {
		return "", validationError("invalid purpose")
	}

	now := s.now()

	// 2. Throttle resends of a challenge that was delivered moments ago.
	current, err := s.Store.OTPChallenges().GetCurrentOTPChallenge(ctx, target, purpose)
	switch {
	case err == nil:
		if current.Delivered && !current.Consumed {
			if wait := current.CreatedAt.Add(s.resendInterval()).Sub(now); wait > 0 {
				return "", &RateLimitedError{RetryAfter: wait}
			}
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return "", unavailable("get current challenge", err)
	}

	// 3. Generate the code and keep only its hash.
	code, err := cryptox.GenerateNumericCode(otpDigits)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	hash, err := cryptox.HashSecret(code)
	if err != nil {
		return "", fmt.Errorf("hash otp code: %w", err)
	}

	challenge := domain.OTPChallenge{
		ID:                idx.NewAt(now).String(),
		Target:            target,
		Channel:           channel,
		CodeHash:          hash,
		Purpose:           purpose,
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.ttl()),
		AttemptsRemaining: s.maxAttempts(),
	}

	// 4. Supersede and insert atomically.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.OTPChallenges().SupersedeOTPChallenges(ctx, target, purpose); err != nil {
			return err
		}
		return tx.OTPChallenges().CreateOTPChallenge(ctx, challenge)
	})
	if err != nil {
		log.Error("failed to store otp challenge", slog.Any("error", err))
		return "", unavailable("create challenge", err)
	}

	s.Events.Record(ctx, domain.EventOTPIssued, target, domain.RiskLow, map[string]string{
		"challenge_id": challenge.ID,
		"channel":      string(channel),
		"purpose":      purpose,
	})
	s.Metrics.otpIssue(ctx, channel)

	// 5. Deliver within a bounded time.
	dctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout())
	defer cancel()

	if err := s.Sender.Send(dctx, target, channel, otpMessage(purpose, code)); err != nil {
		log.Warn("otp delivery failed",
			slog.String("challenge_id", challenge.ID),
			slog.String("channel", string(channel)),
			slog.Any("error", err),
		)
		s.Events.Record(ctx, domain.EventOTPDeliveryFailed, target, domain.RiskLow, map[string]string{
			"challenge_id": challenge.ID,
			"channel":      string(channel),
		})
		return challenge.ID, fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	if err := s.Store.OTPChallenges().MarkOTPChallengeDelivered(ctx, challenge.ID); err != nil {
		log.Warn("failed to mark challenge delivered",
			slog.String("challenge_id", challenge.ID),
			slog.Any("error", err),
		)
	}

	return challenge.ID, nil
}

// Verify checks a submitted code against the live challenge. It does not
// consult the brute-force guard; use VerifyGuarded for caller input.
func (s *OTPService) Verify(ctx context.Context, target, purpose, code string) (domain.OTPResult, error) {
	target, purpose, code, err := validateOTPInput(target, purpose, code)
	if err != nil {
		return domain.OTPResult{}, err
	}

	// Once started, a verification commits or fails as a whole.
	ctx = context.WithoutCancel(ctx)

	result, err := s.verify(ctx, target, purpose, code)
	if err != nil {
		return domain.OTPResult{}, err
	}
	s.Metrics.otpVerification(ctx, result.Reason)
	return result, nil
}

// VerifyGuarded runs Verify behind the guard keyed by the target.
func (s *OTPService) VerifyGuarded(ctx context.Context, target, purpose, code string) (domain.OTPResult, error) {
	target, purpose, code, err := validateOTPInput(target, purpose, code)
	if err != nil {
		return domain.OTPResult{}, err
	}

	var result domain.OTPResult
	_, err = s.Guard.Protect(ctx, target, domain.ActionOTPVerification, func(ctx context.Context) (bool, error) {
		r, err := s.Verify(ctx, target, purpose, code)
		if err != nil {
			return false, err
		}
		result = r
		return r.Valid, nil
	})
	if err != nil {
		return domain.OTPResult{}, err
	}
	return result, nil
}

func (s *OTPService) verify(ctx context.Context, target, purpose, code string) (domain.OTPResult, error) {
	now := s.now()
	repo := s.Store.OTPChallenges()

	// 1. Find the live challenge.
	c, err := repo.GetCurrentOTPChallenge(ctx, target, purpose)
	if errors.Is(err, store.ErrNotFound) {
		return fail(domain.ReasonNotFound), nil
	}
	if err != nil {
		return domain.OTPResult{}, unavailable("get current challenge", err)
	}

	details := map[string]string{"challenge_id": c.ID, "purpose": purpose}

	// 2. Expired.
	if now.After(c.ExpiresAt) {
		s.Events.Record(ctx, domain.EventOTPExpired, target, domain.RiskLow, details)
		return fail(domain.ReasonExpired), nil
	}

	// 3. Consumed or out of attempts.
	if c.Consumed || c.AttemptsRemaining <= 0 {
		s.Events.Record(ctx, domain.EventOTPExhausted, target, domain.RiskMedium, details)
		return fail(domain.ReasonExhaustedOrConsumed), nil
	}

	// 4. Compare hashes.
	if err := cryptox.VerifySecret(code, c.CodeHash); err != nil {
		if !errors.Is(err, cryptox.ErrSecretMismatch) {
			return domain.OTPResult{}, fmt.Errorf("verify otp hash: %w", err)
		}

		updated, err := repo.DecrementOTPChallengeAttempts(ctx, c.ID)
		if errors.Is(err, store.ErrNotFound) {
			return fail(domain.ReasonExhaustedOrConsumed), nil
		}
		if err != nil {
			return domain.OTPResult{}, unavailable("decrement attempts", err)
		}

		details["attempts_remaining"] = strconv.Itoa(updated.AttemptsRemaining)
		s.Events.Record(ctx, domain.EventOTPMismatch, target, domain.RiskMedium, details)
		return fail(domain.ReasonMismatch), nil
	}

	// 5. Consume. Losing the race to a concurrent verify counts as consumed.
	consumed, err := repo.ConsumeOTPChallenge(ctx, c.ID, now)
	if err != nil {
		return domain.OTPResult{}, unavailable("consume challenge", err)
	}
	if !consumed {
		return fail(domain.ReasonExhaustedOrConsumed), nil
	}

	s.Events.Record(ctx, domain.EventOTPVerified, target, domain.RiskLow, details)
	return domain.OTPResult{Valid: true}, nil
}

func fail(reason domain.Reason) domain.OTPResult {
	return domain.OTPResult{Valid: false, Reason: reason}
}

func validateOTPInput(target, purpose, code string) (string, string, string, error) {
	target, err := NormalizeTarget(target)
	if err != nil {
		return "", "", "", err
	}
	if !purposePattern.MatchString(purpose) {
		return "", "", "", validationError("invalid purpose")
	}
	code = strings.TrimSpace(code)
	if !otpCodePattern.MatchString(code) {
		return "", "", "", validationError("code must be %d digits", otpDigits)
	}
	return target, purpose, code, nil
}

// NormalizeTarget canonicalises an email address or E.164 phone number.
func NormalizeTarget(target string) (string, error) {
	if strings.Contains(target, "@") {
		return normalizeTargetFor(target, domain.ChannelEmail)
	}
	return normalizeTargetFor(target, domain.ChannelSMS)
}

func normalizeTargetFor(target string, channel domain.Channel) (string, error) {
	target = strings.TrimSpace(target)
	switch channel {
	case domain.ChannelEmail:
		addr, err := mail.ParseAddress(target)
		if err != nil || addr.Name != "" || addr.Address != target {
			return "", validationError("invalid email address")
		}
		return strings.ToLower(addr.Address), nil
	case domain.ChannelSMS:
		phone := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(target)
		if !e164Pattern.MatchString(phone) {
			return "", validationError("phone number must be in E.164 format")
		}
		return phone, nil
	}
	return "", validationError("%v: %q", domain.ErrUnknownChannel, channel)
}
