package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type otpChallengesRepo struct {
	q *gen.Queries
}

func (r *otpChallengesRepo) CreateOTPChallenge(ctx context.Context, c domain.OTPChallenge) error {
	err := r.q.CreateOTPChallenge(ctx, gen.CreateOTPChallengeParams{
		ID:                c.ID,
		Target:            c.Target,
		Channel:           string(c.Channel),
		CodeHash:          c.CodeHash,
		Purpose:           c.Purpose,
		CreatedAt:         toMillis(c.CreatedAt),
		ExpiresAt:         toMillis(c.ExpiresAt),
		AttemptsRemaining: int64(c.AttemptsRemaining),
	})
	return mapConstraint(err)
}

func (r *otpChallengesRepo) SupersedeOTPChallenges(ctx context.Context, target, purpose string) (int64, error) {
	return r.q.SupersedeOTPChallenges(ctx, gen.SupersedeOTPChallengesParams{
		Target:  target,
		Purpose: purpose,
	})
}

func (r *otpChallengesRepo) GetCurrentOTPChallenge(ctx context.Context, target, purpose string) (domain.OTPChallenge, error) {
	row, err := r.q.GetCurrentOTPChallenge(ctx, gen.GetCurrentOTPChallengeParams{
		Target:  target,
		Purpose: purpose,
	})
	if err != nil {
		return domain.OTPChallenge{}, mapNotFound(err)
	}
	return mapOTPChallenge(row), nil
}

func (r *otpChallengesRepo) DecrementOTPChallengeAttempts(ctx context.Context, id string) (domain.OTPChallenge, error) {
	row, err := r.q.DecrementOTPChallengeAttempts(ctx, id)
	if err != nil {
		return domain.OTPChallenge{}, mapNotFound(err)
	}
	return mapOTPChallenge(row), nil
}

func (r *otpChallengesRepo) ConsumeOTPChallenge(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := r.q.ConsumeOTPChallenge(ctx, gen.ConsumeOTPChallengeParams{
		ID:  id,
		Now: toMillis(now),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *otpChallengesRepo) MarkOTPChallengeDelivered(ctx context.Context, id string) error {
	return r.q.MarkOTPChallengeDelivered(ctx, id)
}

func (r *otpChallengesRepo) DeleteExpiredOTPChallenges(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteExpiredOTPChallenges(ctx, toMillis(before))
}

func mapOTPChallenge(row gen.OtpChallenge) domain.OTPChallenge {
	return domain.OTPChallenge{
		ID:                row.ID,
		Target:            row.Target,
		Channel:           domain.Channel(row.Channel),
		CodeHash:          row.CodeHash,
		Purpose:           row.Purpose,
		CreatedAt:         fromMillis(row.CreatedAt),
		ExpiresAt:         fromMillis(row.ExpiresAt),
		AttemptsRemaining: int(row.AttemptsRemaining),
		Consumed:          row.Consumed,
		ConsumedAt:        mapNullMillisPtr(row.ConsumedAt),
		Superseded:        row.Superseded,
		Delivered:         row.Delivered,
	}
}
