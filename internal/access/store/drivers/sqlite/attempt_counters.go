package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type attemptCountersRepo struct {
	q *gen.Queries
}

func (r *attemptCountersRepo) GetAttemptCounter(ctx context.Context, identifier string, action domain.Action) (domain.AttemptCounter, error) {
	row, err := r.q.GetAttemptCounter(ctx, gen.GetAttemptCounterParams{
		Identifier: identifier,
		Action:     string(action),
	})
	if err != nil {
		return domain.AttemptCounter{}, mapNotFound(err)
	}
	return mapAttemptCounter(row), nil
}

func (r *attemptCountersRepo) IncrementAttemptCounter(
	ctx context.Context,
	identifier string,
	action domain.Action,
	now time.Time,
	window time.Duration,
) (domain.AttemptCounter, error) {
	row, err := r.q.IncrementAttemptCounter(ctx, gen.IncrementAttemptCounterParams{
		Identifier:  identifier,
		Action:      string(action),
		WindowStart: toMillis(now),
		WindowMs:    window.Milliseconds(),
	})
	if err != nil {
		return domain.AttemptCounter{}, err
	}
	return mapAttemptCounter(row), nil
}

func (r *attemptCountersRepo) LockAttemptCounter(
	ctx context.Context,
	identifier string,
	action domain.Action,
	threshold int,
	now, until time.Time,
	lockouts int,
) (bool, error) {
	n, err := r.q.LockAttemptCounter(ctx, gen.LockAttemptCounterParams{
		Identifier:   identifier,
		Action:       string(action),
		LockoutUntil: sql.NullInt64{Int64: toMillis(until), Valid: true},
		Lockouts:     int64(lockouts),
		Now:          toMillis(now),
		Threshold:    int64(threshold),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *attemptCountersRepo) ClearElapsedLockout(ctx context.Context, identifier string, action domain.Action, now time.Time) (bool, error) {
	n, err := r.q.ClearElapsedLockout(ctx, gen.ClearElapsedLockoutParams{
		Identifier: identifier,
		Action:     string(action),
		Now:        toMillis(now),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *attemptCountersRepo) ResetAttemptCounter(ctx context.Context, identifier string, action domain.Action, now time.Time) (bool, error) {
	n, err := r.q.ResetAttemptCounter(ctx, gen.ResetAttemptCounterParams{
		Identifier: identifier,
		Action:     string(action),
		Now:        toMillis(now),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *attemptCountersRepo) DeleteStaleAttemptCounters(ctx context.Context, before, now time.Time) (int64, error) {
	return r.q.DeleteStaleAttemptCounters(ctx, gen.DeleteStaleAttemptCountersParams{
		Before: toMillis(before),
		Now:    toMillis(now),
	})
}

func mapAttemptCounter(row gen.AttemptCounter) domain.AttemptCounter {
	return domain.AttemptCounter{
		Identifier:    row.Identifier,
		Action:        domain.Action(row.Action),
		Count:         int(row.Count),
		WindowStart:   fromMillis(row.WindowStart),
		LockoutUntil:  mapNullMillisPtr(row.LockoutUntil),
		Lockouts:      int(row.Lockouts),
		LastLockoutAt: mapNullMillisPtr(row.LastLockoutAt),
		UpdatedAt:     fromMillis(row.UpdatedAt),
	}
}
