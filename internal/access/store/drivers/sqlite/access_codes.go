package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type accessCodesRepo struct {
	q *gen.Queries
}

func (r *accessCodesRepo) CreateAccessCode(ctx context.Context, c domain.AccessCode) error {
	err := r.q.CreateAccessCode(ctx, gen.CreateAccessCodeParams{
		ID:               c.ID,
		CodeHash:         c.CodeHash,
		CodePrefix:       c.CodePrefix,
		OwnerID:          c.OwnerID,
		Scope:            string(c.Scope),
		TargetDocumentID: mapStringNull(c.TargetDocumentID),
		CreatedAt:        toMillis(c.CreatedAt),
		ExpiresAt:        toMillis(c.ExpiresAt),
		Supersedes:       mapStringNull(c.Supersedes),
	})
	return mapConstraint(err)
}

func (r *accessCodesRepo) GetAccessCodeByHash(ctx context.Context, hash string) (domain.AccessCode, error) {
	row, err := r.q.GetAccessCodeByHash(ctx, hash)
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}
	return mapAccessCode(row), nil
}

func (r *accessCodesRepo) GetAccessCodeByID(ctx context.Context, id string) (domain.AccessCode, error) {
	row, err := r.q.GetAccessCodeByID(ctx, id)
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}
	return mapAccessCode(row), nil
}

func (r *accessCodesRepo) ListAccessCodesByOwner(ctx context.Context, ownerID string) ([]domain.AccessCode, error) {
	rows, err := r.q.ListAccessCodesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	codes := make([]domain.AccessCode, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, mapAccessCode(row))
	}
	return codes, nil
}

func (r *accessCodesRepo) ExtendAccessCode(ctx context.Context, id string, now time.Time, by time.Duration) (domain.AccessCode, bool, error) {
	row, err := r.q.ExtendAccessCode(ctx, gen.ExtendAccessCodeParams{
		ID:   id,
		Now:  toMillis(now),
		ByMs: by.Milliseconds(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccessCode{}, false, nil
	}
	if err != nil {
		return domain.AccessCode{}, false, err
	}
	return mapAccessCode(row), true, nil
}

func (r *accessCodesRepo) RevokeAccessCode(ctx context.Context, id string, now time.Time) (bool, error) {
	n, err := r.q.RevokeAccessCode(ctx, gen.RevokeAccessCodeParams{
		ID:        id,
		RevokedAt: sql.NullInt64{Int64: toMillis(now), Valid: true},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func mapAccessCode(row gen.AccessCode) domain.AccessCode {
	return domain.AccessCode{
		ID:               row.ID,
		CodeHash:         row.CodeHash,
		CodePrefix:       row.CodePrefix,
		OwnerID:          row.OwnerID,
		Scope:            domain.Scope(row.Scope),
		TargetDocumentID: mapNullString(row.TargetDocumentID),
		CreatedAt:        fromMillis(row.CreatedAt),
		ExpiresAt:        fromMillis(row.ExpiresAt),
		Revoked:          row.Revoked,
		RevokedAt:        mapNullMillisPtr(row.RevokedAt),
		Supersedes:       mapNullString(row.Supersedes),
	}
}
