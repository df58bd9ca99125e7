package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type profilesRepo struct {
	q *gen.Queries
}

func (r *profilesRepo) GetProfile(ctx context.Context, ownerID string) (domain.Profile, error) {
	row, err := r.q.GetProfile(ctx, ownerID)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	birthDate, err := time.Parse(domain.DateLayout, row.BirthDate)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("parse birth date for %s: %w", ownerID, err)
	}

	return domain.Profile{
		OwnerID:   row.OwnerID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		BirthDate: birthDate,
		UpdatedAt: fromMillis(row.UpdatedAt),
	}, nil
}

func (r *profilesRepo) UpsertProfile(ctx context.Context, p domain.Profile) error {
	return r.q.UpsertProfile(ctx, gen.UpsertProfileParams{
		OwnerID:   p.OwnerID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate.Format(domain.DateLayout),
		UpdatedAt: toMillis(p.UpdatedAt),
	})
}
