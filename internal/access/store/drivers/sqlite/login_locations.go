package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

type loginLocationsRepo struct {
	q *gen.Queries
}

func (r *loginLocationsRepo) ListRecentLoginLocations(ctx context.Context, identifier string, limit int) ([]domain.LoginLocation, error) {
	rows, err := r.q.ListRecentLoginLocations(ctx, gen.ListRecentLoginLocationsParams{
		Identifier: identifier,
		Limit:      int64(limit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.LoginLocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LoginLocation{
			Identifier:  row.Identifier,
			LocationKey: row.LocationKey,
			FirstSeenAt: fromMillis(row.FirstSeenAt),
			LastSeenAt:  fromMillis(row.LastSeenAt),
			Logins:      int(row.Logins),
		})
	}
	return out, nil
}

func (r *loginLocationsRepo) RecordLoginLocation(ctx context.Context, identifier, locationKey string, now time.Time) error {
	return r.q.RecordLoginLocation(ctx, gen.RecordLoginLocationParams{
		Identifier:  identifier,
		LocationKey: locationKey,
		SeenAt:      toMillis(now),
	})
}

func (r *loginLocationsRepo) DeleteLoginLocationsBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteLoginLocationsBefore(ctx, toMillis(before))
}
