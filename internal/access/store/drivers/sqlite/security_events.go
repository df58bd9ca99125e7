package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store/drivers/sqlite/gen"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type securityEventsRepo struct {
	q *gen.Queries
}

func (r *securityEventsRepo) AppendSecurityEvent(ctx context.Context, e domain.SecurityEvent) error {
	details := e.Details
	if details == nil {
		details = map[string]string{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	return r.q.AppendSecurityEvent(ctx, gen.AppendSecurityEventParams{
		ID:        e.ID,
		EventType: e.EventType,
		ActorID:   mapStringNull(e.ActorID),
		Details:   string(raw),
		RiskLevel: string(e.RiskLevel),
		RiskRank:  int64(e.RiskLevel.Rank()),
		CreatedAt: toMillis(e.CreatedAt),
	})
}

func (r *securityEventsRepo) ListSecurityEvents(ctx context.Context, f domain.SecurityEventFilter) ([]domain.SecurityEvent, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	var since int64
	if !f.Since.IsZero() {
		since = toMillis(f.Since)
	}

	rows, err := r.q.ListSecurityEvents(ctx, gen.ListSecurityEventsParams{
		ActorID:  f.ActorID,
		MinRank:  int64(f.MinRisk.Rank()),
		Since:    since,
		BeforeID: f.BeforeID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	events := make([]domain.SecurityEvent, 0, len(rows))
	for _, row := range rows {
		details := map[string]string{}
		if err := json.Unmarshal([]byte(row.Details), &details); err != nil {
			return nil, fmt.Errorf("decode details for event %s: %w", row.ID, err)
		}
		events = append(events, domain.SecurityEvent{
			ID:        row.ID,
			EventType: row.EventType,
			ActorID:   mapNullString(row.ActorID),
			Details:   details,
			RiskLevel: domain.RiskLevel(row.RiskLevel),
			CreatedAt: fromMillis(row.CreatedAt),
		})
	}
	return events, nil
}
