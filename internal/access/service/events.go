package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/idx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// EventLog appends security events and mirrors them to the request logger.
// Appending never fails the calling operation: a lost event is logged.
//
// Never call Record from inside a Store.WithTx callback. Events are written
// through the root store, which the sqlite driver cannot serve while a
// transaction holds its only connection.
type EventLog struct {
	Store store.Store
	Now   func() time.Time
}

func (l *EventLog) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

// Record appends one event. A nil EventLog only logs.
func (l *EventLog) Record(ctx context.Context, eventType, actorID string, risk domain.RiskLevel, details map[string]string) {
	log := slogx.FromContext(ctx)

	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("risk", string(risk)),
	}
	if actorID != "" {
		attrs = append(attrs, slog.String("actor_id", actorID))
	}
	for k, v := range details {
		attrs = append(attrs, slog.String(k, v))
	}
	log.Log(ctx, riskLevelToLog(risk), "security event", attrs...)

	if l == nil || l.Store == nil {
		return
	}

	now := l.now()
	event := domain.SecurityEvent{
		ID:        idx.NewAt(now).String(),
		EventType: eventType,
		ActorID:   actorID,
		Details:   details,
		RiskLevel: risk,
		CreatedAt: now,
	}
	if err := l.Store.SecurityEvents().AppendSecurityEvent(ctx, event); err != nil {
		log.Error("failed to append security event",
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
	}
}

// List returns events newest first.
func (l *EventLog) List(ctx context.Context, f domain.SecurityEventFilter) ([]domain.SecurityEvent, error) {
	if f.MinRisk != "" && !f.MinRisk.Valid() {
		return nil, validationError("unknown risk level %q", f.MinRisk)
	}
	events, err := l.Store.SecurityEvents().ListSecurityEvents(ctx, f)
	if err != nil {
		return nil, unavailable("list security events", err)
	}
	return events, nil
}

func riskLevelToLog(r domain.RiskLevel) slog.Level {
	switch r {
	case domain.RiskHigh:
		return slog.LevelError
	case domain.RiskMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
