package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/idx"
)

const (
	defaultEventPage = 50
	maxEventPage     = 200
)

type SecurityEventsHandler struct {
	EventLog *service.EventLog
}

// ServeHTTP godoc
//
//	@Summary		Security Event Feed
//	@Description	Lists security events newest first. Requires the 'audit:read' scope.
//	@Description	Pass next_before from one page as before to fetch the next.
//	@Tags			Audit
//	@Security		BearerAuth
//	@Produce		json
//	@Param			actor		query		string								false	"Only events of this actor"
//	@Param			min_risk	query		string								false	"low, medium or high"
//	@Param			since		query		string								false	"RFC 3339 timestamp"
//	@Param			before		query		string								false	"Event ID cursor"
//	@Param			limit		query		int									false	"Page size (1-200, default 50)"
//	@Success		200			{object}	accesssdk.SecurityEventsResponse	"events, next_before"
//	@Failure		400			{object}	accesssdk.APIError					"error, error_description"
//	@Failure		401			{object}	accesssdk.APIError					"invalid_token"
//	@Failure		403			{object}	accesssdk.APIError					"insufficient_scope"
//	@Router			/v1/security-events [get].
func (h *SecurityEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.SecurityEventFilter{
		ActorID: q.Get("actor"),
		Limit:   defaultEventPage,
	}

	if v := q.Get("min_risk"); v != "" {
		risk, err := domain.ParseRiskLevel(v)
		if err != nil {
			accesssdk.NewValidationError("min_risk must be low, medium or high").WriteError(w)
			return
		}
		filter.MinRisk = risk
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			accesssdk.NewValidationError("since must be an RFC 3339 timestamp").WriteError(w)
			return
		}
		filter.Since = since
	}
	if v := q.Get("before"); v != "" {
		id, err := idx.Parse(v)
		if err != nil {
			accesssdk.NewValidationError("before must be an event id").WriteError(w)
			return
		}
		filter.BeforeID = id.String()
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxEventPage {
			accesssdk.NewValidationError("limit must be between 1 and 200").WriteError(w)
			return
		}
		filter.Limit = n
	}

	events, err := h.EventLog.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "failed to list security events")
		return
	}

	out := accesssdk.SecurityEventsResponse{Events: make([]accesssdk.SecurityEventResponse, 0, len(events))}
	for _, e := range events {
		out.Events = append(out.Events, toSecurityEventResponse(e))
	}
	if len(events) == filter.Limit {
		out.NextBefore = events[len(events)-1].ID
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
