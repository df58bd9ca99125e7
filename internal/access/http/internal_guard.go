package http

import (
	"net/http"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
)

// GuardHandler exposes the brute-force guard to other services that verify
// credentials themselves, such as the password login.
type GuardHandler struct {
	Guard *service.Guard
}

func (h *GuardHandler) decode(w http.ResponseWriter, r *http.Request) (string, domain.Action, bool) {
	var req accesssdk.GuardRequest
	if !decodeBody(w, r, &req) {
		return "", "", false
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		accesssdk.NewValidationError("unknown action").WriteError(w)
		return "", "", false
	}
	return req.Identifier, action, true
}

// HandleCheck godoc
//
//	@Summary		Check Attempt
//	@Description	Reports whether another attempt for (identifier, action) may be evaluated.
//	@Description	A denied decision is a normal 200 response carrying lockout_minutes.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.GuardRequest			true	"identifier, action"
//	@Success		200		{object}	accesssdk.GuardDecisionResponse	"allowed, remaining_attempts, lockout_minutes"
//	@Failure		400		{object}	accesssdk.APIError				"error, error_description"
//	@Failure		502		{object}	accesssdk.APIError				"store unavailable"
//	@Router			/v1/internal/guard/check [post].
func (h *GuardHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	identifier, action, ok := h.decode(w, r)
	if !ok {
		return
	}

	decision, err := h.Guard.CheckAttempt(r.Context(), identifier, action)
	if err != nil {
		writeServiceError(w, r, err, "guard check failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGuardDecisionResponse(decision))
}

// HandleSuccess godoc
//
//	@Summary		Record Success
//	@Description	Resets the counter for (identifier, action) after a successful verification.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	accesssdk.GuardRequest	true	"identifier, action"
//	@Success		204
//	@Failure		400	{object}	accesssdk.APIError	"error, error_description"
//	@Failure		502	{object}	accesssdk.APIError	"store unavailable"
//	@Router			/v1/internal/guard/success [post].
func (h *GuardHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	identifier, action, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.Guard.RecordSuccess(r.Context(), identifier, action); err != nil {
		writeServiceError(w, r, err, "guard record success failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleFailure godoc
//
//	@Summary		Record Failure
//	@Description	Counts one failed verification for (identifier, action) and locks once the threshold is reached.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	accesssdk.GuardRequest	true	"identifier, action"
//	@Success		204
//	@Failure		400	{object}	accesssdk.APIError	"error, error_description"
//	@Failure		502	{object}	accesssdk.APIError	"store unavailable"
//	@Router			/v1/internal/guard/failure [post].
func (h *GuardHandler) HandleFailure(w http.ResponseWriter, r *http.Request) {
	identifier, action, ok := h.decode(w, r)
	if !ok {
		return
	}

	if _, err := h.Guard.RecordFailure(r.Context(), identifier, action); err != nil {
		writeServiceError(w, r, err, "guard record failure failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
