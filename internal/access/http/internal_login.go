package http

import (
	"net/http"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
)

type LoginHandler struct {
	LoginService *service.LoginService
}

// HandleAssess godoc
//
//	@Summary		Assess Login
//	@Description	Combines the login lockout check with the unusual location check.
//	@Description	otp_required is true when the login comes from a location not seen recently.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.LoginAssessRequest	true	"identifier, ip, country"
//	@Success		200		{object}	accesssdk.LoginAssessResponse	"allowed, remaining_attempts, lockout_minutes, otp_required"
//	@Failure		400		{object}	accesssdk.APIError				"error, error_description"
//	@Failure		502		{object}	accesssdk.APIError				"store unavailable"
//	@Router			/v1/internal/login/assess [post].
func (h *LoginHandler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.LoginAssessRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.LoginService.Assess(r.Context(), req.Identifier, domain.LoginContext{IP: req.IP, Country: req.Country})
	if err != nil {
		writeServiceError(w, r, err, "login assessment failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accesssdk.LoginAssessResponse{
		Allowed:           a.Allowed,
		RemainingAttempts: a.RemainingAttempts,
		LockoutMinutes:    a.LockoutMinutes,
		OTPRequired:       a.OTPRequired,
	})
}

// HandleComplete godoc
//
//	@Summary		Complete Login
//	@Description	Records the outcome of a password check. Successful logins are added to the location history.
//	@Tags			Internal
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	accesssdk.LoginCompleteRequest	true	"identifier, ip, country, success"
//	@Success		204
//	@Failure		400	{object}	accesssdk.APIError	"error, error_description"
//	@Failure		502	{object}	accesssdk.APIError	"store unavailable"
//	@Router			/v1/internal/login/complete [post].
func (h *LoginHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.LoginCompleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lc := domain.LoginContext{IP: req.IP, Country: req.Country}
	if err := h.LoginService.Complete(r.Context(), req.Identifier, lc, req.Success); err != nil {
		writeServiceError(w, r, err, "login completion failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
