package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

type RedeemHandler struct {
	AccessCodeService *service.AccessCodeService
}

// ServeHTTP godoc
//
//	@Summary		Redeem Access Code
//	@Description	Verifies an access code together with the identity of the person it belongs to and returns a short-lived grant token.
//	@Description	Unknown, expired and revoked codes and identity mismatches all get the same answer.
//	@Tags			Access Codes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.RedeemAccessCodeRequest	true	"code, first_name, last_name, birth_date"
//	@Success		200		{object}	accesssdk.RedeemAccessCodeResponse	"grant_token, expires_in, scope"
//	@Failure		400		{object}	accesssdk.APIError					"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError					"invalid_or_expired"
//	@Failure		429		{object}	accesssdk.APIError					"locked, retry_after_minutes"
//	@Failure		502		{object}	accesssdk.APIError					"store unavailable"
//	@Router			/v1/access-codes/redeem [post].
func (h *RedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accesssdk.RedeemAccessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	birthDate, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.BirthDate))
	if err != nil {
		accesssdk.NewValidationError("birth_date must be YYYY-MM-DD").WriteError(w)
		return
	}
	claim := domain.IdentityClaim{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
	}

	grant, err := h.AccessCodeService.Verify(ctx, req.Code, claim)
	if err != nil {
		writeServiceError(w, r, err, "failed to redeem access code")
		return
	}
	if !grant.Granted {
		accesssdk.ErrInvalidOrExpired.WriteError(w)
		return
	}

	token, ttl, err := h.AccessCodeService.MintGrantToken(grant)
	if err != nil {
		log.Error("failed to mint grant token", "err", err)
		accesssdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accesssdk.RedeemAccessCodeResponse{
		GrantToken:       token,
		TokenType:        "Bearer",
		ExpiresIn:        int(ttl.Seconds()),
		OwnerID:          grant.OwnerID,
		Scope:            string(grant.Scope),
		TargetDocumentID: grant.TargetDocumentID,
	})
}
