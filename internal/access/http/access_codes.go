package http

import (
	"net/http"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
)

// AccessCodesHandler serves the owner's code management endpoints. The
// owner is always the subject of the bearer token, never a request field.
type AccessCodesHandler struct {
	AccessCodeService *service.AccessCodeService
}

// HandleIssue godoc
//
//	@Summary		Issue Access Code
//	@Description	Creates a sharing code for the authenticated owner. The plaintext code is only returned here.
//	@Tags			Access Codes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.IssueAccessCodeRequest	true	"scope, target_document_id, ttl_days"
//	@Success		201		{object}	accesssdk.AccessCodeResponse		"the new code"
//	@Failure		400		{object}	accesssdk.APIError					"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError					"invalid_token"
//	@Failure		502		{object}	accesssdk.APIError					"store unavailable"
//	@Router			/v1/access-codes [post].
func (h *AccessCodesHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromContext(ctx)
	if ownerID == "" {
		accesssdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req accesssdk.IssueAccessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		accesssdk.NewValidationError("scope must be full or single_document").WriteError(w)
		return
	}
	ttlDays := req.TTLDays
	if ttlDays == 0 {
		ttlDays = service.DefaultAccessCodeTTLDays
	}

	issued, err := h.AccessCodeService.Issue(ctx, ownerID, scope, req.TargetDocumentID, ttlDays)
	if err != nil {
		writeServiceError(w, r, err, "failed to issue access code")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAccessCodeResponse(issued.AccessCode, issued.Code))
}

// HandleList godoc
//
//	@Summary		List Access Codes
//	@Description	Lists every code of the authenticated owner, newest first. Plaintext codes are never included.
//	@Tags			Access Codes
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accesssdk.ListAccessCodesResponse	"codes"
//	@Failure		401	{object}	accesssdk.APIError					"invalid_token"
//	@Failure		502	{object}	accesssdk.APIError					"store unavailable"
//	@Router			/v1/access-codes [get].
func (h *AccessCodesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromContext(ctx)
	if ownerID == "" {
		accesssdk.ErrInvalidToken.WriteError(w)
		return
	}

	codes, err := h.AccessCodeService.List(ctx, ownerID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list access codes")
		return
	}

	out := accesssdk.ListAccessCodesResponse{Codes: make([]accesssdk.AccessCodeResponse, 0, len(codes))}
	for _, c := range codes {
		out.Codes = append(out.Codes, toAccessCodeResponse(c, ""))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleExtend godoc
//
//	@Summary		Extend Access Code
//	@Description	Pushes the expiry of a code to max(expires_at, now) + additional_days.
//	@Description	extended is false when the code is revoked or unknown.
//	@Tags			Access Codes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.ExtendAccessCodeRequest	true	"code, additional_days"
//	@Success		200		{object}	accesssdk.ExtendAccessCodeResponse	"extended, expires_at"
//	@Failure		400		{object}	accesssdk.APIError					"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError					"invalid_token"
//	@Router			/v1/access-codes/extend [post].
func (h *AccessCodesHandler) HandleExtend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromContext(ctx)
	if ownerID == "" {
		accesssdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req accesssdk.ExtendAccessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, ok, err := h.AccessCodeService.Extend(ctx, ownerID, req.Code, req.AdditionalDays)
	if err != nil {
		writeServiceError(w, r, err, "failed to extend access code")
		return
	}

	out := accesssdk.ExtendAccessCodeResponse{Extended: ok}
	if ok {
		out.ExpiresAt = &updated.ExpiresAt
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRegenerate godoc
//
//	@Summary		Regenerate Access Code
//	@Description	Revokes a code and issues a replacement with the same scope in one step.
//	@Tags			Access Codes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.RegenerateAccessCodeRequest	true	"code, ttl_days"
//	@Success		201		{object}	accesssdk.AccessCodeResponse			"the replacement code"
//	@Failure		400		{object}	accesssdk.APIError						"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError						"invalid_token"
//	@Failure		404		{object}	accesssdk.APIError						"unknown or already revoked code"
//	@Router			/v1/access-codes/regenerate [post].
func (h *AccessCodesHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromContext(ctx)
	if ownerID == "" {
		accesssdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req accesssdk.RegenerateAccessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ttlDays := req.TTLDays
	if ttlDays == 0 {
		ttlDays = service.DefaultAccessCodeTTLDays
	}

	issued, err := h.AccessCodeService.Regenerate(ctx, ownerID, req.Code, ttlDays)
	if err != nil {
		writeServiceError(w, r, err, "failed to regenerate access code")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toAccessCodeResponse(issued.AccessCode, issued.Code))
}

// HandleRevoke godoc
//
//	@Summary		Revoke Access Code
//	@Description	Revokes a code. Repeating the call is harmless. revoked is false for unknown codes.
//	@Tags			Access Codes
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.RevokeAccessCodeRequest	true	"code"
//	@Success		200		{object}	accesssdk.RevokeAccessCodeResponse	"revoked"
//	@Failure		400		{object}	accesssdk.APIError					"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError					"invalid_token"
//	@Router			/v1/access-codes/revoke [post].
func (h *AccessCodesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromContext(ctx)
	if ownerID == "" {
		accesssdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req accesssdk.RevokeAccessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ok, err := h.AccessCodeService.Revoke(ctx, ownerID, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "failed to revoke access code")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accesssdk.RevokeAccessCodeResponse{Revoked: ok})
}
