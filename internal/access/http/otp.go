package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/idx"
)

type OTPHandler struct {
	OTPService *service.OTPService
}

// HandleIssue godoc
//
//	@Summary		Issue OTP Challenge
//	@Description	Creates a one-time code for (target, purpose) and delivers it over the channel.
//	@Description	Any earlier challenge for the same target and purpose stops verifying.
//	@Description	Returns 202 with delivered=false when the challenge exists but delivery failed.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.IssueOTPRequest	true	"target, channel, purpose"
//	@Success		201		{object}	accesssdk.IssueOTPResponse	"challenge_id, expires_at, delivered"
//	@Success		202		{object}	accesssdk.IssueOTPResponse	"challenge issued but not delivered"
//	@Failure		400		{object}	accesssdk.APIError			"error, error_description"
//	@Failure		429		{object}	accesssdk.APIError			"resend throttled"
//	@Failure		502		{object}	accesssdk.APIError			"store unavailable"
//	@Router			/v1/otp/challenges [post].
func (h *OTPHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.IssueOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channel, err := domain.ParseChannel(req.Channel)
	if err != nil {
		accesssdk.NewValidationError("channel must be email or sms").WriteError(w)
		return
	}

	id, err := h.OTPService.Issue(r.Context(), req.Target, channel, req.Purpose)
	delivered := true
	if errors.Is(err, service.ErrDeliveryFailure) && id != "" {
		delivered = false
		err = nil
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to issue otp")
		return
	}

	status := http.StatusCreated
	if !delivered {
		status = http.StatusAccepted
	}
	httpx.WriteJSON(w, status, accesssdk.IssueOTPResponse{
		ChallengeID: id,
		ExpiresAt:   idx.ID(id).Time().Add(h.OTPService.Lifetime()),
		Delivered:   delivered,
	})
}

// HandleVerify godoc
//
//	@Summary		Verify OTP
//	@Description	Checks a code against the current challenge. Every failure gets the same answer.
//	@Description	Repeated failures lock the target out for an escalating period.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accesssdk.VerifyOTPRequest	true	"target, purpose, code"
//	@Success		200		{object}	accesssdk.VerifyOTPResponse	"valid"
//	@Failure		400		{object}	accesssdk.APIError			"error, error_description"
//	@Failure		401		{object}	accesssdk.APIError			"invalid_or_expired"
//	@Failure		429		{object}	accesssdk.APIError			"locked, retry_after_minutes"
//	@Failure		502		{object}	accesssdk.APIError			"store unavailable"
//	@Router			/v1/otp/verify [post].
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req accesssdk.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.OTPService.VerifyGuarded(r.Context(), req.Target, req.Purpose, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "failed to verify otp")
		return
	}
	if !result.Valid {
		accesssdk.ErrInvalidOrExpired.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accesssdk.VerifyOTPResponse{Valid: true})
}
