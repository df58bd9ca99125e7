package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// writeServiceError renders a service error. Failed verifications are not
// errors and never reach this function; handlers answer them with
// accesssdk.ErrInvalidOrExpired.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := slogx.FromContext(r.Context())

	var (
		locked  *service.LockedError
		limited *service.RateLimitedError
	)
	switch {
	case errors.As(err, &locked):
		accesssdk.NewLockedError(locked.Minutes).WriteError(w)
	case errors.Is(err, service.ErrLocked):
		accesssdk.ErrLocked.WriteError(w)
	case errors.As(err, &limited):
		httpx.WriteRateLimited(w, limited.RetryAfter)
	case errors.Is(err, service.ErrValidation):
		accesssdk.NewValidationError(validationMessage(err)).WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		accesssdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrOutOfScope):
		accesssdk.ErrAccessDenied.WriteError(w)
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Error(msg, "err", err)
		accesssdk.ErrStoreUnavailable.WriteError(w)
	default:
		log.Error(msg, "err", err)
		accesssdk.ErrServerError.WriteError(w)
	}
}

// validationMessage strips the sentinel prefix from a validation error.
func validationMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, service.ErrValidation.Error()+": "); ok {
		return rest
	}
	return msg
}

// decodeBody decodes the JSON request body and answers malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, httpx.ErrBodyTooLarge) {
			accesssdk.NewAPIError(http.StatusRequestEntityTooLarge, accesssdk.ErrorCodeInvalidRequest, "request body too large").WriteError(w)
			return false
		}
		accesssdk.NewValidationError("invalid JSON body").WriteError(w)
		return false
	}
	return true
}
