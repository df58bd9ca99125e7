package accesssdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/careshare/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidOrExpired  = "invalid_or_expired"
	ErrorCodeLocked            = "locked"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeAccessDenied      = "access_denied"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeStoreUnavailable  = "store_unavailable"
	ErrorCodeServerError       = "server_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body of every failed request. It is used by the
// server to write responses and by the client to represent them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// RetryAfterMinutes is set on lockouts
	RetryAfterMinutes *int `json:"retry_after_minutes,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code so callers can write errors.Is(err, accesssdk.ErrLocked).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if e.RetryAfterMinutes != nil {
		w.Header().Set("Retry-After", strconv.Itoa(*e.RetryAfterMinutes*60))
	}
	httpx.WriteJSON(w, e.StatusCode, e)
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned when the body is malformed or a field
	// fails validation.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidOrExpired is the single answer to every failed verification.
	// It never says which check failed.
	ErrInvalidOrExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidOrExpired,
		Description: "the code is invalid or has expired",
	}

	// ErrLocked is returned while the brute-force guard holds a lockout.
	// Use NewLockedError to include the remaining minutes.
	ErrLocked = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeLocked,
		Description: "too many failed attempts, try again later",
	}

	// ErrRateLimited is returned by the throttling middlewares.
	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "Too many requests. Please try again later.",
	}

	// ErrInvalidToken is returned when the bearer token is missing or invalid.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid, expired or revoked",
	}

	// ErrAccessDenied is returned when a grant does not cover the document.
	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	// ErrNotFound is returned for unknown resources the caller may know about.
	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	// ErrStoreUnavailable is returned when a security check could not reach
	// its backing store. The request was not evaluated.
	ErrStoreUnavailable = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        ErrorCodeStoreUnavailable,
		Description: "security store unavailable, please retry",
	}

	// ErrServerError is returned for unexpected failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// NewValidationError is ErrInvalidRequest with a specific description.
func NewValidationError(description string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeInvalidRequest, description)
}

// NewLockedError is ErrLocked carrying the remaining lockout minutes.
func NewLockedError(minutes int) *APIError {
	e := *ErrLocked
	e.RetryAfterMinutes = &minutes
	return &e
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
