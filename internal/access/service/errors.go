package service

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy of the access layer. Verification outcomes such as a wrong
// code are results, not errors; see domain.Reason.
var (
	ErrValidation       = errors.New("validation failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrLocked           = errors.New("temporarily locked")
	ErrExpired          = errors.New("expired")
	ErrNotFound         = errors.New("not found")
	ErrDeliveryFailure  = errors.New("delivery failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// LockedError is returned while the brute-force guard holds a lockout.
// It matches ErrLocked with errors.Is.
type LockedError struct {
	Until   time.Time
	Minutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("temporarily locked, retry in %d minute(s)", e.Minutes)
}

func (e *LockedError) Is(target error) bool { return target == ErrLocked }

// RateLimitedError carries how long the caller should wait. It matches
// ErrRateLimited with errors.Is.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// unavailable wraps a store failure so callers fail closed on it.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
