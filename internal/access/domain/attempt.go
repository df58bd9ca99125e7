package domain

import "time"

// AttemptCounter tracks failed verifications for one (identifier, action).
type AttemptCounter struct {
	Identifier    string
	Action        Action
	Count         int
	WindowStart   time.Time
	LockoutUntil  *time.Time // nil when not locked
	Lockouts      int        // consecutive lockouts, drives escalation
	LastLockoutAt *time.Time
	UpdatedAt     time.Time
}

// LockedAt reports whether the counter is locked at t.
func (c *AttemptCounter) LockedAt(t time.Time) bool {
	return c.LockoutUntil != nil && c.LockoutUntil.After(t)
}

// WindowExpired reports whether the counting window has elapsed at t.
func (c *AttemptCounter) WindowExpired(t time.Time, window time.Duration) bool {
	return !t.Before(c.WindowStart.Add(window))
}

// AttemptDecision is the outcome of a guard check.
type AttemptDecision struct {
	Allowed           bool       `json:"allowed"`
	RemainingAttempts int        `json:"remaining_attempts"`
	LockoutMinutes    *int       `json:"lockout_minutes,omitempty"`
	LockoutUntil      *time.Time `json:"lockout_until,omitempty"`
}
