package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
)

// ActionPolicy is the brute-force policy for one action.
type ActionPolicy struct {
	// Threshold is the number of failures inside Window that triggers a lockout.
	Threshold int
	Window    time.Duration

	// The n-th consecutive lockout (n from 0) lasts
	// min(BaseLockout * Multiplier^n, MaxLockout).
	BaseLockout time.Duration
	Multiplier  int
	MaxLockout  time.Duration
}

// LockoutPolicy holds the per-action policies.
type LockoutPolicy struct {
	Actions map[domain.Action]ActionPolicy

	// EscalationResetAfter is how long after the last lockout the escalation
	// level falls back to zero.
	EscalationResetAfter time.Duration
}

// DefaultActionPolicy is used for any action the policy does not name.
var DefaultActionPolicy = ActionPolicy{
	Threshold:   5,
	Window:      15 * time.Minute,
	BaseLockout: 15 * time.Minute,
	Multiplier:  2,
	MaxLockout:  24 * time.Hour,
}

// DefaultLockoutPolicy returns the default policy for every action.
func DefaultLockoutPolicy() LockoutPolicy {
	p := LockoutPolicy{
		Actions:              make(map[domain.Action]ActionPolicy),
		EscalationResetAfter: 24 * time.Hour,
	}
	for _, a := range domain.Actions() {
		p.Actions[a] = DefaultActionPolicy
	}
	return p
}

// For returns the policy of action, falling back to DefaultActionPolicy.
func (p LockoutPolicy) For(action domain.Action) ActionPolicy {
	if ap, ok := p.Actions[action]; ok {
		return ap
	}
	return DefaultActionPolicy
}

func (p LockoutPolicy) escalationReset() time.Duration {
	if p.EscalationResetAfter > 0 {
		return p.EscalationResetAfter
	}
	return 24 * time.Hour
}

// Validate rejects policies that could never lock or never unlock.
func (p LockoutPolicy) Validate() error {
	for action, ap := range p.Actions {
		if !action.Valid() {
			return fmt.Errorf("lockout policy: %w: %q", domain.ErrUnknownAction, action)
		}
		if err := ap.Validate(); err != nil {
			return fmt.Errorf("lockout policy %s: %w", action, err)
		}
	}
	return nil
}

// Validate checks a single action policy.
func (ap ActionPolicy) Validate() error {
	switch {
	case ap.Threshold < 1:
		return fmt.Errorf("threshold must be at least 1")
	case ap.Window <= 0:
		return fmt.Errorf("window must be positive")
	case ap.BaseLockout <= 0:
		return fmt.Errorf("base lockout must be positive")
	case ap.Multiplier < 1:
		return fmt.Errorf("multiplier must be at least 1")
	case ap.MaxLockout < ap.BaseLockout:
		return fmt.Errorf("max lockout must not be below base lockout")
	}
	return nil
}

// LockoutDuration returns the duration of a lockout at the given escalation
// level.
func (ap ActionPolicy) LockoutDuration(level int) time.Duration {
	d := ap.BaseLockout
	for i := 0; i < level; i++ {
		d *= time.Duration(ap.Multiplier)
		if d >= ap.MaxLockout || d <= 0 {
			return ap.MaxLockout
		}
	}
	if d > ap.MaxLockout {
		return ap.MaxLockout
	}
	return d
}
