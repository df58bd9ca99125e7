package domain

import (
	"errors"
	"strings"
)

// Action identifies which credential check an attempt counter protects.
// Thresholds are configured per action so the set is closed.
type Action string

const (
	ActionLogin                Action = "login"
	ActionEmailVerification    Action = "email_verification"
	ActionPasswordReset        Action = "password_reset"
	ActionAccessCodeRedemption Action = "access_code_redemption"
	ActionOTPVerification      Action = "otp_verification"
)

var ErrUnknownAction = errors.New("unknown action")

// Actions lists every guarded action.
func Actions() []Action {
	return []Action{
		ActionLogin,
		ActionEmailVerification,
		ActionPasswordReset,
		ActionAccessCodeRedemption,
		ActionOTPVerification,
	}
}

func (a Action) Valid() bool {
	switch a {
	case ActionLogin, ActionEmailVerification, ActionPasswordReset, ActionAccessCodeRedemption, ActionOTPVerification:
		return true
	}
	return false
}

func (a Action) String() string { return string(a) }

// ParseAction accepts only the exact lower-case action names.
func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	if !a.Valid() {
		return "", ErrUnknownAction
	}
	return a, nil
}

// Channel is the out-of-band route an OTP is delivered over.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var ErrUnknownChannel = errors.New("unknown channel")

func (c Channel) Valid() bool { return c == ChannelEmail || c == ChannelSMS }

func (c Channel) String() string { return string(c) }

func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrUnknownChannel
	}
	return c, nil
}

// RiskLevel grades a SecurityEvent. Levels are ordered low < medium < high.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var ErrUnknownRiskLevel = errors.New("unknown risk level")

func (r RiskLevel) Valid() bool { return r.Rank() > 0 }

// Rank returns 1..3 for known levels and 0 otherwise.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	}
	return 0
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownRiskLevel
	}
	return r, nil
}

// Scope is how much of an owner's document set an access code unlocks.
type Scope string

const (
	ScopeFull           Scope = "full"
	ScopeSingleDocument Scope = "single_document"
)

var ErrUnknownScope = errors.New("unknown scope")

func (s Scope) Valid() bool { return s == ScopeFull || s == ScopeSingleDocument }

func (s Scope) String() string { return string(s) }

func ParseScope(s string) (Scope, error) {
	sc := Scope(strings.ToLower(strings.TrimSpace(s)))
	if !sc.Valid() {
		return "", ErrUnknownScope
	}
	return sc, nil
}
