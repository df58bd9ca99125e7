package domain

import "time"

// OTPChallenge is a short-lived numeric code sent to a target for a purpose.
// Only the code hash is stored.
type OTPChallenge struct {
	ID                string
	Target            string
	Channel           Channel
	CodeHash          string
	Purpose           string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	AttemptsRemaining int
	Consumed          bool
	ConsumedAt        *time.Time
	Superseded        bool
	Delivered         bool
}

// Live reports whether the challenge can still be verified at t.
func (c *OTPChallenge) Live(t time.Time) bool {
	return !c.Consumed && !c.Superseded && c.AttemptsRemaining > 0 && !t.After(c.ExpiresAt)
}

// OTPResult is the outcome of an OTP verification.
type OTPResult struct {
	Valid  bool   `json:"valid"`
	Reason Reason `json:"reason,omitempty"`
}
