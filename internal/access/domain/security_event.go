package domain

import "time"

// SecurityEvent is an append-only audit record.
type SecurityEvent struct {
	ID        string
	EventType string
	ActorID   string // empty when anonymous
	Details   map[string]string
	RiskLevel RiskLevel
	CreatedAt time.Time
}

// SecurityEventFilter narrows a security event listing.
type SecurityEventFilter struct {
	ActorID  string
	MinRisk  RiskLevel
	Since    time.Time
	BeforeID string // cursor: only events with ID < BeforeID
	Limit    int
}

const (
	EventLockoutStarted             = "lockout_started"
	EventLockoutExpired             = "lockout_expired"
	EventAttemptsReset              = "attempts_reset"
	EventOTPIssued                  = "otp_issued"
	EventOTPDeliveryFailed          = "otp_delivery_failed"
	EventOTPVerified                = "otp_verified"
	EventOTPMismatch                = "otp_mismatch"
	EventOTPExpired                 = "otp_expired"
	EventOTPExhausted               = "otp_exhausted"
	EventAccessCodeIssued           = "access_code_issued"
	EventAccessCodeExtended         = "access_code_extended"
	EventAccessCodeRegenerated      = "access_code_regenerated"
	EventAccessCodeRevoked          = "access_code_revoked"
	EventAccessCodeRedeemed         = "access_code_redeemed"
	EventAccessCodeRedemptionFailed = "access_code_redemption_failed"
	EventDocumentAccessDenied       = "document_access_denied"
	EventLocationUnresolved         = "location_unresolved"
	EventSuspiciousLocation         = "suspicious_location"
)
