package accesssdk

import "time"

// ============================================================================
// OTP Types
// ============================================================================

// IssueOTPRequest starts an OTP challenge.
type IssueOTPRequest struct {
	// Target is the email address or E.164 phone number to deliver to
	Target string `json:"target"`

	// Channel is "email" or "sms"
	Channel string `json:"channel"`

	// Purpose scopes the challenge, e.g. "email_verification"
	Purpose string `json:"purpose"`
}

// IssueOTPResponse is returned once the challenge exists. Delivered is false
// when the delivery channel failed; the challenge can then be re-issued.
type IssueOTPResponse struct {
	ChallengeID string    `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	Delivered   bool      `json:"delivered"`
}

// VerifyOTPRequest submits a code for the current challenge.
type VerifyOTPRequest struct {
	Target  string `json:"target"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

// VerifyOTPResponse is only returned for a valid code; failures are errors.
type VerifyOTPResponse struct {
	Valid bool `json:"valid"`
}

// ============================================================================
// Access Code Types
// ============================================================================

// IssueAccessCodeRequest creates a code for the authenticated owner.
type IssueAccessCodeRequest struct {
	// Scope is "full" or "single_document"
	Scope string `json:"scope"`

	// TargetDocumentID is required for single_document codes
	TargetDocumentID string `json:"target_document_id,omitempty"`

	// TTLDays is the lifetime in days (1-365)
	TTLDays int `json:"ttl_days"`
}

// AccessCodeResponse describes a code. Code holds the plaintext and is only
// present in the response that created it.
type AccessCodeResponse struct {
	ID               string     `json:"id"`
	Code             string     `json:"code,omitempty"`
	CodePrefix       string     `json:"code_prefix"`
	Scope            string     `json:"scope"`
	TargetDocumentID string     `json:"target_document_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Revoked          bool       `json:"revoked"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	Supersedes       string     `json:"supersedes,omitempty"`
}

// ListAccessCodesResponse lists an owner's codes, newest first.
type ListAccessCodesResponse struct {
	Codes []AccessCodeResponse `json:"codes"`
}

// ExtendAccessCodeRequest pushes the expiry of a code forward.
type ExtendAccessCodeRequest struct {
	Code           string `json:"code"`
	AdditionalDays int    `json:"additional_days"`
}

// ExtendAccessCodeResponse reports whether the code was extended.
type ExtendAccessCodeResponse struct {
	Extended  bool       `json:"extended"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RegenerateAccessCodeRequest replaces a code with a fresh one.
type RegenerateAccessCodeRequest struct {
	Code    string `json:"code"`
	TTLDays int    `json:"ttl_days"`
}

// RevokeAccessCodeRequest revokes a code.
type RevokeAccessCodeRequest struct {
	Code string `json:"code"`
}

// RevokeAccessCodeResponse reports whether the code exists for the owner.
type RevokeAccessCodeResponse struct {
	Revoked bool `json:"revoked"`
}

// RedeemAccessCodeRequest presents a code together with the identity of the
// person it was shared about.
type RedeemAccessCodeRequest struct {
	Code      string `json:"code"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// BirthDate in YYYY-MM-DD
	BirthDate string `json:"birth_date"`
}

// RedeemAccessCodeResponse carries the grant token for shared documents.
type RedeemAccessCodeResponse struct {
	GrantToken       string `json:"grant_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	OwnerID          string `json:"owner_id"`
	Scope            string `json:"scope"`
	TargetDocumentID string `json:"target_document_id,omitempty"`
}

// ============================================================================
// Shared Document Types
// ============================================================================

// SharedDocument is the metadata of a document visible through a grant.
type SharedDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SharedDocumentsResponse lists the documents a grant can see.
type SharedDocumentsResponse struct {
	OwnerID   string           `json:"owner_id"`
	Documents []SharedDocument `json:"documents"`
}

// ============================================================================
// Internal Types
// ============================================================================

// GuardRequest names the (identifier, action) pair the guard keys on.
type GuardRequest struct {
	Identifier string `json:"identifier"`

	// Action is one of login, email_verification, password_reset,
	// access_code_redemption, otp_verification
	Action string `json:"action"`
}

// GuardDecisionResponse is the result of a guard check.
type GuardDecisionResponse struct {
	Allowed           bool       `json:"allowed"`
	RemainingAttempts int        `json:"remaining_attempts"`
	LockoutMinutes    *int       `json:"lockout_minutes"`
	LockoutUntil      *time.Time `json:"lockout_until,omitempty"`
}

// LoginAssessRequest asks whether a login may proceed.
type LoginAssessRequest struct {
	Identifier string `json:"identifier"`
	IP         string `json:"ip"`

	// Country is the ISO code from the edge, optional
	Country string `json:"country,omitempty"`
}

// LoginAssessResponse combines the guard decision with the location check.
type LoginAssessResponse struct {
	Allowed           bool `json:"allowed"`
	RemainingAttempts int  `json:"remaining_attempts"`
	LockoutMinutes    *int `json:"lockout_minutes"`
	OTPRequired       bool `json:"otp_required"`
}

// LoginCompleteRequest reports the outcome of a password check.
type LoginCompleteRequest struct {
	Identifier string `json:"identifier"`
	IP         string `json:"ip"`
	Country    string `json:"country,omitempty"`
	Success    bool   `json:"success"`
}

// ProfileRequest syncs the identity fields of an owner.
type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
}

// DocumentRequest syncs the metadata of a document.
type DocumentRequest struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
	Kind    string `json:"kind"`
}

// ============================================================================
// Audit Types
// ============================================================================

// SecurityEventResponse is one entry of the audit feed.
type SecurityEventResponse struct {
	ID        string            `json:"id"`
	EventType string            `json:"event_type"`
	ActorID   string            `json:"actor_id"`
	RiskLevel string            `json:"risk_level"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SecurityEventsResponse is a page of the audit feed. Pass NextBefore as
// the before parameter to fetch the next page.
type SecurityEventsResponse struct {
	Events     []SecurityEventResponse `json:"events"`
	NextBefore string                  `json:"next_before,omitempty"`
}

// SecurityEventsQuery filters the audit feed.
type SecurityEventsQuery struct {
	ActorID string
	MinRisk string
	Since   *time.Time
	Before  string
	Limit   int
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Guard    string `json:"guard"`
	Signer   string `json:"signer"`
}
