package domain

// Reason explains why a verification did not succeed. Reasons are for logs
// and the security event log; callers facing end users must collapse them
// into a single generic message.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotFound            Reason = "not_found"
	ReasonExpired             Reason = "expired"
	ReasonExhaustedOrConsumed Reason = "exhausted_or_consumed"
	ReasonMismatch            Reason = "mismatch"
	ReasonInvalidOrExpired    Reason = "invalid_or_expired"
	ReasonIdentityMismatch    Reason = "identity_mismatch"
	ReasonOutOfScope          Reason = "out_of_scope"
)

func (r Reason) String() string { return string(r) }
