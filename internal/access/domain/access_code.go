package domain

import "time"

// AccessCode lets a third party view an owner's documents once they prove
// identity. The code itself is never stored, only its fingerprint.
type AccessCode struct {
	ID               string
	CodeHash         string
	CodePrefix       string // first two groups, e.g. "AB12-CD34"
	OwnerID          string
	Scope            Scope
	TargetDocumentID string // set iff Scope == ScopeSingleDocument
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Revoked          bool
	RevokedAt        *time.Time
	Supersedes       string // ID of the code this one replaced
}

// ActiveAt reports whether the code may authorize access at t.
func (c *AccessCode) ActiveAt(t time.Time) bool {
	return !c.Revoked && t.Before(c.ExpiresAt)
}

// IssuedAccessCode pairs a freshly created code with its plaintext, which is
// only available at issuance.
type IssuedAccessCode struct {
	AccessCode
	Code string
}

// Grant is the result of an access code redemption.
type Grant struct {
	Granted          bool   `json:"granted"`
	Reason           Reason `json:"reason,omitempty"`
	Scope            Scope  `json:"scope,omitempty"`
	TargetDocumentID string `json:"target_document_id,omitempty"`
	OwnerID          string `json:"owner_id,omitempty"`
	CodeID           string `json:"-"`
}

// Permits reports whether the grant covers documentID of the grant owner.
func (g Grant) Permits(doc Document) bool {
	if !g.Granted || doc.OwnerID != g.OwnerID {
		return false
	}
	switch g.Scope {
	case ScopeFull:
		return true
	case ScopeSingleDocument:
		return doc.ID == g.TargetDocumentID
	}
	return false
}
