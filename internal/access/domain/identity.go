package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format for birth dates.
const DateLayout = "2006-01-02"

// IdentityClaim is what a redeemer supplies alongside an access code.
type IdentityClaim struct {
	FirstName string
	LastName  string
	BirthDate time.Time
}

// Profile is the owner's stored identity, synchronised from the profile store.
type Profile struct {
	OwnerID   string
	FirstName string
	LastName  string
	BirthDate time.Time
	UpdatedAt time.Time
}

// Matches compares names case-insensitively and dates exactly (by calendar day).
func (p Profile) Matches(c IdentityClaim) bool {
	if !strings.EqualFold(strings.TrimSpace(p.FirstName), strings.TrimSpace(c.FirstName)) {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(p.LastName), strings.TrimSpace(c.LastName)) {
		return false
	}
	return p.BirthDate.Format(DateLayout) == c.BirthDate.Format(DateLayout)
}
