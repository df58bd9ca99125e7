package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultGrantTTL is the default lifetime of a viewer grant token. Grants are
// short-lived because the underlying access code can be revoked at any time.
const DefaultGrantTTL = 30 * time.Minute

// AudienceViewer is the audience of grant tokens minted for code redeemers.
const AudienceViewer = "careshare-viewer"

// Claims are the token claims shared by owner bearer tokens (issued by the
// external identity provider) and viewer grant tokens (issued here). Fields
// are additive so either kind decodes into the same struct.
type Claims struct {
	jwt.RegisteredClaims

	// Permission Scopes "audit:read"
	Scopes []string `json:"scopes,omitempty"`

	/* Viewer grant fields */

	// ShareScope is "full" or "single_document".
	ShareScope string `json:"share_scope,omitempty"`

	// DocumentID is set for single_document grants.
	DocumentID string `json:"doc,omitempty"`

	// CodeID identifies the access code the grant was redeemed from.
	CodeID string `json:"cid,omitempty"`
}

// NewGrantClaims builds the claims for a viewer grant. The subject is the
// owner whose documents the bearer may read.
func NewGrantClaims(
	ownerID, codeID, shareScope, documentID string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   ownerID,
			Audience:  jwt.ClaimStrings{AudienceViewer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		ShareScope: shareScope,
		DocumentID: documentID,
		CodeID:     codeID,
	}
}

// IsGrant reports whether the claims describe a viewer grant.
func (c *Claims) IsGrant() bool {
	return c.CodeID != "" && slices.Contains(c.Audience, AudienceViewer)
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryAt(time.Now().UTC(), 0)
}

// ValidateExpiryAt checks exp and nbf against now, allowing leeway for clock
// skew in both directions.
func (c *Claims) ValidateExpiryAt(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
