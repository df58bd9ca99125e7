package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks a token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions are the expectations a token must meet beyond a valid
// signature. Empty Issuer or Audience skip that check.
type VerifyOptions struct {
	Issuer   string
	Audience []string

	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration

	Now func() time.Time
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// EdDSAVerifier verifies Ed25519 signed tokens against the keys in a KeySet.
// The KeySet may change underneath it, which is how remote JWKS refreshes
// take effect.
type EdDSAVerifier struct {
	keys *KeySet
	opts VerifyOptions
}

var _ Verifier = (*EdDSAVerifier)(nil)

func NewVerifierEdDSA(keys *KeySet, opts VerifyOptions) *EdDSAVerifier {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &EdDSAVerifier{keys: keys, opts: opts}
}

func (v *EdDSAVerifier) Verify(raw string) (Claims, error) {
	// jwt's own time checks are disabled so the injected clock and leeway
	// apply uniformly.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, v.lookupKey)
	if err != nil {
		return Claims{}, classifyParseError(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryAt(v.opts.Now().UTC(), v.opts.Leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *EdDSAVerifier) lookupKey(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}
	return pub, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return fmt.Errorf("jwtx: parse or verify: %w", err)
	}
}
