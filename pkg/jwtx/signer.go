package jwtx

import "crypto/ed25519"

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerEdDSA creates an EdDSA signer from PEM bytes.
// Ed25519 keys must be in PKCS8 format.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}

// NewSignerFromKey creates an EdDSA signer from an already parsed key.
func NewSignerFromKey(kid string, key ed25519.PrivateKey) (Signer, error) {
	s := newEdDSASignerFromKey(kid, key)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
