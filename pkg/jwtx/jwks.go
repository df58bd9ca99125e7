package jwtx

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// JWK represents a public key in JSON Web Key format (RFC 7517). Only the
// OKP fields are populated since we only sign and verify with Ed25519.
type JWK struct {
	Kty string `json:"kty"`           // key type: "OKP"
	Use string `json:"use,omitempty"` // what we use it for: "sig"
	Alg string `json:"alg,omitempty"` // algorithm: "EdDSA"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve: "Ed25519"
	X   string `json:"x,omitempty"`   // base64url encoded public key
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds a JWK for an Ed25519 public key.
// Ed25519 keys use the "OKP" (Octet Key Pair) key type.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// PEM converts the JWK to PEM format for use with tools like jwt.io.
func (j JWK) PEM() (string, error) {
	publicKey, err := parseJWKToKey(j)
	if err != nil {
		return "", err
	}

	derBytes, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: derBytes})), nil
}

// maxJWKSBody bounds how much of a JWKS response we are willing to read.
const maxJWKSBody = 1 << 20

var ErrJWKSFetch = errors.New("jwtx: fetch jwks")

// FetchJWKS downloads a JWKS document from url.
func FetchJWKS(ctx context.Context, client *http.Client, url string) (JWKS, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return JWKS{}, fmt.Errorf("%w: %v", ErrJWKSFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return JWKS{}, fmt.Errorf("%w: %v", ErrJWKSFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return JWKS{}, fmt.Errorf("%w: unexpected status %d", ErrJWKSFetch, resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBody)).Decode(&jwks); err != nil {
		return JWKS{}, fmt.Errorf("%w: decode: %v", ErrJWKSFetch, err)
	}
	return jwks, nil
}

// RemoteKeySet keeps a KeySet in sync with a JWKS endpoint of the external
// identity provider.
type RemoteKeySet struct {
	URL      string
	Client   *http.Client
	Interval time.Duration
	Keys     *KeySet
	Logger   *slog.Logger
}

// Refresh fetches the JWKS once and replaces the key set.
func (r *RemoteKeySet) Refresh(ctx context.Context) error {
	jwks, err := FetchJWKS(ctx, r.Client, r.URL)
	if err != nil {
		return err
	}
	return r.Keys.ResetFromJWKS(jwks)
}

// Run refreshes on every Interval until ctx is cancelled. A failed refresh
// keeps the previous keys.
func (r *RemoteKeySet) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				logger.Warn("jwks refresh failed", slog.String("url", r.URL), slog.Any("error", err))
			}
		}
	}
}
