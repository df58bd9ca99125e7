package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type keyEntry struct {
	jwk JWK
	pub ed25519.PublicKey
}

// KeySet is the set of Ed25519 public keys a verifier trusts, indexed by kid.
// For grants it is also what the JWKS endpoint publishes.
type KeySet struct {
	mu    sync.RWMutex
	order []string
	byKID map[string]keyEntry
}

func NewKeySet() *KeySet {
	return &KeySet{byKID: make(map[string]keyEntry)}
}

// AddSigner publishes the public half of s.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK adds j, replacing any key already registered under the same kid.
func (k *KeySet) AddJWK(j JWK) error {
	pub, err := parseJWKToKey(j)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.byKID[j.Kid]; !exists {
		k.order = append(k.order, j.Kid)
	}
	k.byKID[j.Kid] = keyEntry{jwk: j, pub: pub}
	return nil
}

func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.byKID[kid]
	if !ok {
		return nil, ErrNoKey
	}
	return e.pub, nil
}

// PublicJWKS returns the keys in the order they were added.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := JWKS{Keys: make([]JWK, 0, len(k.order))}
	for _, kid := range k.order {
		out.Keys = append(out.Keys, k.byKID[kid].jwk)
	}
	return out
}

func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.byKID) > 0
}

// ResetFromJWKS swaps the whole set for the usable keys in jwks. Keys we
// cannot verify with are skipped. If none are left the current set is kept
// and ErrNoKey is returned.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	byKID := make(map[string]keyEntry, len(jwks.Keys))
	order := make([]string, 0, len(jwks.Keys))
	for _, j := range jwks.Keys {
		pub, err := parseJWKToKey(j)
		if err != nil {
			continue
		}
		if !slices.Contains(order, j.Kid) {
			order = append(order, j.Kid)
		}
		byKID[j.Kid] = keyEntry{jwk: j, pub: pub}
	}
	if len(byKID) == 0 {
		return ErrNoKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.byKID = byKID
	k.order = order
	return nil
}

func parseJWKToKey(j JWK) (ed25519.PublicKey, error) {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return nil, fmt.Errorf("jwtx: unsupported key %s/%s", j.Kty, j.Crv)
	}
	raw, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode x: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return ed25519.PublicKey(raw), nil
}
