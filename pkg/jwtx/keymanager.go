package jwtx

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/aussiebroadwan/careshare/pkg/cryptox"
)

// AlgorithmEdDSA is the only signing algorithm we issue tokens with.
const AlgorithmEdDSA = "EdDSA"

// KeyManager bundles the grant signing key with a verifier for the tokens it
// signs and the KeySet that backs both.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	mu     sync.RWMutex
	signer Signer
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// Audience is the list of audience values (aud) that will be validated.
	// Empty slice means no audience validation.
	Audience []string

	// Verify carries leeway and clock overrides to the verifier.
	Verify VerifyOptions
}

// NewEphemeralKeyManager creates a KeyManager with a freshly generated key.
// The key only exists in memory, so every grant becomes invalid when the
// service restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	key, err := cryptox.ParseEd25519PrivateKey(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}
	return NewKeyManager(key, opts)
}

// NewKeyManager creates a KeyManager around an existing private key. The kid
// is derived from the public key so restarts with the same key file keep
// previously issued grants valid.
func NewKeyManager(key ed25519.PrivateKey, opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("jwtx: invalid Ed25519 key")
	}

	signer, err := NewSignerFromKey(keyIDFor(pub), key)
	if err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}

	vopts := opts.Verify
	vopts.Issuer = opts.Issuer
	vopts.Audience = opts.Audience

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, vopts),
		KeySet:   keyset,
		signer:   signer,
	}, nil
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return AlgorithmEdDSA
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns the active signer.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.signer
}

// Rotate makes signer the active key. The previous key stays in the KeySet
// so grants it signed keep verifying until they expire.
func (km *KeyManager) Rotate(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signer = signer
	return nil
}

// keyIDFor derives a stable key identifier from the public key.
// Format: "careshare-{fingerprint prefix}".
func keyIDFor(pub ed25519.PublicKey) string {
	return "careshare-" + cryptox.FingerprintToken(string(pub))[:16]
}
