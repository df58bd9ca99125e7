package app

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
)

// jwksRefreshInterval is how often the identity provider keys are refetched.
const jwksRefreshInterval = 10 * time.Minute

// InitGrantKeys creates the KeyManager that signs viewer grant tokens.
//
// Without a signing key file the key is generated on startup and only kept
// in memory, so all grants become invalid when the service restarts. With a
// file the key is loaded from it, or generated and written on first start.
// A master key file additionally seals the signing key file at rest.
func InitGrantKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: []string{jwtx.AudienceViewer},
	}

	if cfg.SigningKeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral grant key: %w", err)
		}
		logger.Warn("grant signing key is ephemeral - grants will not survive restarts")
		return km, nil
	}

	key, err := loadSigningKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load grant signing key: %w", err)
	}
	km, err := jwtx.NewKeyManager(key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize grant key manager: %w", err)
	}

	logger.Info("grant signing key loaded",
		"algorithm", km.Algorithm(),
		"kid", km.GetSigner().KID(),
		"issuer", cfg.Issuer,
	)
	return km, nil
}

func loadSigningKey(cfg Config) (ed25519.PrivateKey, error) {
	if cfg.MasterKeyFile == "" {
		return cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	}
	master, err := cryptox.LoadMasterKey(cfg.MasterKeyFile)
	if err != nil {
		return nil, err
	}
	return cryptox.LoadOrGenerateSealedEd25519Key(cfg.SigningKeyFile, master)
}

// InitOwnerVerifier builds the verifier for owner bearer tokens. The keys
// come from the identity provider's JWKS endpoint; the returned RemoteKeySet
// keeps them fresh once Run is started. Without a JWKS URL no owner token
// verifies and the owner routes answer 401.
func InitOwnerVerifier(ctx context.Context, cfg Config, logger *slog.Logger) (jwtx.Verifier, *jwtx.RemoteKeySet) {
	keys := jwtx.NewKeySet()
	verifier := jwtx.NewVerifierEdDSA(keys, jwtx.VerifyOptions{
		Issuer: cfg.OwnerIssuer,
		Leeway: 30 * time.Second,
	})

	if cfg.OwnerJWKSURL == "" {
		logger.Warn("no owner JWKS URL configured - owner routes are disabled")
		return verifier, nil
	}

	remote := &jwtx.RemoteKeySet{
		URL:      cfg.OwnerJWKSURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Interval: jwksRefreshInterval,
		Keys:     keys,
		Logger:   logger,
	}

	// The identity provider may start after us, so a failed first fetch is
	// retried by the refresh loop.
	if err := remote.Refresh(ctx); err != nil {
		logger.Warn("initial owner JWKS fetch failed", "url", cfg.OwnerJWKSURL, "error", err)
	} else {
		logger.Info("owner JWKS loaded", "url", cfg.OwnerJWKSURL, "keys", len(keys.PublicJWKS().Keys))
	}
	return verifier, remote
}
