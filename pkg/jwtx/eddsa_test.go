package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, kid string) jwtx.Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newTestSigner(t, "test-key-eddsa")
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	now := time.Now().UTC()
	claims := jwtx.NewGrantClaims("owner-456", "code-1", "full", "", 5*time.Minute, exampleIssuer, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.NotEmpty(t, jwks.Keys[0].X)

	verifier := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{
		Issuer:   exampleIssuer,
		Audience: []string{jwtx.AudienceViewer},
	})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.ShareScope, parsed.ShareScope)
	require.Equal(t, claims.CodeID, parsed.CodeID)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer := newTestSigner(t, "key1")
	now := time.Now().UTC()

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewGrantClaims("o", "c", "full", "", time.Minute, exampleIssuer, now))
		require.NoError(t, err)

		v := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{Issuer: "wrong-issuer"})
		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("unknown key", func(t *testing.T) {
		other := newTestSigner(t, "key2")
		token, err := other.Sign(jwtx.NewGrantClaims("o", "c", "full", "", time.Minute, exampleIssuer, now))
		require.NoError(t, err)

		v := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{})
		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrUnknownKID)
	})

	t.Run("expired by injected clock", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewGrantClaims("o", "c", "full", "", time.Minute, exampleIssuer, now))
		require.NoError(t, err)

		v := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{
			Now: func() time.Time { return now.Add(2 * time.Minute) },
		})
		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.NewGrantClaims("o", "c", "full", "", time.Minute, exampleIssuer, now))
		tok.Header["kid"] = "key1"
		token, err := tok.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		v := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{})
		_, err = v.Verify(token)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		v := jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{})
		_, err := v.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestEdDSAValidateFailsForInvalidKey(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("test", []byte("not-a-pem-key"))
	require.Error(t, err)
}

func TestEdDSAVerifierSatisfiesInterface(t *testing.T) {
	signer := newTestSigner(t, "test-key")

	claims := jwtx.NewGrantClaims("owner-123", "code-9", "single_document", "doc-1", time.Minute, exampleIssuer, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	var verifier jwtx.Verifier = jwtx.NewVerifierEdDSA(keyset, jwtx.VerifyOptions{Issuer: exampleIssuer})

	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "doc-1", parsed.DocumentID)
	require.True(t, parsed.IsGrant())
}
