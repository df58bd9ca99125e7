package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519KeyRoundTrip(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, rest := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	require.IsType(t, ed25519.PrivateKey{}, parsed)

	key, err := cryptox.ParseEd25519PrivateKey(pemBytes)
	require.NoError(t, err)
	require.True(t, key.Equal(parsed))

	other, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, pemBytes, other)
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	path := t.TempDir() + "/keys/grant.pem"

	key, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.Len(t, key, ed25519.PrivateKeySize)

	again, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.True(t, key.Equal(again))

	_, err = cryptox.ParseEd25519PrivateKey([]byte("not pem"))
	require.Error(t, err)
}
