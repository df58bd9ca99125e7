package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyDefaults(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	require.Equal(t, service.DefaultLockoutPolicy(), p)
}

func TestParsePolicyOverlay(t *testing.T) {
	p, err := ParsePolicy([]byte(`
escalation_reset_after: 12h
actions:
  access_code_redemption:
    threshold: 3
    base_lockout: 30m
  login:
    window: 5m
`))
	require.NoError(t, err)
	require.Equal(t, 12*time.Hour, p.EscalationResetAfter)

	redeem := p.For(domain.ActionAccessCodeRedemption)
	require.Equal(t, 3, redeem.Threshold)
	require.Equal(t, 30*time.Minute, redeem.BaseLockout)
	require.Equal(t, 15*time.Minute, redeem.Window)
	require.Equal(t, 24*time.Hour, redeem.MaxLockout)

	login := p.For(domain.ActionLogin)
	require.Equal(t, 5, login.Threshold)
	require.Equal(t, 5*time.Minute, login.Window)

	require.Equal(t, service.DefaultActionPolicy, p.For(domain.ActionPasswordReset))
}

func TestParsePolicyErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown action", "actions:\n  teleport:\n    threshold: 3\n"},
		{"negative threshold", "actions:\n  login:\n    threshold: -1\n"},
		{"max below base", "actions:\n  login:\n    base_lockout: 2h\n    max_lockout: 1h\n"},
		{"not yaml", "actions: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("actions:\n  otp_verification:\n    threshold: 10\n"), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	require.Equal(t, 10, p.For(domain.ActionOTPVerification).Threshold)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
