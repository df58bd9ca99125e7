package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Issuer:               "careshare-access",
		InternalToken:        "internal-secret",
		DatabaseFile:         ":memory:",
		PepperFile:           filepath.Join(dir, "pepper"),
		GuardBackend:         "sqlite",
		DeliveryTimeout:      time.Second,
		OTPTTL:               10 * time.Minute,
		GrantTTL:             30 * time.Minute,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestNewServesRoutes(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		app.housekeepingService.Stop()
		app.cancel()
		_ = app.closeStores()
	})
	app.housekeepingService.Start()

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/guard/check", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Run("missing internal token", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.InternalToken = ""
		_, err := New(cfg)
		require.Error(t, err)
	})

	t.Run("unknown guard backend", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.GuardBackend = "memcached"
		_, err := New(cfg)
		require.ErrorContains(t, err, "unknown guard backend")
	})

	t.Run("broken policy file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := New(cfg)
		require.ErrorContains(t, err, "lockout policy")
	})
}
