package slogx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "access", Level: "debug", Output: &buf})

	var inner string
	handler := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
		inner = "called"
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("propagates a sane request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/v1/otp/verify", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, "called", inner)
		require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		for _, line := range lines {
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			require.Equal(t, "abc-123", entry["req_id"])
		}
	})

	t.Run("replaces hostile request ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "evil\nline")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		require.NotEqual(t, "evil\nline", got)
		require.Len(t, got, 26)
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", ParseLevel("debug").String())
	require.Equal(t, "WARN", ParseLevel("Warning").String())
	require.Equal(t, "INFO", ParseLevel("nonsense").String())
}
