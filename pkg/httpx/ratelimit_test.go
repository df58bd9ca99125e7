package httpx_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "192.168.1.1", ip)
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.1", ip)
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")

		ip := httpx.IPKeyExtractor(req)
		require.Equal(t, "203.0.113.2", ip)
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	t.Run("extracts and restores body", func(t *testing.T) {
		body := `{"target":" Alice@Example.com ","code":"123456"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		key := httpx.JSONFieldKeyExtractor("target")(req)
		require.Equal(t, "alice@example.com", key)

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("returns empty for missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"1"}`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("target")(req))
	})

	t.Run("returns empty for non-string field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"target":42}`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("target")(req))
	})

	t.Run("returns empty for invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`target=x`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("target")(req))
	})

	t.Run("oversized body reaches the decoder intact", func(t *testing.T) {
		body := `{"target":"alice@example.com","pad":"` + strings.Repeat("x", 80<<10) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "", httpx.JSONFieldKeyExtractor("target")(req))

		var v map[string]string
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &v)
		require.ErrorIs(t, err, httpx.ErrBodyTooLarge)
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	t.Run("combines multiple extractors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"target":"alice"}`))
		req.RemoteAddr = "192.168.1.1:12345"

		extractor := httpx.CompositeKeyExtractor(":",
			httpx.IPKeyExtractor,
			httpx.JSONFieldKeyExtractor("target"),
		)
		require.Equal(t, "192.168.1.1:alice", extractor(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.RemoteAddr = "192.168.1.1:12345"

		extractor := httpx.CompositeKeyExtractor(":",
			httpx.IPKeyExtractor,
			httpx.JSONFieldKeyExtractor("target"),
		)
		require.Equal(t, "192.168.1.1", extractor(req))
	})

	t.Run("prefix keeps empty keys empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		require.Equal(t, "", httpx.PrefixKeyExtractor("verify_", httpx.JSONFieldKeyExtractor("target"))(req))

		req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"target":"bob"}`))
		require.Equal(t, "verify_bob", httpx.PrefixKeyExtractor("verify_", httpx.JSONFieldKeyExtractor("target"))(req))
	})
}

// limited wraps an OK handler with mw and returns a function that sends one
// request from ip and reports the status.
func limited(mw httpx.Middleware) func(ip string) *httptest.ResponseRecorder {
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		config  httpx.RateLimitConfig
		allowed int
	}{
		{"burst equals rate", httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, 3},
		{"burst below rate", httpx.RateLimitConfig{RequestsPerWindow: 600, Window: time.Minute, Burst: 2}, 2},
		{"single request", httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send := limited(httpx.RateLimitByIP(tt.config))

			for i := range tt.allowed {
				require.Equal(t, http.StatusOK, send("192.0.2.1").Code, "request %d", i+1)
			}

			rec := send("192.0.2.1")
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.NotEmpty(t, rec.Header().Get("Retry-After"))

			// Another client keeps its own bucket.
			require.Equal(t, http.StatusOK, send("192.0.2.2").Code)
		})
	}

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		send := limited(httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" }))

		for range 3 {
			require.Equal(t, http.StatusOK, send("192.0.2.1").Code)
		}
	})
}

func TestRateLimitByIPAndField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.RateLimitByIPAndField(config, "target")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler still sees the full body.
		b, _ := io.ReadAll(r.Body)
		require.Contains(t, string(b), `"target"`)
		w.WriteHeader(http.StatusOK)
	}))

	send := func(target string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(fmt.Sprintf(`{"target":%q}`, target)))
		req.RemoteAddr = "192.0.2.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("alice@example.com"))
	require.Equal(t, http.StatusOK, send("Alice@Example.com"))
	require.Equal(t, http.StatusTooManyRequests, send("alice@example.com"))

	// Same IP with a different target has its own bucket.
	require.Equal(t, http.StatusOK, send("+61400000000"))
}

func TestRateLimitBySubject(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := httpx.RateLimitBySubject(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(subject string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		if subject != "" {
			req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeySubject, subject))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("owner-1"))
	require.Equal(t, http.StatusTooManyRequests, send("owner-1"))

	// Owners behind the same address do not share a bucket.
	require.Equal(t, http.StatusOK, send("owner-2"))
}

func TestRateLimitProfiles(t *testing.T) {
	ordered := []httpx.RateLimitConfig{
		httpx.StrictLimit,
		httpx.ModerateLimit,
		httpx.LenientLimit,
		httpx.PublicLimit,
	}

	for i, config := range ordered {
		require.Positive(t, config.RequestsPerWindow)
		require.Positive(t, config.Window)
		require.Positive(t, config.Burst)
		if i > 0 {
			require.Less(t, ordered[i-1].RequestsPerWindow, config.RequestsPerWindow)
		}
	}
}

func TestRateLimitResponse(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	send := limited(httpx.RateLimitByIP(config))

	require.Equal(t, http.StatusOK, send("192.0.2.1").Code)
	rec := send("192.0.2.1")

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestWriteRateLimited(t *testing.T) {
	tests := []struct {
		retryAfter time.Duration
		want       string
	}{
		{0, "1"},
		{300 * time.Millisecond, "1"},
		{time.Second, "1"},
		{1500 * time.Millisecond, "2"},
		{15 * time.Minute, "900"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		httpx.WriteRateLimited(rec, tt.retryAfter)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, tt.want, rec.Header().Get("Retry-After"), "retry after %s", tt.retryAfter)
	}
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000}
	send := limited(httpx.RateLimitByIP(config))

	for i := 0; b.Loop(); i++ {
		send(fmt.Sprintf("10.%d.%d.1", i%255, (i/255)%255))
	}
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaults := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	tests := []struct {
		name string
		env  map[string]string
		want httpx.RateLimitConfig
	}{
		{"no overrides", nil, defaults},
		{
			"all overrides",
			map[string]string{"REQUESTS": "200", "WINDOW_SEC": "30", "BURST": "250"},
			httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250},
		},
		{
			"window only",
			map[string]string{"WINDOW_SEC": "120"},
			httpx.RateLimitConfig{RequestsPerWindow: 10, Window: 2 * time.Minute, Burst: 10},
		},
		{"invalid values", map[string]string{"REQUESTS": "invalid", "WINDOW_SEC": "-10", "BURST": "x"}, defaults},
		{"zero values", map[string]string{"REQUESTS": "0", "WINDOW_SEC": "0", "BURST": "0"}, defaults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv("RATELIMIT_TEST_"+k, v)
			}
			require.Equal(t, tt.want, httpx.ParseRateLimitFromEnv("TEST", defaults))
		})
	}
}
