package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, owner ID, identifier).
type KeyExtractor func(*http.Request) string

// ClientIP returns the client address of the request. It handles
// X-Forwarded-For and X-Real-IP headers set by the edge proxy.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (comma-separated list)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// IPKeyExtractor keys requests by client IP.
func IPKeyExtractor(r *http.Request) string {
	return ClientIP(r)
}

// SubjectKeyExtractor keys requests by the authenticated subject.
// Returns empty string if the request is unauthenticated.
func SubjectKeyExtractor(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// CompositeKeyExtractor combines multiple key extractors with a separator.
// Example: CompositeKeyExtractor(":", IPKeyExtractor, SubjectKeyExtractor)
// would produce keys like "192.168.1.1:owner123"
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// PrefixKeyExtractor namespaces the key produced by inner, e.g. "redeem_".
// An empty inner key stays empty.
func PrefixKeyExtractor(prefix string, inner KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		if key := inner(r); key != "" {
			return prefix + key
		}
		return ""
	}
}

// maxPeekBody bounds how much of a request body a key extractor reads.
const maxPeekBody = 64 << 10

// JSONFieldKeyExtractor extracts a top-level string field from a JSON body.
// The body is restored unchanged, including anything past the peek limit, so
// the handler decodes and size checks the original request.
func JSONFieldKeyExtractor(fieldName string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}

		body := r.Body
		raw, err := io.ReadAll(io.LimitReader(body, maxPeekBody))
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(raw), body), body}
		if err != nil || len(raw) == maxPeekBody {
			return ""
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}

		var value string
		if err := json.Unmarshal(fields[fieldName], &value); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(value))
	}
}
