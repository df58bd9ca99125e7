package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/careshare/pkg/cryptox"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"
)

// AuthnMiddleware requires a bearer token accepted by v and stores its
// claims in the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				slogx.FromContext(r.Context()).Warn("jwt verify failed", "err", err)
				return
			}

			ctx := contextWithAuth(r.Context(), claims)
			ctx = slogx.With(ctx, "subject", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GrantMiddleware is AuthnMiddleware for viewer grant tokens. Owner tokens
// are refused even if v would accept them.
func GrantMiddleware(v jwtx.Verifier) Middleware {
	requireGrant := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, ok := ClaimsFromContext(r.Context()); !ok || !c.IsGrant() {
				writeBearerError(w, "grant token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	authn := AuthnMiddleware(v)
	return func(next http.Handler) http.Handler {
		return authn(requireGrant(next))
	}
}

// InternalTokenMiddleware guards service-to-service routes with a shared
// bearer secret. An empty token disables the routes entirely.
func InternalTokenMiddleware(token string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if token == "" || !ok || !cryptox.EqualTokens(raw, token) {
				writeBearerError(w, "invalid internal token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
