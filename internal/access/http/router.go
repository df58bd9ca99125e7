package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/service"
	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
	"github.com/aussiebroadwan/careshare/pkg/slogx"

	_ "github.com/aussiebroadwan/careshare/api/access" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Sliding window limits applied in front of the brute-force guard. They
// only shed load early; the guard stays authoritative.
const (
	otpVerifyWindowMax   = 10
	redeemWindowMax      = 20
	loginAssessWindowMax = 10
	slidingWindow        = 15 * time.Minute
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	grants        *jwtx.KeyManager
	ownerVerifier jwtx.Verifier
	internalToken string
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	window        *httpx.SlidingWindow

	store        store.Store
	guardBackend Pinger

	OTPService        *service.OTPService
	AccessCodeService *service.AccessCodeService
	Guard             *service.Guard
	LoginService      *service.LoginService
	DirectoryService  *service.DirectoryService
	EventLog          *service.EventLog
}

// NewRouter wires the shared dependencies. grants signs and verifies viewer
// grant tokens, ownerVerifier accepts bearer tokens of the identity provider
// and internalToken guards the service-to-service routes.
func NewRouter(
	grants *jwtx.KeyManager,
	ownerVerifier jwtx.Verifier,
	internalToken, buildVersion string,
	st store.Store,
	guardBackend Pinger,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		grants:        grants,
		ownerVerifier: ownerVerifier,
		internalToken: internalToken,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		logger:        logger,
		window:        httpx.NewSlidingWindow(),
		store:         st,
		guardBackend:  guardBackend,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOTP()
	r.registerAccessCodes()
	r.registerShared()
	r.registerInternal()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CareShare Access Service API
//	@version		0.1.0
//	@description	Credential-gated access to shared care documents: one-time codes, access codes and brute-force protection.
//	@description
//	@description				Grant tokens are signed with EdDSA (Ed25519) and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/careshare
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Owner access token, grant token or internal token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOTP() {
	h := &OTPHandler{OTPService: r.OTPService}

	// POST /otp/challenges - strict rate limit by IP + target (each call sends a message)
	r.Mux.Handle("POST /v1/otp/challenges",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.RateLimitByIPAndField(httpx.StrictLimit, "target"),
		),
	)

	// POST /otp/verify - strict rate limit by IP, then a sliding window per target
	r.Mux.Handle("POST /v1/otp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.SlidingWindowMiddleware(r.window, otpVerifyWindowMax, slidingWindow,
				httpx.PrefixKeyExtractor("otp_", httpx.JSONFieldKeyExtractor("target"))),
		),
	)
}

func (r *Router) registerAccessCodes() {
	h := &AccessCodesHandler{AccessCodeService: r.AccessCodeService}

	owner := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.ownerVerifier),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/access-codes", owner(h.HandleIssue))
	r.Mux.Handle("GET /v1/access-codes", owner(h.HandleList))
	r.Mux.Handle("POST /v1/access-codes/extend", owner(h.HandleExtend))
	r.Mux.Handle("POST /v1/access-codes/regenerate", owner(h.HandleRegenerate))
	r.Mux.Handle("POST /v1/access-codes/revoke", owner(h.HandleRevoke))

	// POST /access-codes/redeem - public, strict by IP plus a sliding window per IP
	redeem := &RedeemHandler{AccessCodeService: r.AccessCodeService}
	r.Mux.Handle("POST /v1/access-codes/redeem",
		httpx.Chain(redeem,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.SlidingWindowMiddleware(r.window, redeemWindowMax, slidingWindow,
				httpx.PrefixKeyExtractor("redeem_", httpx.IPKeyExtractor)),
		),
	)
}

func (r *Router) registerShared() {
	h := &SharedDocumentsHandler{AccessCodeService: r.AccessCodeService}

	// Grant holders browse documents - lenient rate limit by grant subject
	viewer := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.GrantMiddleware(r.grants.Verifier),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/shared/documents", viewer(h.HandleList))
	r.Mux.Handle("GET /v1/shared/documents/{id}", viewer(h.HandleGet))
}

func (r *Router) registerInternal() {
	internal := func(next http.HandlerFunc, extra ...httpx.Middleware) http.Handler {
		mws := []httpx.Middleware{
			httpx.InternalTokenMiddleware(r.internalToken),
			httpx.RateLimitByIP(httpx.PublicLimit),
		}
		return httpx.Chain(next, append(mws, extra...)...)
	}

	guard := &GuardHandler{Guard: r.Guard}
	r.Mux.Handle("POST /v1/internal/guard/check", internal(guard.HandleCheck))
	r.Mux.Handle("POST /v1/internal/guard/success", internal(guard.HandleSuccess))
	r.Mux.Handle("POST /v1/internal/guard/failure", internal(guard.HandleFailure))

	login := &LoginHandler{LoginService: r.LoginService}
	// Assess is where a password attempt starts, so it also carries a
	// sliding window per identifier. Complete only records outcomes.
	r.Mux.Handle("POST /v1/internal/login/assess", internal(login.HandleAssess,
		httpx.SlidingWindowMiddleware(r.window, loginAssessWindowMax, slidingWindow,
			httpx.PrefixKeyExtractor("login_", httpx.JSONFieldKeyExtractor("identifier"))),
	))
	r.Mux.Handle("POST /v1/internal/login/complete", internal(login.HandleComplete))

	dir := &DirectoryHandler{DirectoryService: r.DirectoryService}
	r.Mux.Handle("PUT /v1/internal/profiles/{owner_id}", internal(dir.HandlePutProfile))
	r.Mux.Handle("PUT /v1/internal/documents/{id}", internal(dir.HandlePutDocument))
	r.Mux.Handle("DELETE /v1/internal/documents/{id}", internal(dir.HandleDeleteDocument))
}

func (r *Router) registerAudit() {
	h := &SecurityEventsHandler{EventLog: r.EventLog}

	r.Mux.Handle("GET /v1/security-events",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.ownerVerifier),
			httpx.RequireAnyScope("audit:read"),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.guardBackend, r.grants.KeySet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.grants.KeySet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
