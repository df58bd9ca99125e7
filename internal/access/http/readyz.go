package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/careshare/internal/access/store"
	"github.com/aussiebroadwan/careshare/pkg/accesssdk"
	"github.com/aussiebroadwan/careshare/pkg/httpx"
	"github.com/aussiebroadwan/careshare/pkg/jwtx"
)

// Pinger is a backend the readiness probe can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the database, the guard backend and the grant signer
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	accesssdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	accesssdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	guard Pinger,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &accesssdk.HealthChecks{
			Database: "ok",
			Guard:    "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// The guard fails closed, so an unreachable backend means no
		// credential can be checked.
		if guard != nil {
			if err := guard.Ping(r.Context()); err != nil {
				checks.Guard = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		// Check the grant signer has keys loaded
		if keys == nil || !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, accesssdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
