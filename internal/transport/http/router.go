package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthpass/internal/credential/metrics"
	"healthpass/internal/platform/health"
	"healthpass/internal/platform/middleware"
)

// NewRouter wires all public endpoints with middleware.
// Uses chi router for better middleware support and routing.
func NewRouter(h *CredentialHandler, healthHandler *health.Handler, validator middleware.TokenValidator, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Latency(m))

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Credential endpoints require an authenticated operator. The gate's
	// own binding rules run after this; the middleware only establishes who
	// is asking.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OperatorAuth(validator, logger))

		r.Post("/credentials/issue", h.handleIssue)
		r.Post("/credentials/present", h.handlePresent)
		r.Post("/credentials/inspect", h.handleInspect)
		r.Get("/patients/{patientID}/audit", h.handleAuditTrail)
	})

	return r
}
