package http

import (
	"context"
	"net/http"
	"time"

	"spendlog/internal/log"
)

// handleHealth is the public status endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Field("status", "OK").
		Field("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Field("version", s.version).
		Write(w)
}

// handleLiveness performs basic liveness check
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Field("status", "ok").
		Field("uptime", time.Since(s.startedAt).Round(time.Second).String()).
		Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.store == nil {
		checks["database"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentHTTP).Warn("Readiness check failed", log.FieldError, err)
		checks["database"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}
	if s.caches != nil {
		checks["caches"] = s.caches.Stats()
	}
	checks["security"] = map[string]any{
		"suspicious_requests": s.securityDetector.GetMetrics().SuspiciousRequests,
	}

	NewJSONResponse().
		Status(httpStatus).
		Field("status", status).
		Field("timestamp", time.Now().UTC().Format(time.RFC3339)).
		Field("checks", checks).
		Write(w)
}
