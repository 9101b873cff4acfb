package routes

import (
	"net/http"

	"github.com/safetrail/server/internal/api/handlers"
	"github.com/safetrail/server/internal/api/middleware"
	"github.com/safetrail/server/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	locationHandler  *handlers.LocationHandler
	analyticsHandler *handlers.AnalyticsHandler
	sessionHandler   *handlers.SessionHandler
	alertHandler     *handlers.AlertHandler
	trustHandler     *handlers.TrustHandler
	routeHandler     *handlers.RouteHandler
	sseHandler       *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	locationHandler *handlers.LocationHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	sessionHandler *handlers.SessionHandler,
	alertHandler *handlers.AlertHandler,
	trustHandler *handlers.TrustHandler,
	routeHandler *handlers.RouteHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		locationHandler:  locationHandler,
		analyticsHandler: analyticsHandler,
		sessionHandler:   sessionHandler,
		alertHandler:     alertHandler,
		trustHandler:     trustHandler,
		routeHandler:     routeHandler,
		sseHandler:       sseHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Location ingestion
	r.mux.HandleFunc("POST /api/locations", r.locationHandler.Ingest)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/devices", r.analyticsHandler.GetDevices)
	r.mux.HandleFunc("GET /api/analytics/overlap", r.analyticsHandler.GetOverlap)

	// Tracking session endpoints
	r.mux.HandleFunc("POST /api/sessions", r.sessionHandler.Create)
	r.mux.HandleFunc("GET /api/sessions", r.sessionHandler.List)
	r.mux.HandleFunc("GET /api/sessions/{id}", r.sessionHandler.Get)
	r.mux.HandleFunc("POST /api/sessions/{id}/stop", r.sessionHandler.Stop)
	r.mux.HandleFunc("PATCH /api/sessions/{id}", r.sessionHandler.Update)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.sessionHandler.Delete)

	// Alert endpoints
	r.mux.HandleFunc("POST /api/alerts", r.alertHandler.Create)
	r.mux.HandleFunc("GET /api/alerts", r.alertHandler.List)
	r.mux.HandleFunc("POST /api/alerts/{id}/resolve", r.alertHandler.Resolve)

	// Trusted device endpoints
	r.mux.HandleFunc("GET /api/trusted-devices", r.trustHandler.List)
	r.mux.HandleFunc("PUT /api/trusted-devices", r.trustHandler.Set)

	// Map matching
	r.mux.HandleFunc("POST /api/routes/match", r.routeHandler.Match)

	// Real-time alert stream, available only when the event bus is up
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/alerts", r.sseHandler.StreamAlerts)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
