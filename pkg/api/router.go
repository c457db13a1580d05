package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flightblender/coordination-engine/internal/logger"
	"github.com/flightblender/coordination-engine/pkg/api/auth"
	"github.com/flightblender/coordination-engine/pkg/api/handlers"
	apiMiddleware "github.com/flightblender/coordination-engine/pkg/api/middleware"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// Dependencies bundles everything NewRouter needs to mount the coordination
// engine's HTTP surface. Declaration routes mount even when Declarations or
// Submitter is nil: ChangeState then returns 503, while Create/List/Get/Delete
// call the nil store and panic, which the Recoverer middleware answers with 500.
type Dependencies struct {
	Store        kvstore.KVStream
	Declarations handlers.DeclarationStore
	Submitter    handlers.EventSubmitter
	JWTService   *auth.JWTService

	// The routes backed by Telemetry, Geofences, and OperationalIntents mount
	// unconditionally; with a nil dependency the handler panics and the
	// Recoverer middleware answers with 500, as for Declarations above.
	Telemetry        handlers.TelemetryStore
	Geofences        handlers.GeofenceStore
	OperationalIntents handlers.OperationalIntentScanner
	Weather          handlers.WeatherClient
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /health/stores - Detailed store health
//   - POST /api/v1/flight_declarations - Submit a flight declaration
//   - GET /api/v1/flight_declarations - List flight declarations
//   - GET /api/v1/flight_declarations/{id} - Fetch a flight declaration
//   - DELETE /api/v1/flight_declarations/{id} - Remove a flight declaration
//   - PUT /api/v1/flight_declarations/{id}/state - Submit an OperationEvent
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Store)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/stores", healthHandler.Stores)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	declarationHandler := handlers.NewDeclarationHandler(deps.Declarations, deps.Submitter)

	r.Route("/api/v1/flight_declarations", func(r chi.Router) {
		r.Use(apiMiddleware.JWTAuth(deps.JWTService))

		r.With(apiMiddleware.RequireScope(auth.ScopeSubmitDeclaration)).Post("/", declarationHandler.Create)
		r.With(apiMiddleware.RequireScope(auth.ScopeStrategicCoordination)).Get("/", declarationHandler.List)

		r.Route("/{id}", func(r chi.Router) {
			r.With(apiMiddleware.RequireScope(auth.ScopeStrategicCoordination)).Get("/", declarationHandler.Get)
			r.With(apiMiddleware.RequireScope(auth.ScopeSubmitDeclaration)).Delete("/", declarationHandler.Delete)
			r.With(apiMiddleware.RequireScope(auth.ScopeStrategicCoordination)).Put("/state", declarationHandler.ChangeState)

			weatherHandler := handlers.NewWeatherHandler(deps.Declarations, deps.Weather)
			r.With(apiMiddleware.RequireScope(auth.ScopeStrategicCoordination)).Get("/weather", weatherHandler.Advisory)
		})
	})

	telemetryHandler := handlers.NewTelemetryHandler(deps.Telemetry)
	r.Route("/api/v1/telemetry", func(r chi.Router) {
		r.Use(apiMiddleware.JWTAuth(deps.JWTService))
		r.With(apiMiddleware.RequireScope(auth.ScopeSubmitDeclaration)).Post("/", telemetryHandler.Ingest)
	})

	geofenceHandler := handlers.NewGeofenceHandler(deps.Geofences)
	r.Route("/api/v1/geofences", func(r chi.Router) {
		r.Use(apiMiddleware.JWTAuth(deps.JWTService))
		r.With(apiMiddleware.RequireScope(auth.ScopeAdmin)).Post("/", geofenceHandler.Create)
		r.With(apiMiddleware.RequireScope(auth.ScopeAdmin)).Delete("/{id}", geofenceHandler.Delete)
	})

	flightsViewHandler := handlers.NewFlightsViewHandler(deps.OperationalIntents)
	r.Route("/flights", func(r chi.Router) {
		r.Use(apiMiddleware.OptionalJWTAuth(deps.JWTService))
		r.Get("/view", flightsViewHandler.View)
	})

	return r
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logger.Info("API request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		)
	})
}
