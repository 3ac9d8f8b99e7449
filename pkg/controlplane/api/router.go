package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/controlplane/api/auth"
	"github.com/marmos91/davmount/pkg/controlplane/api/handlers"
	apiMiddleware "github.com/marmos91/davmount/pkg/controlplane/api/middleware"
	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/registry"
)

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
//   - POST /api/v1/auth/login - User authentication
//   - GET /api/v1/auth/me - Current user info
//   - GET/POST /api/v1/mounts - Mount listing and creation
//   - GET/DELETE /api/v1/mounts/{id} - Mount inspection and unmount
//   - GET /api/v1/sessions - Active upload sessions
//   - GET /api/v1/status - Daemon status
//   - /api/v1/users/* - User management (admin only)
func NewRouter(reg *registry.Registry, jwtService *auth.JWTService, cpStore store.Store, version string) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health routes - unauthenticated
	healthHandler := handlers.NewHealthHandler(cpStore, reg)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(cpStore, jwtService)
	mountHandler := handlers.NewMountHandler(reg)
	sessionHandler := handlers.NewSessionHandler(reg)
	statusHandler := handlers.NewStatusHandler(reg, version)
	userHandler := handlers.NewUserHandler(cpStore)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			// Public endpoint
			r.Post("/login", authHandler.Login)

			// Authenticated endpoint
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService))

			// Mount management
			r.Route("/mounts", func(r chi.Router) {
				r.Get("/", mountHandler.List)
				r.Post("/", mountHandler.Create)
				r.Get("/{id}", mountHandler.Get)
				r.Delete("/{id}", mountHandler.Delete)
			})

			// Active upload sessions
			r.Get("/sessions", sessionHandler.List)

			// Daemon status
			r.Get("/status", statusHandler.Status)

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())

				r.Post("/", userHandler.Create)
				r.Get("/", userHandler.List)
				r.Get("/{username}", userHandler.Get)
				r.Delete("/{username}", userHandler.Delete)
				r.Post("/{username}/password", userHandler.ResetPassword)
			})
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
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

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
