package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mgmcet/admission-portal/internal/assets"
	"github.com/mgmcet/admission-portal/internal/config"
	"github.com/mgmcet/admission-portal/internal/pdf"
	"github.com/mgmcet/admission-portal/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	coordinator    Submitter
	repo           storage.Repository
	renderer       *pdf.Renderer
	encoder        *assets.Encoder
	uploadMaxBytes int64
	spoolDir       string
	authMiddleware *AuthMiddleware
	rateLimiter    *RateLimiter
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	coordinator Submitter,
	repo storage.Repository,
	renderer *pdf.Renderer,
	limiter *RateLimiter,
	uploadMaxBytes int64,
	spoolDir string,
) *Server {
	s := &Server{
		config:         cfg,
		coordinator:    coordinator,
		repo:           repo,
		renderer:       renderer,
		encoder:        assets.NewEncoder(),
		uploadMaxBytes: uploadMaxBytes,
		spoolDir:       spoolDir,
		authMiddleware: NewAuthMiddleware(repo),
		rateLimiter:    limiter,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Public submission endpoint, rate limited per client address
		r.With(s.rateLimiter.Limit).Post("/applications", s.handleSubmitApplication)

		// Admin dashboard routes (protected by API key authentication)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.Authenticate)

			r.With(s.authMiddleware.RequirePermission("applications:read")).Get("/applications", s.handleListApplications)
			r.With(s.authMiddleware.RequirePermission("applications:read")).Get("/applications/counter", s.handleGetCounter)
			r.With(s.authMiddleware.RequirePermission("applications:read")).Get("/applications/{id}", s.handleGetApplication)
			r.With(s.authMiddleware.RequirePermission("applications:read")).Get("/applications/{id}/pdf", s.handleDownloadPDF)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
