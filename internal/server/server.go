// Package server provides the HTTP server and routing for FundKeep.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/config"
	"github.com/fundkeep/fundkeep/internal/database"
	accounthandlers "github.com/fundkeep/fundkeep/internal/modules/accounts/handlers"
	enrollmenthandlers "github.com/fundkeep/fundkeep/internal/modules/enrollments/handlers"
	reconciliationhandlers "github.com/fundkeep/fundkeep/internal/modules/reconciliation/handlers"
	recurringhandlers "github.com/fundkeep/fundkeep/internal/modules/recurring/handlers"
	settingshandlers "github.com/fundkeep/fundkeep/internal/modules/settings/handlers"
	transactionhandlers "github.com/fundkeep/fundkeep/internal/modules/transactions/handlers"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	BooksDB    *database.DB
	RegistryDB *database.DB
	Config     *config.Config
	Port       int
	DevMode    bool

	AccountHandlers        *accounthandlers.Handler
	TransactionHandlers    *transactionhandlers.Handler
	RecurringHandlers      *recurringhandlers.Handler
	ReconciliationHandlers *reconciliationhandlers.Handler
	EnrollmentHandlers     *enrollmenthandlers.Handler
	SettingsHandlers       *settingshandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	booksDB        *database.DB
	registryDB     *database.DB
	cfg            *config.Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		booksDB:        cfg.BooksDB,
		registryDB:     cfg.RegistryDB,
		cfg:            cfg.Config,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.BooksDB, cfg.RegistryDB),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
		})

		cfg.AccountHandlers.RegisterRoutes(r)
		cfg.TransactionHandlers.RegisterRoutes(r)
		cfg.RecurringHandlers.RegisterRoutes(r)
		cfg.ReconciliationHandlers.RegisterRoutes(r)
		cfg.EnrollmentHandlers.RegisterRoutes(r)
		cfg.SettingsHandlers.RegisterRoutes(r)
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := s.booksDB.HealthCheck(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := s.registryDB.HealthCheck(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q}`, status)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
