// Package server provides the HTTP server and routing for StockScorer.
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

	"github.com/aristath/stockscorer/internal/di"
	advisorhandlers "github.com/aristath/stockscorer/internal/modules/advisor/handlers"
	projecthandlers "github.com/aristath/stockscorer/internal/modules/projects/handlers"
	scoringhandlers "github.com/aristath/stockscorer/internal/modules/scoring/api/handlers"
	backuphandlers "github.com/aristath/stockscorer/internal/reliability/handlers"
)

// requestTimeout covers the slowest route, a full two-step analysis
const requestTimeout = 3 * time.Minute

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	DataDir   string
	Container *di.Container
	Jobs      *di.JobInstances
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		container: cfg.Container,
	}

	jobs := cfg.Jobs
	if jobs == nil {
		jobs = &di.JobInstances{}
	}
	var runner JobRunner
	if cfg.Container.Scheduler != nil {
		runner = cfg.Container.Scheduler
	}
	s.systemHandlers = NewSystemHandlers(
		cfg.Log,
		cfg.DataDir,
		cfg.Container.Databases(),
		runner,
		jobs.All(),
	)

	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		// Oracle calls can take a while; the timeout middleware bounds handlers
		WriteTimeout: requestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(devMode bool) {
	s.router.Get("/health", s.handleHealth)

	scoring := scoringhandlers.NewHandlers(s.log)
	projects := projecthandlers.NewHandlers(s.container.ProjectRepo, s.log)
	advisor := advisorhandlers.NewHandlers(s.container.AdvisorService, s.log)
	backups := backuphandlers.NewHandlers(s.container.BackupService, s.log)

	s.router.Route("/api", func(r chi.Router) {
		advisor.RegisterStreamRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			if !devMode {
				r.Use(middleware.Compress(5))
			}

			scoring.RegisterRoutes(r)
			projects.RegisterRoutes(r)
			advisor.RegisterRoutes(r)
			backups.RegisterRoutes(r)

			r.Route("/system", s.systemHandlers.RegisterRoutes)
		})
	})
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

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
