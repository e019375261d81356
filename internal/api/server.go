// Package api provides the HTTP API of the sync server: the singleton document endpoints,
// health and metadata operations, and the change event stream.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkwellpress/editorial-desk/internal/config"
	"github.com/inkwellpress/editorial-desk/internal/ratelimit"
	"github.com/inkwellpress/editorial-desk/internal/sse"
	"github.com/inkwellpress/editorial-desk/internal/store/sqlite"
	"github.com/inkwellpress/editorial-desk/internal/validation"
)

// DefaultMaxBodyBytes caps POST /api/data bodies when the config leaves it unset.
const DefaultMaxBodyBytes = 50 << 20

// DocumentStore is the persistence the server needs. *sqlite.Store implements it.
type DocumentStore interface {
	GetDocument(ctx context.Context) (*sqlite.Document, error)
	PutDocument(ctx context.Context, data []byte) (*sqlite.Document, error)
	GetDocumentInfo(ctx context.Context) (*sqlite.DocumentInfo, error)
	Ping(ctx context.Context) error
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	docs        DocumentStore
	sseManager  *sse.Manager
	sseHandler  http.Handler
	validator   *validation.Validator
	pushLimiter *ratelimit.KeyedRateLimiter
	cfg         config.ServerConfig
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// sseManager and sseHandler may be nil, in which case no events are published.
func NewServer(docs DocumentStore, sseManager *sse.Manager, sseHandler http.Handler, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	s := &Server{
		docs:       docs,
		sseManager: sseManager,
		sseHandler: sseHandler,
		validator:  validation.New(),
		cfg:        cfg,
		router:     router,
		logger:     logger,
	}
	if cfg.PushPerMinute > 0 {
		s.pushLimiter = ratelimit.New(ratelimit.PerInterval(cfg.PushPerMinute, time.Minute), max(1, cfg.PushPerMinute/4), 0)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Editorial Desk Sync API", "1.0.0")
	humaConfig.Info.Description = "Stores the editorial desk document as a single row."
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.pushLimiter != nil {
		s.pushLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerMetaRoutes()

	s.router.Route("/api/data", func(r chi.Router) {
		r.Get("/", s.handleGetData)
		r.With(s.pushRateLimit).Post("/", s.handlePostData)
	})

	if s.sseHandler != nil {
		s.router.Get("/api/events", s.sseHandler.ServeHTTP)
	}
}

// pushRateLimit applies the per-IP push limit when one is configured.
func (s *Server) pushRateLimit(next http.Handler) http.Handler {
	if s.pushLimiter == nil {
		return next
	}
	return RateLimitMiddleware(s.pushLimiter, s.logger)(next)
}
