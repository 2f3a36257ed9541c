package server

import (
	"context"
	"net/http"
	"time"

	"tutorials/internal/middleware"
	"tutorials/internal/model"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TutorialService is the set of operations the HTTP layer exposes.
// *service.Service implements it.
type TutorialService interface {
	List(ctx context.Context) ([]model.Tutorial, error)
	ListByTitle(ctx context.Context, title string) ([]model.Tutorial, error)
	ListByPublished(ctx context.Context, published bool) ([]model.Tutorial, error)
	Get(ctx context.Context, id int64) (model.Tutorial, bool, error)
	Create(ctx context.Context, in model.TutorialInput) (model.Tutorial, error)
	Update(ctx context.Context, id int64, in model.TutorialInput) (model.Tutorial, bool, error)
	Delete(ctx context.Context, id int64) bool
	DeleteAll(ctx context.Context) error
}

// MetricsProvider exposes request recording plus a scrape endpoint.
type MetricsProvider interface {
	middleware.Recorder
	Handler() http.Handler
}

// Options tune the HTTP server. Zero values fall back to sane defaults.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	svc     TutorialService
	metrics MetricsProvider
	logger  *zap.Logger
	router  *mux.Router
	server  *http.Server
	opts    Options
}

// NewServer wires routes and middleware. metrics may be nil.
func NewServer(svc TutorialService, metrics MetricsProvider, logger *zap.Logger, opts Options) *Server {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 15 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}

	s := &Server{
		svc:     svc,
		metrics: metrics,
		logger:  logger,
		router:  mux.NewRouter(),
		opts:    opts,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
	)
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/tutorials").Subrouter()
	api.HandleFunc("", s.handleList).Methods("GET")
	api.HandleFunc("", s.handleCreate).Methods("POST")
	api.HandleFunc("", s.handleDeleteAll).Methods("DELETE")
	// Must precede /{id} so "published" is not parsed as an id.
	api.HandleFunc("/published", s.handlePublished).Methods("GET")
	api.HandleFunc("/{id}", s.handleGet).Methods("GET")
	api.HandleFunc("/{id}", s.handleUpdate).Methods("PUT")
	api.HandleFunc("/{id}", s.handleDelete).Methods("DELETE")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
