// Package server exposes the diagram pipeline over HTTP.
//
// # Routes
//
//	POST   /diagrams                      build a diagram from a YAML or JSON body
//	GET    /diagrams/{id}                 diagram JSON
//	DELETE /diagrams/{id}                 forget a diagram
//	GET    /diagrams/{id}/render.{format} rendered artifact (svg, png, pdf, json, dot, nodelink)
//	GET    /diagrams/{id}/hover?x=&y=     description of the box nearest to a point
//	GET    /healthz                       liveness
//
// Build requests accept the query parameters analysis, measure and refresh;
// render requests accept popups, scale and refresh. Errors are JSON bodies
// of the form {"error": "...", "code": "..."}.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/instrumap/pkg/config"
	"github.com/matzehuels/instrumap/pkg/pipeline"
	"github.com/matzehuels/instrumap/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Server serves diagrams built by a pipeline.Runner and kept in a store.Store.
type Server struct {
	runner     *pipeline.Runner
	store      store.Store
	style      config.Style
	logger     *log.Logger
	corsOrigin string
	maxBody    int64
	started    time.Time
	router     chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithStyle sets the style every diagram is built and rendered with.
func WithStyle(s config.Style) Option { return func(srv *Server) { srv.style = s } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithCORSOrigin sets the Access-Control-Allow-Origin header value.
func WithCORSOrigin(origin string) Option { return func(srv *Server) { srv.corsOrigin = origin } }

// WithMaxBody limits the size of build request bodies.
func WithMaxBody(n int64) Option { return func(srv *Server) { srv.maxBody = n } }

// New creates a server. The runner and store must be safe for concurrent use.
func New(runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	s := &Server{
		runner:     runner,
		store:      st,
		style:      config.Default(),
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		corsOrigin: "*",
		maxBody:    defaultMaxBody,
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.cors)

	r.Get("/healthz", s.handleHealth)
	r.Route("/diagrams", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/render.{format}", s.handleRender)
			r.Get("/hover", s.handleHover)
		})
	})
	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
