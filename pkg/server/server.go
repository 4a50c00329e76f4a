// Package server exposes the layout engine over HTTP.
//
// # Routes
//
//	GET    /healthz                          liveness check
//	GET    /metrics                          Prometheus metrics
//	POST   /v1/layout                        stateless, cached layout
//	POST   /v1/sessions                      create an engine session
//	POST   /v1/sessions/{id}/run             run the session's engine
//	PUT    /v1/sessions/{id}/drags/{node}    pin a node and re-run
//	DELETE /v1/sessions/{id}/drags           clear all pins and re-run
//	POST   /v1/sessions/{id}/expand/{node}   expand the path to a hidden node
//	DELETE /v1/sessions/{id}                 end a session
//
// Layout requests carry the graph and the pipeline options:
//
//	{
//	  "graph": {"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]},
//	  "options": {"layout": {"type": "treeTd2d"}, "sizing": {"type": "pagerank"}}
//	}
//
// POST /v1/layout also accepts ?format=svg|png|pdf|dot and then responds
// with the rendered artifact instead of the JSON result.
//
// Errors use a JSON envelope with the machine-readable code:
//
//	{"error": "unknown layout type \"spiral\"", "code": "INVALID_LAYOUT_TYPE"}
package server

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// Options configures a [Server].
type Options struct {
	// Runner serves stateless layout requests. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Sessions holds interactive sessions. Nil creates a registry with the
	// default TTL.
	Sessions *session.Registry

	// Defaults returns the pipeline options applied when a request carries
	// none. Nil uses the zero options.
	Defaults func() pipeline.Options

	// Gatherer backs GET /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer

	// RequestTimeout bounds each request. Zero means 60s.
	RequestTimeout time.Duration

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	sessions *session.Registry
	defaults func() pipeline.Options
	gatherer prometheus.Gatherer
	timeout  time.Duration
	logger   *log.Logger
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry(session.DefaultTTL, opts.Logger)
	}
	if opts.Defaults == nil {
		opts.Defaults = func() pipeline.Options { return pipeline.Options{} }
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	return &Server{
		runner:   opts.Runner,
		sessions: opts.Sessions,
		defaults: opts.Defaults,
		gatherer: opts.Gatherer,
		timeout:  opts.RequestTimeout,
		logger:   opts.Logger,
	}
}

// Sessions returns the server's session registry.
func (s *Server) Sessions() *session.Registry { return s.sessions }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.deleteSession)
				r.Post("/run", s.runSession)
				r.Put("/drags/{node}", s.setDrag)
				r.Delete("/drags", s.clearDrags)
				r.Post("/expand/{node}", s.expand)
			})
		})
	})
	return r
}
