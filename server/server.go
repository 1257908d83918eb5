package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aalemi-dev/kafka-gateway/metrics"
	"github.com/aalemi-dev/kafka-gateway/observability"
	"github.com/aalemi-dev/kafka-gateway/tracer"
)

// Server is the HTTP front of the gateway.
type Server struct {
	cfg  Config
	deps Deps

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	tracer   tracer.Tracer
	requests metrics.Counter
	latency  metrics.Histogram
	inFlight metrics.Gauge

	handlerOnce sync.Once
	handler     http.Handler

	mu       sync.Mutex
	http     *http.Server
	listener net.Listener
	serveErr chan error
}

// NewServer creates a server. Routes are built on first use.
func NewServer(cfg Config, deps Deps) *Server {
	return &Server{cfg: cfg.withDefaults(), deps: deps}
}

// WithObserver sets the observer used for request events.
func (s *Server) WithObserver(observer observability.Observer) *Server {
	s.observer = observer
	return s
}

// WithLogger sets the logger used for access logs and server errors.
func (s *Server) WithLogger(logger Logger) *Server {
	s.logger = logger
	return s
}

// WithTracer starts a span for every request, continuing the trace of the
// caller when its headers carry one.
func (s *Server) WithTracer(t tracer.Tracer) *Server {
	s.tracer = t
	return s
}

// WithMetrics registers request counters and latency histograms in collector.
func (s *Server) WithMetrics(collector metrics.MetricsCollector) *Server {
	s.requests = collector.CreateCounter("gateway_http_requests_total",
		"HTTP requests served by the gateway", []string{"method", "route", "status"})
	s.latency = collector.CreateHistogram("gateway_http_request_duration_seconds",
		"HTTP request latency", []string{"method", "route"},
		[]float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10})
	s.inFlight = collector.CreateGauge("gateway_http_requests_in_flight",
		"HTTP requests currently being served", nil)
	return s
}

// Handler returns the routes of the gateway.
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.handler = s.routes()
	})
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.traceRequests, s.observeRequests, middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errMethodNotAllowed)
	})

	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Route("/topics", func(r chi.Router) {
		r.Options("/{topic}", s.topicOptions)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.listTopics)
			r.Get("/{topic}", s.topicInfo)
			r.With(s.requireTopic, s.decompress, s.limitSize).Post("/{topic}", s.publish)
		})
	})

	if s.cfg.BasePath == "" || s.cfg.BasePath == "/" {
		return r
	}
	root := chi.NewRouter()
	root.Mount(s.cfg.BasePath, r)
	return root
}

// Start listens on Config.Address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	s.listener = ln
	s.serveErr = make(chan error, 1)
	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	srv, errs := s.http, s.serveErr
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if s.logger != nil {
				s.logger.ErrorWithContext(context.Background(), "HTTP server failed", err, nil)
			}
			errs <- err
		}
		close(errs)
	}()

	if s.logger != nil {
		s.logger.InfoWithContext(ctx, "HTTP server listening", nil, map[string]interface{}{
			"address":   ln.Addr().String(),
			"base_path": s.cfg.BasePath,
		})
	}
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, errs := s.http, s.serveErr
	s.http, s.listener = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errs
}
