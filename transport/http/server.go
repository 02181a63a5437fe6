// Package http serves the router over a JSON HTTP API built on chi. The
// connect RPC handler and the Prometheus scrape endpoint mount on the same
// router.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tailored-agentic-units/router/agent"
	"github.com/tailored-agentic-units/router/kernel"
	"github.com/tailored-agentic-units/router/orchestrate/state"
	"github.com/tailored-agentic-units/router/transport/rpc"
)

// InvokeRequest is the body of POST /v1/invoke.
type InvokeRequest struct {
	Input string `json:"input"`
}

// GraphResponse describes the routing topology.
type GraphResponse struct {
	Name    string            `json:"name"`
	Entry   string            `json:"entry"`
	Stages  []state.StageInfo `json:"stages"`
	Edges   []state.Edge      `json:"edges"`
	Mermaid string            `json:"mermaid"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Option configures the handler.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *options) { o.gatherer = g }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

type server struct {
	invoker kernel.Invoker
	graph   *state.Graph
	logger  *slog.Logger
}

// NewHandler returns the HTTP API for invoker. graph backs GET /v1/graph and
// may be nil when the invoker is remote.
//
//	POST /v1/invoke   {"input": "..."} -> kernel.Result
//	GET  /v1/graph    topology and mermaid source
//	GET  /healthz
//	GET  /metrics
//	POST /router.v1.RouterService/Invoke (connect)
func NewHandler(invoker kernel.Invoker, graph *state.Graph, opts ...Option) http.Handler {
	o := options{
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &server{invoker: invoker, graph: graph, logger: o.logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if o.timeout > 0 {
		r.Use(middleware.Timeout(o.timeout))
	}

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/invoke", s.invoke)
		r.Get("/graph", s.describe)
	})

	path, handler := rpc.NewHandler(invoker)
	r.Mount(path, handler)

	return r
}

func (s *server) invoke(w http.ResponseWriter, r *http.Request) {
	var body InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("invoke: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(body.Input) == "" {
		writeError(w, http.StatusBadRequest, kernel.ErrEmptyInput)
		return
	}

	result, err := s.invoker.Invoke(r.Context(), body.Input)
	if err != nil {
		status := Status(err)
		s.logger.Error("invoke failed", "error", err, "status", status,
			"request_id", middleware.GetReqID(r.Context()))
		if status >= http.StatusInternalServerError {
			err = errors.New(http.StatusText(status))
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) describe(w http.ResponseWriter, r *http.Request) {
	if s.graph == nil {
		writeError(w, http.StatusNotFound, errors.New("graph not available"))
		return
	}

	writeJSON(w, http.StatusOK, GraphResponse{
		Name:    s.graph.Name(),
		Entry:   s.graph.Entry(),
		Stages:  s.graph.Stages(),
		Edges:   s.graph.Edges(),
		Mermaid: s.graph.Mermaid(),
	})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status maps a router error onto an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, kernel.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrPortUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
