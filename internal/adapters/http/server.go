// Package http exposes compiled workflow graphs as a JSON API.
//
// Every route answers from the engines held in the registry; only the reload
// endpoint touches workflow sources.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/api"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/aretw0/espalier/pkg/router"
)

const (
	// reloadLockWait bounds how long a reload request waits on the
	// distributed lock before answering 503.
	reloadLockWait = 2 * time.Second
	// reloadLockTTL caps how long a crashed holder can block reloads.
	reloadLockTTL = 10 * time.Second
)

// Server exposes a workflow registry over HTTP.
type Server struct {
	registry   *registry.Registry
	cache      ports.ExportCache
	locker     ports.DistributedLocker
	logger     *slog.Logger
	metrics    *Metrics
	apiVersion string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithExportCache sets the cache backing GET /workflows/{name}/graph.
// Defaults to an in-memory cache.
func WithExportCache(cache ports.ExportCache) Option {
	return func(s *Server) {
		s.cache = cache
	}
}

// WithMetrics sets the metrics collectors. Defaults to a fresh set.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLocker sets the distributed lock guarding reloads. Without one,
// reloads are serialized per process only.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Server) {
		s.locker = locker
	}
}

// NewServer creates a Server for the given registry.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = memory.NewCache()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	s.apiVersion = "unknown"
	if doc, err := api.Document(context.Background()); err != nil {
		s.logger.Warn("openapi document failed to load", "error", err)
	} else if doc.Info != nil {
		s.apiVersion = doc.Info.Version
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.getHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{}))

	// API self-description
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, "text/yaml", api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, "text/html", []byte(swaggerHTML))
	})

	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", s.listWorkflows)
		r.Route("/{workflow}", func(r chi.Router) {
			r.Get("/", s.getSummary)
			r.Get("/graph", s.getGraph)
			r.Get("/mermaid", s.getMermaid)
			r.Get("/validate", s.getValidation)
			r.Get("/agents/{agent}/next", s.getNextAgents)
			r.Get("/transition", s.getTransition)
			r.Get("/loop", s.getLoopPair)
			r.Get("/path", s.getPath)
			r.Post("/reload", s.postReload)
		})
	})

	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Espalier API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// instrument logs every request and feeds the duration histogram, labeled by
// the matched chi route pattern rather than the raw path.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.metrics.Requests.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Info("request served",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

type workflowListResponse struct {
	Workflows []string `json:"workflows"`
}

type summaryResponse struct {
	Workflow string         `json:"workflow"`
	Summary  router.Summary `json:"summary"`
}

type validationResponse struct {
	Workflow string         `json:"workflow"`
	Clean    bool           `json:"clean"`
	Findings []flow.Finding `json:"findings"`
}

type nextAgentsResponse struct {
	Agent string             `json:"agent"`
	Next  []router.NextAgent `json:"next"`
}

type transitionResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed"`
}

type loopPairResponse struct {
	A        string `json:"a"`
	B        string `json:"b"`
	LoopPair bool   `json:"loop_pair"`
}

type pathResponse struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Found bool     `json:"found"`
	Path  []string `json:"path"`
}

type reloadResponse struct {
	Workflow string `json:"workflow"`
	Reloaded bool   `json:"reloaded"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, map[string]string{
		"status":      "ok",
		"version":     strings.TrimSpace(espalier.Version),
		"api_version": s.apiVersion,
	})
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, workflowListResponse{Workflows: s.registry.Names()})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, summaryResponse{Workflow: eng.Name, Summary: eng.Summary()})
}

// getGraph serves the JSON export, going through the export cache so busy
// pollers don't re-serialize an unchanged graph.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	export, err := s.cache.Get(ctx, eng.Name)
	if err != nil {
		if !errors.Is(err, flow.ErrExportNotFound) {
			s.logger.Warn("export cache read failed", "workflow", eng.Name, "error", err)
		}
		export = eng.Export()
		if err := s.cache.Put(ctx, eng.Name, export); err != nil {
			s.logger.Warn("export cache write failed", "workflow", eng.Name, "error", err)
		}
	}
	s.respondJSON(w, export)
}

func (s *Server) getMermaid(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	var visited []string
	if err := runtime.BindQueryParameter("form", false, false, "visited", r.URL.Query(), &visited); err != nil {
		http.Error(w, fmt.Sprintf("invalid visited parameter: %v", err), http.StatusBadRequest)
		return
	}
	var current string
	if err := runtime.BindQueryParameter("form", true, false, "current", r.URL.Query(), &current); err != nil {
		http.Error(w, fmt.Sprintf("invalid current parameter: %v", err), http.StatusBadRequest)
		return
	}

	var overlay *graph.Overlay
	if len(visited) > 0 || current != "" {
		for i := range visited {
			visited[i] = flow.NormalizeID(visited[i])
		}
		overlay = &graph.Overlay{
			VisitedAgents: visited,
			CurrentAgent:  flow.NormalizeID(current),
		}
	}
	writeRaw(w, "text/plain; charset=utf-8", []byte(graph.Render(eng.Graph(), overlay)))
}

func (s *Server) getValidation(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	findings := eng.Validate()
	if findings == nil {
		findings = []flow.Finding{}
	}
	s.respondJSON(w, validationResponse{
		Workflow: eng.Name,
		Clean:    len(findings) == 0,
		Findings: findings,
	})
}

func (s *Server) getNextAgents(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	agent := flow.NormalizeID(chi.URLParam(r, "agent"))
	s.respondJSON(w, nextAgentsResponse{Agent: agent, Next: eng.NextAgents(agent)})
}

func (s *Server) getTransition(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	from, to, ok := pairParams(w, r, "from", "to")
	if !ok {
		return
	}
	s.respondJSON(w, transitionResponse{
		From:    from,
		To:      to,
		Allowed: eng.CanTransition(from, to),
	})
}

func (s *Server) getLoopPair(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	a, b, ok := pairParams(w, r, "a", "b")
	if !ok {
		return
	}
	s.respondJSON(w, loopPairResponse{
		A:        a,
		B:        b,
		LoopPair: eng.IsLoopPair(a, b),
	})
}

func (s *Server) getPath(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engine(w, r)
	if !ok {
		return
	}

	from, to, ok := pairParams(w, r, "from", "to")
	if !ok {
		return
	}
	path := eng.FindPath(from, to)
	if path == nil {
		path = []string{}
	}
	s.respondJSON(w, pathResponse{
		From:  from,
		To:    to,
		Found: len(path) > 0,
		Path:  path,
	})
}

func (s *Server) postReload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "workflow")
	ctx := r.Context()

	// With a shared export cache, concurrent reloads of the same workflow on
	// different replicas would interleave cache writes.
	if s.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, reloadLockWait)
		defer cancel()
		unlock, err := s.locker.Lock(lockCtx, "reload:"+name, reloadLockTTL)
		if err != nil {
			s.metrics.Reloads.WithLabelValues("contended").Inc()
			http.Error(w, fmt.Sprintf("reload already in progress: %s", name), http.StatusServiceUnavailable)
			return
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				s.logger.Warn("reload lock release failed", "workflow", name, "error", err)
			}
		}()
	}

	if err := s.registry.Reload(ctx, name); err != nil {
		s.metrics.Reloads.WithLabelValues("error").Inc()
		if errors.Is(err, flow.ErrSourceUnavailable) {
			http.Error(w, fmt.Sprintf("workflow source not found: %s", name), http.StatusNotFound)
			return
		}
		s.logger.Error("workflow reload failed", "workflow", name, "error", err)
		http.Error(w, fmt.Sprintf("reload failed: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.Reloads.WithLabelValues("ok").Inc()

	if err := s.cache.Delete(ctx, name); err != nil {
		s.logger.Warn("export cache invalidation failed", "workflow", name, "error", err)
	}
	s.respondJSON(w, reloadResponse{Workflow: name, Reloaded: true})
}

// -- Helpers --

// engine resolves the {workflow} URL parameter, answering 404 itself when the
// workflow is not loaded.
func (s *Server) engine(w http.ResponseWriter, r *http.Request) (*espalier.Engine, bool) {
	name := chi.URLParam(r, "workflow")
	eng, err := s.registry.Get(name)
	if err != nil {
		http.Error(w, fmt.Sprintf("workflow not found: %s", name), http.StatusNotFound)
		return nil, false
	}
	return eng, true
}

// pairParams reads two required query parameters, answering 400 when either
// is missing.
func pairParams(w http.ResponseWriter, r *http.Request, first, second string) (string, string, bool) {
	a := flow.NormalizeID(r.URL.Query().Get(first))
	b := flow.NormalizeID(r.URL.Query().Get(second))
	if a == "" || b == "" {
		http.Error(w, fmt.Sprintf("query parameters %q and %q are required", first, second), http.StatusBadRequest)
		return "", "", false
	}
	return a, b, true
}

func (s *Server) respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func writeRaw(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}
