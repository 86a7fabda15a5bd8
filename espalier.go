package espalier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/espalier/internal/adapters/file"
	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/router"
)

// Parse compiles flowchart source text into an immutable workflow graph.
// It is a thin veneer over flow.Parse for callers that only need the graph.
func Parse(source string, opts ...flow.Option) (*flow.Graph, error) {
	return flow.Parse(source, opts...)
}

// ParseStrict is Parse with advisory recording enabled: ignored lines and
// duplicate declarations show up as findings on the graph.
func ParseStrict(source string, opts ...flow.Option) (*flow.Graph, error) {
	return flow.Parse(source, append(opts, flow.WithStrict())...)
}

// Engine is the high-level entry point for the espalier library: one named
// workflow, its compiled graph and a router answering queries over it.
// An Engine is immutable after New; to pick up changed source, build a new
// Engine and drop the old one.
type Engine struct {
	graph    *flow.Graph
	router   *router.Router
	loader   ports.SourceLoader
	logger   *slog.Logger
	observer func(query string)
	strict   bool

	source    string
	hasSource bool

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom SourceLoader, bypassing the default file read.
// The path argument of New is then used only to derive the workflow name.
func WithLoader(l ports.SourceLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithSource supplies the workflow source directly, bypassing all loading.
// The path argument of New is then used only to derive the workflow name.
func WithSource(source string) Option {
	return func(e *Engine) {
		e.source = source
		e.hasSource = true
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrict records parse advisories (duplicate declarations, ignored
// lines) so Validate surfaces them alongside structural findings.
func WithStrict() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// WithQueryObserver registers a callback invoked once per router query with
// the query name. Serving adapters use it to feed metrics.
func WithQueryObserver(fn func(query string)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// New initializes an Engine for the workflow at the given path.
// By default the path is read as a flowchart file; WithSource or WithLoader
// replace that, leaving the path as a naming hint only.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	// Apply options first to know how the source arrives.
	for _, opt := range opts {
		opt(eng)
	}

	if path != "" {
		eng.Name = strings.TrimSuffix(filepath.Base(path), file.Ext)
	}

	if !eng.hasSource {
		switch {
		case eng.loader != nil:
			source, err := eng.loader.Load(context.Background(), eng.Name)
			if err != nil {
				return nil, err
			}
			eng.source = source
		case path != "":
			source, err := file.ReadSource(path)
			if err != nil {
				return nil, err
			}
			eng.source = source
		default:
			return nil, fmt.Errorf("path is required when no source or loader is provided")
		}
	}

	// Ensure a logger so adapters never receive nil.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("workflow", eng.Name)
	}

	var parseOpts []flow.Option
	if eng.strict {
		parseOpts = append(parseOpts, flow.WithStrict())
	}
	graph, err := flow.Parse(eng.source, parseOpts...)
	if err != nil {
		return nil, err
	}
	eng.graph = graph

	var routerOpts []router.Option
	if eng.observer != nil {
		routerOpts = append(routerOpts, router.WithObserver(eng.observer))
	}
	eng.router = router.New(graph, routerOpts...)

	eng.logger.Debug("workflow compiled",
		"agents", len(graph.AgentIDs()),
		"routes", graph.RouteCount(),
		"loops", len(graph.LoopPairs()),
	)
	return eng, nil
}

// Graph returns the compiled workflow graph.
func (e *Engine) Graph() *flow.Graph {
	return e.graph
}

// Router returns the query engine over the graph.
func (e *Engine) Router() *router.Router {
	return e.router
}

// Validate runs every structural check and returns the findings, strict-parse
// advisories first. An empty slice means no issues found.
func (e *Engine) Validate() []flow.Finding {
	return validator.Validate(e.graph)
}

// NextAgents returns the outgoing options for an agent in routing order.
func (e *Engine) NextAgents(current string) []router.NextAgent {
	return e.router.NextAgents(current)
}

// CanTransition reports whether a direct route exists.
func (e *Engine) CanTransition(from, to string) bool {
	return e.router.CanTransition(from, to)
}

// IsLoopPair reports whether two agents share a bidirectional declaration.
func (e *Engine) IsLoopPair(a, b string) bool {
	return e.router.IsLoopPair(a, b)
}

// FindPath returns the shortest route sequence between two agents.
func (e *Engine) FindPath(start, end string) []string {
	return e.router.FindPath(start, end)
}

// Summary aggregates graph-wide counts.
func (e *Engine) Summary() router.Summary {
	return e.router.Summary()
}

// Export returns the serialized form of the graph for caching or inspection.
func (e *Engine) Export() *flow.Export {
	return e.graph.Export()
}

// Loader returns the SourceLoader used by the engine, if any.
func (e *Engine) Loader() ports.SourceLoader {
	return e.loader
}
