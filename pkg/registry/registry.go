// Package registry manages a set of named workflow engines behind a single
// handle. Engines are compiled off to the side and swapped in whole, so
// readers never observe a partially built graph.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/ports"
)

// Registry holds the compiled engines for every known workflow.
type Registry struct {
	loader ports.SourceLoader
	logger *slog.Logger
	opts   []espalier.Option

	mu      sync.RWMutex
	engines map[string]*espalier.Engine
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger sets the logger used for reload reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithEngineOptions sets options applied to every engine the registry builds,
// such as espalier.WithStrict or espalier.WithQueryObserver.
func WithEngineOptions(opts ...espalier.Option) Option {
	return func(r *Registry) {
		r.opts = opts
	}
}

// New creates a registry backed by the given source loader.
func New(loader ports.SourceLoader, opts ...Option) *Registry {
	r := &Registry{
		loader:  loader,
		logger:  logging.NewNop(),
		engines: make(map[string]*espalier.Engine),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadAll compiles every workflow the loader knows about. Workflows that fail
// to compile are skipped; their errors are joined and returned after the rest
// have loaded.
func (r *Registry) LoadAll(ctx context.Context) error {
	names, err := r.loader.List(ctx)
	if err != nil {
		return fmt.Errorf("listing workflows: %w", err)
	}

	var errs []error
	for _, name := range names {
		if err := r.Reload(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("workflow %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Reload fetches the named workflow's source and recompiles it. The running
// engine is replaced only after the new one is fully built; on error the
// previous engine, if any, stays registered.
func (r *Registry) Reload(ctx context.Context, name string) error {
	source, err := r.loader.Load(ctx, name)
	if err != nil {
		return err
	}

	eng, err := espalier.New(name, append([]espalier.Option{espalier.WithSource(source)}, r.opts...)...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.engines[name] = eng
	r.mu.Unlock()

	sum := eng.Summary()
	r.logger.Info("workflow loaded",
		"workflow", name,
		"agents", sum.Agents,
		"routes", sum.Routes,
	)
	return nil
}

// Get returns the engine for a workflow name.
// Returns an error if the workflow is not loaded.
func (r *Registry) Get(name string) (*espalier.Engine, error) {
	r.mu.RLock()
	eng, ok := r.engines[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("workflow not loaded: %s", name)
	}
	return eng, nil
}

// Names returns the loaded workflow names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many workflows are currently loaded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}
