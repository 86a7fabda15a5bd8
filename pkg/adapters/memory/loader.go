// Package memory provides in-memory adapters, primarily for tests and
// embedding workflows directly in a host program.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/espalier/pkg/flow"
)

// Loader is a simple implementation of ports.SourceLoader backed by a map.
type Loader struct {
	sources map[string]string
}

// NewLoader creates a loader pre-populated with the given sources.
func NewLoader(sources map[string]string) *Loader {
	l := &Loader{sources: make(map[string]string, len(sources))}
	for name, source := range sources {
		l.sources[name] = source
	}
	return l
}

// Add registers or replaces a workflow source.
func (l *Loader) Add(name, source string) {
	l.sources[name] = source
}

// Load retrieves a workflow source from memory.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	source, ok := l.sources[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", flow.ErrSourceUnavailable, name)
	}
	return source, nil
}

// List returns the registered workflow names, sorted for determinism.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
