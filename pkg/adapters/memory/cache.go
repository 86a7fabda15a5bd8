package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/espalier/pkg/flow"
)

// Cache is an in-memory ports.ExportCache. Exports round-trip through JSON so
// callers always get their own copy, matching the Redis adapter's semantics.
type Cache struct {
	mu      sync.RWMutex
	exports map[string][]byte
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{exports: make(map[string][]byte)}
}

// Put stores the export for a workflow name.
func (c *Cache) Put(ctx context.Context, name string, export *flow.Export) error {
	data, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exports[name] = data
	return nil
}

// Get retrieves a stored export.
func (c *Cache) Get(ctx context.Context, name string) (*flow.Export, error) {
	c.mu.RLock()
	data, ok := c.exports[name]
	c.mu.RUnlock()
	if !ok {
		return nil, flow.ErrExportNotFound
	}

	var export flow.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	return &export, nil
}

// Delete removes a stored export.
func (c *Cache) Delete(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.exports, name)
	return nil
}

// List returns the workflow names with stored exports, sorted.
func (c *Cache) List(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.exports))
	for name := range c.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
