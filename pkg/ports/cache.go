package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/flow"
)

// ExportCache stores serialized workflow exports keyed by workflow name.
// Caching is a convenience for external tooling; the router always operates
// on a freshly parsed graph and never reads an export back.
type ExportCache interface {
	// Put stores the export for a workflow name, replacing any previous one.
	Put(ctx context.Context, name string, export *flow.Export) error

	// Get retrieves a stored export.
	// Returns flow.ErrExportNotFound if nothing is stored under the name.
	Get(ctx context.Context, name string) (*flow.Export, error)

	// Delete removes the export for a workflow name.
	Delete(ctx context.Context, name string) error

	// List returns the workflow names with stored exports.
	List(ctx context.Context) ([]string, error)
}
