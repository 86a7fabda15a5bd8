package ports

import "context"

// SourceLoader defines how workflow source text is retrieved.
// This allows the storage layer (FS, Memory) to be decoupled.
type SourceLoader interface {
	// Load retrieves the source text of a named workflow. Implementations
	// wrap flow.ErrSourceUnavailable when the source cannot be read at
	// all; malformed content is never a loader concern.
	Load(ctx context.Context, name string) (string, error)

	// List returns the workflow names the loader can serve.
	// This is used for registry population and introspection tools.
	List(ctx context.Context) ([]string, error)
}

// Watchable is an optional interface for loaders that can notify about
// backend changes. Callers type-assert; loaders without change detection
// simply don't implement it.
type Watchable interface {
	// Watch returns a channel that receives the name of each workflow whose
	// source changed. The channel closes when ctx is canceled.
	Watch(ctx context.Context) (<-chan string, error)
}
