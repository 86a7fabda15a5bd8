package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/espalier/pkg/flow"
)

// Ext is the extension the loader recognizes as workflow source.
const Ext = ".mmd"

// Loader implements ports.SourceLoader over a directory of flowchart files.
// The workflow name is the file name without the extension.
type Loader struct {
	BasePath string
}

// New creates a Loader rooted at basePath. Empty means the current directory.
func New(basePath string) *Loader {
	if basePath == "" {
		basePath = "."
	}
	return &Loader{BasePath: basePath}
}

// Load reads the source text of a named workflow. A missing file surfaces
// flow.ErrSourceUnavailable so callers can tell the fatal tier apart from
// ordinary read failures.
func (l *Loader) Load(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("workflow name cannot be empty")
	}
	return ReadSource(filepath.Join(l.BasePath, name+Ext))
}

// List returns the workflow names available under the base path.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Ext))
	}
	return names, nil
}

// ReadSource reads a single flowchart file by literal path, outside the
// name-plus-extension convention. Missing files surface
// flow.ErrSourceUnavailable.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", flow.ErrSourceUnavailable, path)
		}
		return "", fmt.Errorf("failed to read workflow file: %w", err)
	}
	return string(data), nil
}
