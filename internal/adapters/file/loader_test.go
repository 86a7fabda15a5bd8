package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/adapters/file"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports/tests"
)

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	setup := map[string]string{
		"escalation": "ORIGIN --> BOSS\n",
		"review":     "BOSS <--> |\"review\"| ORIGIN\n",
	}
	for name, source := range setup {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+file.Ext), []byte(source), 0o644))
	}
	// Files outside the extension convention are not workflows.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	tests.SourceLoaderContractTest(t, file.New(dir), setup)
}

func TestFileLoaderEmptyDirectory(t *testing.T) {
	loader := file.New(filepath.Join(t.TempDir(), "missing"))
	names, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := file.ReadSource(filepath.Join(t.TempDir(), "ghost.mmd"))
	assert.ErrorIs(t, err, flow.ErrSourceUnavailable)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.mmd")
	require.NoError(t, os.WriteFile(path, []byte("a --> b\n"), 0o644))

	source, err := file.ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "a --> b\n", source)
}
