package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/flow"
)

// RunExportCacheContract runs a suite of tests verifying that an ExportCache
// implementation adheres to the defined interface contract.
func RunExportCacheContract(t *testing.T, cache ExportCache) {
	ctx := context.Background()
	name := "contract-test-workflow-" + time.Now().Format("20060102150405")

	sample := func() *flow.Export {
		g, err := flow.Parse(`
ORIGIN["intake<br/>Origin"]
BOSS["corner office<br/>Boss"]
ORIGIN --> |"go"| BOSS
BOSS <--> |"review"| ORIGIN
`)
		require.NoError(t, err)
		return g.Export()
	}

	t.Run("Put and Get", func(t *testing.T) {
		export := sample()
		require.NoError(t, cache.Put(ctx, name, export), "Put should not return error")

		loaded, err := cache.Get(ctx, name)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, export.Agents, loaded.Agents)
		assert.Equal(t, export.Routes, loaded.Routes)
		assert.Equal(t, export.LoopPairs, loaded.LoopPairs)
		assert.Equal(t, export.EntryPoints, loaded.EntryPoints)
		assert.Equal(t, export.CompletionPoints, loaded.CompletionPoints)
	})

	t.Run("Put Replaces", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, name, sample()))

		smaller, err := flow.Parse(`solo["Solo"]`)
		require.NoError(t, err)
		require.NoError(t, cache.Put(ctx, name, smaller.Export()))

		loaded, err := cache.Get(ctx, name)
		require.NoError(t, err)
		require.Len(t, loaded.Agents, 1)
		assert.Equal(t, "solo", loaded.Agents[0].ID)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := cache.Get(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, flow.ErrExportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, name, sample()))
		require.NoError(t, cache.Delete(ctx, name), "Delete should not return error")

		_, err := cache.Get(ctx, name)
		assert.ErrorIs(t, err, flow.ErrExportNotFound, "Get after Delete should return ErrExportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, cache.Put(ctx, id1, sample()))
		require.NoError(t, cache.Put(ctx, id2, sample()))

		defer func() {
			_ = cache.Delete(ctx, id1)
			_ = cache.Delete(ctx, id2)
		}()

		names, err := cache.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
