package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
)

// SourceLoaderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.SourceLoader. setupData maps the workflow names
// the loader was prepared with to their expected source text.
func SourceLoaderContractTest(t *testing.T, loader ports.SourceLoader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for name, expected := range setupData {
			source, err := loader.Load(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading workflow %s: %v", name, err)
			}
			if source != expected {
				t.Errorf("source mismatch for %s. got %q, want %q", name, source, expected)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-workflow")
		if err == nil {
			t.Fatal("expected error for non-existent workflow, got nil")
		}
		if !errors.Is(err, flow.ErrSourceUnavailable) {
			t.Errorf("expected flow.ErrSourceUnavailable, got: %v", err)
		}
	})

	t.Run("List_Complete", func(t *testing.T) {
		names, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing workflows: %v", err)
		}
		if len(names) != len(setupData) {
			t.Errorf("expected %d workflows, got %d: %v", len(setupData), len(names), names)
		}
		for _, name := range names {
			if _, ok := setupData[name]; !ok {
				t.Errorf("listed unexpected workflow %q", name)
			}
		}
	})
}
