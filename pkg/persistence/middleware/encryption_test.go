package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/ports"
)

var (
	keyA = []byte("01234567890123456789012345678901")
	keyB = []byte("abcdefghijklmnopqrstuvwxyz012345")
)

func sampleExport(t *testing.T) *flow.Export {
	t.Helper()
	g, err := flow.Parse(`triage["Triage"]
expert["Expert"]
done["Done"]
triage --> |"assigns"| expert
expert --> done`)
	require.NoError(t, err)
	return g.Export()
}

func TestEncryption_RoundTrip(t *testing.T) {
	inner := memory.NewCache()
	var cache ports.ExportCache = NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyA})(inner)
	ctx := context.Background()

	export := sampleExport(t)
	require.NoError(t, cache.Put(ctx, "support", export))

	loaded, err := cache.Get(ctx, "support")
	require.NoError(t, err)
	assert.Equal(t, export.Agents, loaded.Agents)
	assert.Equal(t, export.Routes, loaded.Routes)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryption_StoresOnlyEnvelope(t *testing.T) {
	inner := memory.NewCache()
	cache := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyA})(inner)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "support", sampleExport(t)))

	// Bypass the middleware: the backing store must hold ciphertext only.
	raw, err := inner.Get(ctx, "support")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Agents)
	assert.Empty(t, raw.Routes)
}

func TestEncryption_FailsSecureOnPlainEntry(t *testing.T) {
	inner := memory.NewCache()
	cache := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyA})(inner)
	ctx := context.Background()

	// Entry written before encryption was enabled.
	require.NoError(t, inner.Put(ctx, "legacy", sampleExport(t)))

	_, err := cache.Get(ctx, "legacy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envelope")
}

func TestEncryption_KeyRotation(t *testing.T) {
	inner := memory.NewCache()
	ctx := context.Background()

	oldCache := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyA})(inner)
	require.NoError(t, oldCache.Put(ctx, "support", sampleExport(t)))

	// New active key with the old one as fallback still reads old entries.
	rotated := NewEncryptionMiddleware(EncryptionConfig{
		ActiveKey:    keyB,
		FallbackKeys: [][]byte{keyA},
	})(inner)
	loaded, err := rotated.Get(ctx, "support")
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.Agents)

	// Without the fallback the old entry is unreadable.
	strict := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyB})(inner)
	_, err = strict.Get(ctx, "support")
	require.Error(t, err)
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	assert.Panics(t, func() {
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: []byte("too short")})
	})
}

func TestEncryption_DeleteAndListPassThrough(t *testing.T) {
	inner := memory.NewCache()
	cache := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: keyA})(inner)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "support", sampleExport(t)))

	names, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"support"}, names)

	require.NoError(t, cache.Delete(ctx, "support"))
	_, err = cache.Get(ctx, "support")
	assert.ErrorIs(t, err, flow.ErrExportNotFound)
}
