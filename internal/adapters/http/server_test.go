package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/registry"
)

const supportSource = `triage["Front Desk<br/>Triage"]
expert["Expert"]
peer["Peer Review"]
done["Resolution"]
triage --> |"needs review"| expert
expert <--> |"consults"| peer
expert --> done`

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Loader) {
	t.Helper()
	loader := memory.NewLoader(map[string]string{
		"support": supportSource,
		"broken":  "a[\"Alpha\"]\na --> ghost",
	})
	reg := registry.New(loader)
	require.NoError(t, reg.LoadAll(context.Background()))
	return NewServer(reg, opts...), loader
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, resp["version"])
}

func TestListWorkflows(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp workflowListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"broken", "support"}, resp.Workflows)
}

func TestGetSummary(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/support")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "support", resp.Workflow)
	assert.Equal(t, 4, resp.Summary.Agents)
	assert.Equal(t, 1, resp.Summary.LoopPairs)
	assert.Equal(t, []string{"triage"}, resp.Summary.EntryPoints)
}

func TestGetSummary_NotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/nope")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetGraph(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/support/graph")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var export struct {
		Agents []json.RawMessage `json:"agents"`
		Routes []json.RawMessage `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &export))
	assert.Len(t, export.Agents, 4)
	assert.Len(t, export.Routes, 4)

	// The export lands in the cache and the second hit serves the same bytes.
	_, err := s.cache.Get(context.Background(), "support")
	require.NoError(t, err)
	again := doRequest(s, http.MethodGet, "/workflows/support/graph")
	assert.Equal(t, rr.Body.String(), again.Body.String())
}

func TestGetMermaid(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/support/mermaid")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "flowchart TD\n"))
	assert.Contains(t, rr.Body.String(), "expert <--> |\"consults\"| peer")
}

func TestGetValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rr := doRequest(s, http.MethodGet, "/workflows/support/validate")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp validationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Clean)
	assert.NotNil(t, resp.Findings)
	assert.Empty(t, resp.Findings)

	rr = doRequest(s, http.MethodGet, "/workflows/broken/validate")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Clean)
	require.NotEmpty(t, resp.Findings)
	assert.Equal(t, "broken-reference", resp.Findings[0].Check)
}

func TestGetNextAgents(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/support/agents/TRIAGE/next")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp nextAgentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "triage", resp.Agent)
	require.Len(t, resp.Next, 1)
	assert.Equal(t, "expert", resp.Next[0].Target)
	assert.Equal(t, "needs review", resp.Next[0].Label)
}

func TestGetTransition(t *testing.T) {
	s, _ := newTestServer(t)

	rr := doRequest(s, http.MethodGet, "/workflows/support/transition?from=triage&to=expert")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp transitionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)

	rr = doRequest(s, http.MethodGet, "/workflows/support/transition?from=done&to=triage")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)

	rr = doRequest(s, http.MethodGet, "/workflows/support/transition?from=triage")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetLoopPair(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodGet, "/workflows/support/loop?a=peer&b=expert")

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp loopPairResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.LoopPair)
}

func TestGetPath(t *testing.T) {
	s, _ := newTestServer(t)

	rr := doRequest(s, http.MethodGet, "/workflows/support/path?from=triage&to=done")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp pathResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, []string{"triage", "expert", "done"}, resp.Path)

	rr = doRequest(s, http.MethodGet, "/workflows/support/path?from=done&to=triage")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Equal(t, []string{}, resp.Path)
}

func TestPostReload(t *testing.T) {
	s, loader := newTestServer(t)

	// Prime the export cache so the reload has something to invalidate.
	doRequest(s, http.MethodGet, "/workflows/support/graph")
	_, err := s.cache.Get(context.Background(), "support")
	require.NoError(t, err)

	loader.Add("support", supportSource+"\narchive[\"Archive\"]\ndone --> archive")
	rr := doRequest(s, http.MethodPost, "/workflows/support/reload")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp reloadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Reloaded)

	// The cache entry is gone and the registry serves the new graph.
	names, err := s.cache.List(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, names, "support")

	var sum summaryResponse
	rr = doRequest(s, http.MethodGet, "/workflows/support")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sum))
	assert.Equal(t, 5, sum.Summary.Agents)
}

func TestPostReload_UnknownSource(t *testing.T) {
	s, _ := newTestServer(t)
	rr := doRequest(s, http.MethodPost, "/workflows/ghost/reload")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

type stubLocker struct{ err error }

func (s stubLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if s.err != nil {
		return nil, s.err
	}
	return func(context.Context) error { return nil }, nil
}

func TestPostReload_LockHeld(t *testing.T) {
	s, _ := newTestServer(t, WithLocker(stubLocker{err: context.DeadlineExceeded}))
	rr := doRequest(s, http.MethodPost, "/workflows/support/reload")

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPostReload_LockAcquired(t *testing.T) {
	s, _ := newTestServer(t, WithLocker(stubLocker{}))
	rr := doRequest(s, http.MethodPost, "/workflows/support/reload")

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	loader := memory.NewLoader(map[string]string{"support": supportSource})
	metrics := NewMetrics()
	reg := registry.New(loader, registry.WithEngineOptions(
		espalier.WithQueryObserver(metrics.Observer()),
	))
	require.NoError(t, reg.LoadAll(context.Background()))
	s := NewServer(reg, WithMetrics(metrics))

	doRequest(s, http.MethodGet, "/workflows/support/agents/triage/next")
	doRequest(s, http.MethodPost, "/workflows/support/reload")

	rr := doRequest(s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, `espalier_queries_total{query="next_agents"} 1`)
	assert.Contains(t, body, `espalier_reloads_total{outcome="ok"} 1`)
	assert.Contains(t, body, "espalier_request_duration_seconds")
}
