package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/router"
)

func buildRouter(t *testing.T, source string) *router.Router {
	t.Helper()
	g, err := flow.Parse(source)
	require.NoError(t, err)
	return router.New(g)
}

func TestNextAgentsCarriesDisplayNames(t *testing.T) {
	r := buildRouter(t, `
ORIGIN["intake<br/>Origin"]
BOSS["corner office<br/>Boss"]
ORIGIN --> |"go"| BOSS
ORIGIN --> ARCHIVE
`)
	next := r.NextAgents("origin")
	require.Len(t, next, 2)
	assert.Equal(t, router.NextAgent{Target: "boss", Name: "Boss", Label: "go"}, next[0])
	// Undeclared targets fall back to the uppercased identifier.
	assert.Equal(t, router.NextAgent{Target: "archive", Name: "ARCHIVE", Label: "origin_to_archive"}, next[1])
}

func TestNextAgentsTotalFunction(t *testing.T) {
	r := buildRouter(t, `a --> b`)
	assert.Empty(t, r.NextAgents("ghost"), "unknown agent")
	assert.Empty(t, r.NextAgents("b"), "terminal agent")
	assert.NotEmpty(t, r.NextAgents("A"), "case-insensitive lookup")
}

func TestCanTransition(t *testing.T) {
	r := buildRouter(t, `
a --> b
b <--> |"sync"| c
`)
	assert.True(t, r.CanTransition("a", "b"))
	assert.True(t, r.CanTransition("A", "B"))
	assert.False(t, r.CanTransition("b", "a"))
	assert.True(t, r.CanTransition("b", "c"))
	assert.True(t, r.CanTransition("c", "b"), "loop mirror")
	assert.False(t, r.CanTransition("ghost", "a"))
}

func TestIsLoopPair(t *testing.T) {
	r := buildRouter(t, `BOSS <--> |"review"| ORIGIN`)
	assert.True(t, r.IsLoopPair("origin", "boss"))
	assert.True(t, r.IsLoopPair("Boss", "ORIGIN"))
	assert.False(t, r.IsLoopPair("boss", "ghost"))
}

func TestFindPathChain(t *testing.T) {
	r := buildRouter(t, `
a["A"]
b["B"]
c["C"]
a --> b
b --> c
`)
	assert.Equal(t, []string{"a", "b", "c"}, r.FindPath("a", "c"))
	assert.Empty(t, r.FindPath("c", "a"), "no edge back")
}

func TestFindPathSameStartAndEnd(t *testing.T) {
	r := buildRouter(t, `
a["A"]
a --> b
`)
	assert.Equal(t, []string{"a"}, r.FindPath("a", "a"))
	assert.Equal(t, []string{"b"}, r.FindPath("b", "b"), "route targets count as known")
	assert.Empty(t, r.FindPath("ghost", "ghost"), "unknown agents have no path")
}

func TestFindPathRouteOnlyEndpoints(t *testing.T) {
	r := buildRouter(t, `
a["A"]
b["B"]
a --> ghost
a --> b
`)
	// The walk runs over the routing table, so a target no node line ever
	// declared is still reachable.
	assert.Equal(t, []string{"a", "ghost"}, r.FindPath("a", "ghost"))
	assert.Empty(t, r.FindPath("ghost", "b"), "ghost owns no outgoing routes")
	assert.Empty(t, r.FindPath("phantom", "b"), "never-mentioned start")
}

func TestFindPathEdgeOnlySource(t *testing.T) {
	r := buildRouter(t, `
a --> b
b --> c
`)
	assert.Equal(t, []string{"a", "b", "c"}, r.FindPath("a", "c"))
	assert.Equal(t, []string{"a"}, r.FindPath("a", "a"))
	assert.Empty(t, r.FindPath("c", "a"))
}

func TestFindPathTraversesUndeclaredIntermediate(t *testing.T) {
	r := buildRouter(t, `
a["A"]
c["C"]
a --> relay
relay --> c
`)
	assert.Equal(t, []string{"a", "relay", "c"}, r.FindPath("a", "c"))
}

func TestFindPathTerminatesOnCycles(t *testing.T) {
	r := buildRouter(t, `
a["A"]
b["B"]
c["C"]
d["D"]
a <--> |"ping"| b
b <--> |"pong"| c
c --> d
`)
	assert.Equal(t, []string{"a", "b", "c", "d"}, r.FindPath("a", "d"))
	assert.Empty(t, r.FindPath("d", "a"))
}

func TestFindPathPrefersDeclarationOrderOnTies(t *testing.T) {
	r := buildRouter(t, `
start["Start"]
left["Left"]
right["Right"]
goal["Goal"]
start --> left
start --> right
left --> goal
right --> goal
`)
	assert.Equal(t, []string{"start", "left", "goal"}, r.FindPath("start", "goal"))
}

func TestFindPathShortestWins(t *testing.T) {
	r := buildRouter(t, `
start["Start"]
detour["Detour"]
goal["Goal"]
start --> detour
start --> goal
detour --> goal
`)
	assert.Equal(t, []string{"start", "goal"}, r.FindPath("start", "goal"))
}

func TestPathConsecutiveTransitionsHold(t *testing.T) {
	r := buildRouter(t, `
intake["Intake"]
triage["Triage"]
review["Review"]
done["Done"]
intake --> triage
triage <--> |"clarify"| intake
triage --> review
review --> done
`)
	path := r.FindPath("intake", "done")
	require.NotEmpty(t, path)
	assert.Equal(t, "intake", path[0])
	assert.Equal(t, "done", path[len(path)-1])
	for i := 0; i+1 < len(path); i++ {
		assert.True(t, r.CanTransition(path[i], path[i+1]),
			"consecutive path elements must be directly routable")
	}
}

func TestSummaryCounts(t *testing.T) {
	r := buildRouter(t, `
origin["Origin"]
boss["Boss"]
audit["Audit"]
origin --> |"go"| boss
boss <--> |"review"| audit
origin --> SIDE
`)
	s := r.Summary()
	assert.Equal(t, 3, s.Agents)
	assert.Equal(t, 4, s.Routes, "loop counts both directions")
	assert.Equal(t, 1, s.LoopPairs)
	assert.Equal(t, []string{"origin"}, s.EntryPoints)
	assert.Empty(t, s.CompletionPoints)
	assert.Equal(t, map[string]int{"origin": 2, "boss": 1, "audit": 1}, s.RouteCounts)
}

func TestSummaryEmptyGraph(t *testing.T) {
	r := buildRouter(t, "")
	s := r.Summary()
	assert.Zero(t, s.Agents)
	assert.Zero(t, s.Routes)
	assert.Empty(t, s.EntryPoints)
	assert.Empty(t, s.RouteCounts)
}

func TestObserverSeesQueries(t *testing.T) {
	g, err := flow.Parse(`a --> b`)
	require.NoError(t, err)

	var seen []string
	r := router.New(g, router.WithObserver(func(query string) {
		seen = append(seen, query)
	}))

	r.NextAgents("a")
	r.CanTransition("a", "b")
	r.IsLoopPair("a", "b")
	r.FindPath("a", "b")
	r.Summary()

	assert.Equal(t, []string{"next_agents", "can_transition", "is_loop_pair", "find_path", "summary"}, seen)
}
