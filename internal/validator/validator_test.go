package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/flow"
)

func parse(t *testing.T, source string, opts ...flow.Option) *flow.Graph {
	t.Helper()
	g, err := flow.Parse(source, opts...)
	require.NoError(t, err)
	return g
}

func TestValidateCleanGraph(t *testing.T) {
	g := parse(t, `
origin["Origin"]
boss["Boss"]
origin --> |"go"| boss
`)
	assert.Empty(t, validator.Validate(g))
}

func TestValidateReportsIsolatedAgent(t *testing.T) {
	g := parse(t, `
origin["Origin"]
boss["Boss"]
island["Island"]
origin --> boss
`)
	findings := validator.Validate(g)
	require.Len(t, findings, 1)
	assert.Equal(t, flow.CheckUnreachable, findings[0].Check)
	assert.Contains(t, findings[0].Message, "island")
	assert.NotContains(t, findings[0].Message, "origin")
}

func TestValidateCombinesUnreachableAgents(t *testing.T) {
	g := parse(t, `
a["A"]
lost1["Lost"]
lost2["Lost"]
a --> b
`)
	findings := validator.Validate(g)

	var unreachable []flow.Finding
	for _, f := range findings {
		if f.Check == flow.CheckUnreachable {
			unreachable = append(unreachable, f)
		}
	}
	require.Len(t, unreachable, 1, "unreached agents are reported in one combined finding")
	assert.Contains(t, unreachable[0].Message, "lost1")
	assert.Contains(t, unreachable[0].Message, "lost2")
}

func TestValidateBrokenReference(t *testing.T) {
	g := parse(t, `
origin["Origin"]
origin --> |"haunt"| GHOST
`)
	findings := validator.Validate(g)
	require.Len(t, findings, 1)
	assert.Equal(t, flow.CheckBrokenReference, findings[0].Check)
	assert.Contains(t, findings[0].Message, "origin -> ghost")
}

func TestValidateLoopWithUndeclaredPartner(t *testing.T) {
	g := parse(t, `
hub["Hub"]
hub <--> |"sync"| phantom
`)
	findings := validator.Validate(g)

	var broken []flow.Finding
	for _, f := range findings {
		if f.Check == flow.CheckBrokenReference {
			broken = append(broken, f)
		}
	}
	require.Len(t, broken, 1, "only the forward half targets the undeclared agent")
	assert.Contains(t, broken[0].Message, "hub -> phantom")
}

func TestValidateTargetsAreReachableRoots(t *testing.T) {
	// boss is never an entry point, but it is a route target, so the
	// crawl starts there too and nothing downstream counts as unreached.
	g := parse(t, `
origin["Origin"]
boss["Boss"]
archive["Archive"]
origin --> boss
boss --> archive
`)
	assert.Empty(t, validator.Validate(g))
}

func TestValidateStrictAdvisoriesComeFirst(t *testing.T) {
	g := parse(t, `
a["One"]
a["Two"]
mystery line here
a --> ghost
`, flow.WithStrict())

	findings := validator.Validate(g)
	require.Len(t, findings, 3)
	assert.Equal(t, flow.CheckDuplicateDeclaration, findings[0].Check)
	assert.Equal(t, flow.CheckIgnoredLine, findings[1].Check)
	assert.Equal(t, flow.CheckBrokenReference, findings[2].Check)
}

func TestValidateEmptyGraph(t *testing.T) {
	assert.Empty(t, validator.Validate(parse(t, "")))
}
