package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/flow"
)

func mustParse(t *testing.T, source string) *flow.Graph {
	t.Helper()
	g, err := flow.Parse(source)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return g
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
	}{
		{
			name: "Agent With Role Name",
			source: `writer["Writing Desk<br/>Writer"]
done["Resolution"]
writer --> done`,
			contains: []string{
				"flowchart TD\n",
				"    writer[\"Writing Desk<br/>Writer\"]\n",
				"    done[\"Resolution\"]\n",
			},
		},
		{
			name: "Agent Without Role Name",
			source: `done["Resolution"]
next["Step"]
done --> next`,
			contains: []string{
				"    done[\"Resolution\"]\n",
			},
		},
		{
			name: "Labeled Route",
			source: `a["Alpha"]
b["Beta"]
a --> |"escalates"| b`,
			contains: []string{
				"    a --> |\"escalates\"| b\n",
			},
		},
		{
			name: "Auto Label Folds To Plain Arrow",
			source: `a["Alpha"]
b["Beta"]
a --> b`,
			contains: []string{
				"    a --> b\n",
			},
		},
		{
			name: "Undeclared Target Has No Declaration",
			source: `a["Alpha"]
a --> ghost`,
			contains: []string{
				"    a --> ghost\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.Render(mustParse(t, tt.source), nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = \n%v\nWant substring: %q", got, want)
				}
			}
		})
	}
}

func TestRender_LoopEmittedOnce(t *testing.T) {
	got := graph.Render(mustParse(t, `a["Alpha"]
b["Beta"]
a <--> |"sync"| b`), nil)

	if want := "    a <--> |\"sync\"| b\n"; !strings.Contains(got, want) {
		t.Errorf("Render() = \n%v\nWant substring: %q", got, want)
	}
	if n := strings.Count(got, "<-->"); n != 1 {
		t.Errorf("Expected exactly one bidirectional arrow, got %d in:\n%v", n, got)
	}
	if strings.Contains(got, "b <--> a") || strings.Contains(got, "b --> a") {
		t.Errorf("Mirrored leg should not be emitted:\n%v", got)
	}
}

func TestRender_Canonical(t *testing.T) {
	source := `flowchart TD
    %% escalation flow
    triage["Front Desk<br/>Triage"]
    expert["Expert"]
    peer["Peer Review"]
    done["Resolution"]
    triage --> |"needs review"| expert
    expert <--> |"consults"| peer
    expert --> done
`
	want := "flowchart TD\n" +
		"    triage[\"Front Desk<br/>Triage\"]\n" +
		"    expert[\"Expert\"]\n" +
		"    peer[\"Peer Review\"]\n" +
		"    done[\"Resolution\"]\n" +
		"    triage --> |\"needs review\"| expert\n" +
		"    expert <--> |\"consults\"| peer\n" +
		"    expert --> done\n"

	if got := graph.Render(mustParse(t, source), nil); got != want {
		t.Errorf("Render() = \n%v\nWant:\n%v", got, want)
	}
}

// Rendering is a fixpoint: parsing canonical output and rendering again
// reproduces it byte for byte.
func TestRender_RoundTrip(t *testing.T) {
	source := `start["Kickoff"]
dev["Dev Desk<br/>Builder"]
reviewer["Reviewer"]
ship["Shipped"]
start --> |"hands off"| dev
dev <--> |"pairs"| reviewer
dev --> ship
reviewer --> ship
`
	first := graph.Render(mustParse(t, source), nil)
	second := graph.Render(mustParse(t, first), nil)
	if first != second {
		t.Errorf("Round trip drifted.\nFirst:\n%v\nSecond:\n%v", first, second)
	}
}

func TestRender_Overlay(t *testing.T) {
	g := mustParse(t, `a["Alpha"]
b["Beta"]
c["Gamma"]
a --> b
b --> c`)

	got := graph.Render(g, &graph.Overlay{
		VisitedAgents: []string{"a", "A", "b"},
		CurrentAgent:  "C",
	})

	for _, want := range []string{
		"classDef visited",
		"classDef current",
		"    class a visited;\n",
		"    class b visited;\n",
		"    class c current;\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = \n%v\nWant substring: %q", got, want)
		}
	}
	if n := strings.Count(got, "class a visited"); n != 1 {
		t.Errorf("Expected visited agents deduplicated, got %d occurrences", n)
	}

	// The annotated render still parses to the same topology.
	reparsed := mustParse(t, got)
	if !reparsed.HasAgent("c") || len(reparsed.AllRoutes()) != 2 {
		t.Errorf("Annotated render no longer parses cleanly:\n%v", got)
	}
}
