// Package graph renders compiled workflows back to flowchart text.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/flow"
)

// Overlay contains dynamic data to highlight on the rendered graph.
type Overlay struct {
	VisitedAgents []string
	CurrentAgent  string
}

// Render produces flowchart syntax for a compiled graph in canonical form:
// one declaration line per agent in declaration order, then one line per
// route, with loop pairs collapsed back to their bidirectional arrow. The
// output parses back to an equivalent graph.
func Render(g *flow.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	for _, id := range g.AgentIDs() {
		agent, ok := g.Agent(id)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s[%q]\n", agent.ID, agentLabel(agent)))
	}

	seenLoops := make(map[string]bool)
	for _, rt := range g.AllRoutes() {
		switch {
		case rt.IsLoop:
			// Emit the declared direction once; skip the mirrored leg.
			key := loopKey(rt.From, rt.To)
			if seenLoops[key] {
				continue
			}
			seenLoops[key] = true
			sb.WriteString(fmt.Sprintf("    %s <--> |%q| %s\n", rt.From, rt.Label, rt.To))
		case rt.Label == rt.From+"_to_"+rt.To:
			// Auto-generated label, so the plain arrow round-trips.
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", rt.From, rt.To))
		default:
			sb.WriteString(fmt.Sprintf("    %s --> |%q| %s\n", rt.From, rt.Label, rt.To))
		}
	}

	if overlay != nil {
		writeOverlay(&sb, overlay)
	}

	return sb.String()
}

// agentLabel rebuilds the bracket label. Agents declared without a role name
// carry their uppercased id as the name, so that case folds back to the bare
// position.
func agentLabel(a flow.Agent) string {
	if a.Name == strings.ToUpper(a.ID) {
		return a.Position
	}
	return a.Position + "<br/>" + a.Name
}

func loopKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// writeOverlay appends visited/current styling. Style lines are comments and
// unmatched lines to the parser, so an annotated render still parses to the
// same graph.
func writeOverlay(sb *strings.Builder, overlay *Overlay) {
	sb.WriteString("\n    %% overlay styles\n")
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range overlay.VisitedAgents {
		id = flow.NormalizeID(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
	}
	if overlay.CurrentAgent != "" {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", flow.NormalizeID(overlay.CurrentAgent)))
	}
}
