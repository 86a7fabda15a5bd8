// Package validator runs pure, read-only checks over a built flow.Graph.
// Findings are advisory: the graph stays fully usable for routing no matter
// what the validator reports.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/flow"
)

// Validate returns every finding for the graph in stable order: strict-parse
// advisories first, then unreachable agents, dead ends and broken references.
// Each check is independent and always runs. An empty slice means no issues.
func Validate(g *flow.Graph) []flow.Finding {
	var findings []flow.Finding
	findings = append(findings, g.Advisories()...)
	findings = append(findings, checkUnreachable(g)...)
	findings = append(findings, checkDeadEnds(g)...)
	findings = append(findings, checkBrokenReferences(g)...)
	return findings
}

// checkUnreachable crawls forward from every entry point and every route
// target, then reports declared agents the crawl never touched, combined
// into a single finding.
func checkUnreachable(g *flow.Graph) []flow.Finding {
	queue := g.EntryPoints()
	for _, rt := range g.AllRoutes() {
		queue = append(queue, rt.To)
	}

	reached := make(map[string]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if reached[current] {
			continue
		}
		reached[current] = true

		for _, rt := range g.Routes(current) {
			if !reached[rt.To] {
				queue = append(queue, rt.To)
			}
		}
	}

	var unreached []string
	for _, id := range g.AgentIDs() {
		if !reached[id] {
			unreached = append(unreached, id)
		}
	}
	if len(unreached) == 0 {
		return nil
	}
	return []flow.Finding{{
		Check: flow.CheckUnreachable,
		Message: fmt.Sprintf("agents unreachable from any entry point or route target: %s",
			strings.Join(unreached, ", ")),
	}}
}

// checkDeadEnds guards the completion-point definition: an agent without
// outgoing routes must appear among the completion points. The builder makes
// a violation structurally impossible today; the check stays as an invariant
// guard in case the classification is ever relaxed.
func checkDeadEnds(g *flow.Graph) []flow.Finding {
	completion := make(map[string]bool)
	for _, id := range g.CompletionPoints() {
		completion[id] = true
	}

	var findings []flow.Finding
	for _, id := range g.AgentIDs() {
		if len(g.Routes(id)) == 0 && !completion[id] {
			findings = append(findings, flow.Finding{
				Check:   flow.CheckDeadEnd,
				Message: fmt.Sprintf("agent %q has no outgoing routes but is not a completion point", id),
			})
		}
	}
	return findings
}

// checkBrokenReferences reports one finding per route whose target was never
// declared, including the synthesized half of a loop pair.
func checkBrokenReferences(g *flow.Graph) []flow.Finding {
	var findings []flow.Finding
	for _, rt := range g.AllRoutes() {
		if !g.HasAgent(rt.To) {
			findings = append(findings, flow.Finding{
				Check:   flow.CheckBrokenReference,
				Message: fmt.Sprintf("route %s -> %s targets an undeclared agent", rt.From, rt.To),
			})
		}
	}
	return findings
}
