package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/flow"
	"github.com/aretw0/espalier/pkg/router"
)

// Report collects everything the summary view shows for one workflow.
type Report struct {
	Name     string
	Summary  router.Summary
	Routes   []flow.Route
	Findings []flow.Finding
}

// Markdown renders the report for a glamour renderer.
func (r Report) Markdown() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Workflow: %s\n\n", r.Name)

	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("| --- | --- |\n")
	fmt.Fprintf(&sb, "| Agents | %d |\n", r.Summary.Agents)
	fmt.Fprintf(&sb, "| Routes | %d |\n", r.Summary.Routes)
	fmt.Fprintf(&sb, "| Loop pairs | %d |\n\n", r.Summary.LoopPairs)

	fmt.Fprintf(&sb, "**Entry points:** %s\n\n", idList(r.Summary.EntryPoints))
	fmt.Fprintf(&sb, "**Completion points:** %s\n\n", idList(r.Summary.CompletionPoints))

	if len(r.Routes) > 0 {
		sb.WriteString("## Routing Table\n\n")
		sb.WriteString("| From | Label | To | Loop |\n")
		sb.WriteString("| --- | --- | --- | --- |\n")
		for _, rt := range r.Routes {
			loop := ""
			if rt.IsLoop {
				loop = "yes"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", rt.From, rt.Label, rt.To, loop)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Findings\n\n")
	if len(r.Findings) == 0 {
		sb.WriteString("No findings.\n")
		return sb.String()
	}
	for _, f := range r.Findings {
		fmt.Fprintf(&sb, "- %s\n", f.String())
	}
	return sb.String()
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
