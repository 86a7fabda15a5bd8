/*
Package espalier is a flow-graph compiler and router for agent workflows. It
parses a restricted flowchart dialect into an immutable directed graph of
named agents and labeled routes, validates the graph's structural integrity,
and answers routing queries against it.

# Concept

Espalier treats an orchestration plan as text: a flowchart describing which
agent hands off to which, under what condition, and where work may loop back.
The compiler turns that text into a graph value; the router answers questions
about it (next agents, shortest path, loop partners, summaries). Nothing is
executed here. The engine that actually invokes agents, the dashboards that
draw graphs and the processes that persist results all live outside and
consume the query surface.

# Key Features

  - Deterministic Compilation: the same source always yields a structurally
    identical graph, with routing order preserved from the source.
  - Lenient Grammar: unmatched lines are skipped and duplicate declarations
    overwritten, never rejected; an optional strict mode surfaces both as
    advisory findings.
  - Total Queries: unknown identifiers yield empty results or false, never an
    error, so orchestration code can probe speculatively.
  - Immutable Graphs: a compiled graph never changes, making concurrent
    read-only queries safe without locks.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/espalier"
	)

	func main() {
		eng, err := espalier.New("./flows/escalation.mmd")
		if err != nil {
			log.Fatal(err)
		}

		// Where can the origin agent hand off to?
		for _, next := range eng.NextAgents("origin") {
			fmt.Printf("%s (%s)\n", next.Name, next.Label)
		}

		// Anything structurally wrong with the workflow?
		for _, finding := range eng.Validate() {
			fmt.Println(finding)
		}
	}
*/
package espalier
