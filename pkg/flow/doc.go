/*
Package flow contains the core data model and compiler for espalier workflow
graphs: a lexer and builder that turn flowchart source text into an immutable
Graph of agents and labeled routes.

The package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles. Reading source files,
caching exports and serving queries over the network are adapter concerns.

# Key Entities

  - Agent: a named vertex in the workflow, declared via a node-definition line.
  - Route: a directed, labeled transition between two agents.
  - LoopPair: two agents joined by a bidirectional declaration, synthesized
    into two directed routes.
  - Graph: the immutable aggregate (agent table, routing table, loop pairs,
    entry and completion points). Built once per source; safe for concurrent
    read-only use.
  - Finding: a single advisory issue, produced during strict parsing or by the
    validator.

# Grammar

A restricted flowchart dialect, scanned line by line:

	ORIGIN["intake<br/>Origin"]
	ORIGIN --> |"approved"| BOSS
	BOSS <--> |"review"| AUDIT
	ORIGIN --> ARCHIVE

Blank lines and lines starting with %% are skipped. Lines matching no rule are
ignored, never rejected. Identifiers are case-insensitive and normalized to
lowercase.
*/
package flow
