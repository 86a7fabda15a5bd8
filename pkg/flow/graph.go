package flow

// Graph is the immutable workflow aggregate: the agent table, the routing
// table, the loop pairs and the derived entry and completion points.
//
// A Graph is built once from a single source text and never mutated, so it is
// safe to share for concurrent read-only queries without synchronization.
// Re-parsing changed source always yields a brand-new Graph; publish the new
// instance with an atomic swap and discard the old one.
type Graph struct {
	agents map[string]Agent
	// order keeps agent IDs by first declaration, so classification and
	// listing stay deterministic even when a later declaration overwrites
	// an earlier one.
	order []string

	routes map[string][]Route
	// routeOrder keeps route sources by first appearance.
	routeOrder []string

	loops   []LoopPair
	loopSet map[string]struct{}

	// targets holds every route destination, including the identifiers no
	// node line ever declared.
	targets map[string]struct{}

	entry      []string
	completion []string

	// advisories are strict-parse findings (duplicate declarations,
	// ignored lines), surfaced through the validator.
	advisories []Finding
}

// Agents returns every declared agent in declaration order.
func (g *Graph) Agents() []Agent {
	out := make([]Agent, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.agents[id])
	}
	return out
}

// AgentIDs returns the declared identifiers in declaration order.
func (g *Graph) AgentIDs() []string {
	return copyStrings(g.order)
}

// Agent looks up a declared agent. Lookup is case-insensitive.
func (g *Graph) Agent(id string) (Agent, bool) {
	a, ok := g.agents[NormalizeID(id)]
	return a, ok
}

// HasAgent reports whether the identifier was declared.
func (g *Graph) HasAgent(id string) bool {
	_, ok := g.agents[NormalizeID(id)]
	return ok
}

// Mentions reports whether the identifier appears anywhere in the graph:
// declared as a node, or sitting at either end of a route. Edge-only sources
// never declare their agents, yet those agents still route.
func (g *Graph) Mentions(id string) bool {
	id = NormalizeID(id)
	if _, ok := g.agents[id]; ok {
		return true
	}
	if _, ok := g.routes[id]; ok {
		return true
	}
	_, ok := g.targets[id]
	return ok
}

// Routes returns the outgoing routes declared for an agent, in source order.
// Unknown identifiers yield an empty slice.
func (g *Graph) Routes(from string) []Route {
	rs := g.routes[NormalizeID(from)]
	if len(rs) == 0 {
		return nil
	}
	out := make([]Route, len(rs))
	copy(out, rs)
	return out
}

// AllRoutes returns every route in the table, grouped by source in first
// appearance order. Mirrored loop routes are included.
func (g *Graph) AllRoutes() []Route {
	var out []Route
	for _, from := range g.routeOrder {
		out = append(out, g.routes[from]...)
	}
	return out
}

// RouteCount returns the total number of routes, counting both directions of
// a loop pair.
func (g *Graph) RouteCount() int {
	n := 0
	for _, rs := range g.routes {
		n += len(rs)
	}
	return n
}

// LoopPairs returns the bidirectional pairs in declaration order.
func (g *Graph) LoopPairs() []LoopPair {
	out := make([]LoopPair, len(g.loops))
	copy(out, g.loops)
	return out
}

// HasLoopPair reports whether a and b were joined by a bidirectional
// declaration, in either order.
func (g *Graph) HasLoopPair(a, b string) bool {
	_, ok := g.loopSet[pairKey(NormalizeID(a), NormalizeID(b))]
	return ok
}

// EntryPoints returns agents owning at least one outgoing route that are
// never the target of any edge, in declaration order.
func (g *Graph) EntryPoints() []string {
	return copyStrings(g.entry)
}

// CompletionPoints returns agents with zero outgoing routes, in declaration
// order. An agent with no edges at all is a completion point, never an entry
// point.
func (g *Graph) CompletionPoints() []string {
	return copyStrings(g.completion)
}

// Advisories returns the strict-parse findings recorded while building the
// graph. Lenient parsing records none.
func (g *Graph) Advisories() []Finding {
	out := make([]Finding, len(g.advisories))
	copy(out, g.advisories)
	return out
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
