package flow

import "fmt"

// build assembles a Graph from a token stream in source order. Semantic
// problems never abort the build; a usable graph always comes out and the
// validator reports whatever is wrong with it.
func build(tokens []Token, strict bool) *Graph {
	g := &Graph{
		agents:  make(map[string]Agent),
		routes:  make(map[string][]Route),
		loopSet: make(map[string]struct{}),
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenNode:
			g.declare(tok, strict)
		case TokenEdge:
			g.connect(tok)
		case TokenIgnored:
			if strict {
				g.advisories = append(g.advisories, Finding{
					Check:   CheckIgnoredLine,
					Message: fmt.Sprintf("line matches no rule, skipped: %s", tok.Text),
					Line:    tok.Line,
				})
			}
		}
	}

	g.classify()
	return g
}

// declare registers a node declaration. The last declaration for an
// identifier wins; the identifier keeps its first position in the order.
func (g *Graph) declare(tok Token, strict bool) {
	if _, dup := g.agents[tok.ID]; dup {
		if strict {
			g.advisories = append(g.advisories, Finding{
				Check:   CheckDuplicateDeclaration,
				Message: fmt.Sprintf("agent %q declared again, later declaration wins", tok.ID),
				Line:    tok.Line,
			})
		}
	} else {
		g.order = append(g.order, tok.ID)
	}
	g.agents[tok.ID] = Agent{ID: tok.ID, Name: tok.Name, Position: tok.Position}
}

// connect appends the route for an edge declaration. Bidirectional edges also
// get the mirrored route and a loop-pair entry.
func (g *Graph) connect(tok Token) {
	g.addRoute(Route{From: tok.From, To: tok.To, Label: tok.Label, IsLoop: tok.IsLoop})
	if !tok.IsLoop {
		return
	}
	g.addRoute(Route{From: tok.To, To: tok.From, Label: tok.Label, IsLoop: true})

	key := pairKey(tok.From, tok.To)
	if _, seen := g.loopSet[key]; !seen {
		g.loopSet[key] = struct{}{}
		g.loops = append(g.loops, LoopPair{A: tok.From, B: tok.To})
	}
}

func (g *Graph) addRoute(r Route) {
	if _, seen := g.routes[r.From]; !seen {
		g.routeOrder = append(g.routeOrder, r.From)
	}
	g.routes[r.From] = append(g.routes[r.From], r)
}

// classify derives entry and completion points after all edges are in.
// Two passes: collect every edge target, then walk declared agents in
// declaration order. Zero outgoing routes means completion point, even for a
// fully isolated agent; owning routes while never being targeted means entry
// point.
func (g *Graph) classify() {
	g.targets = make(map[string]struct{})
	for _, from := range g.routeOrder {
		for _, r := range g.routes[from] {
			g.targets[r.To] = struct{}{}
		}
	}

	for _, id := range g.order {
		_, targeted := g.targets[id]
		switch {
		case len(g.routes[id]) == 0:
			g.completion = append(g.completion, id)
		case !targeted:
			g.entry = append(g.entry, id)
		}
	}
}
