// Package router is the read-only query surface over a flow.Graph: next-agent
// resolution, transition checks, loop-partner tests, breadth-first path
// finding and workflow summaries.
//
// Every query is a total function: unknown identifiers yield empty results or
// false, never an error. That keeps the router safe to call speculatively
// from orchestration code without pre-checking agent existence.
package router

import (
	"strings"

	"github.com/aretw0/espalier/pkg/flow"
)

// NextAgent is one outgoing option from an agent, carrying the target's
// display name alongside the route data.
type NextAgent struct {
	Target string `json:"target"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	IsLoop bool   `json:"is_loop,omitempty"`
}

// Summary aggregates graph-wide counts, purely derived from the graph.
type Summary struct {
	Agents           int            `json:"agents"`
	Routes           int            `json:"routes"`
	LoopPairs        int            `json:"loop_pairs"`
	EntryPoints      []string       `json:"entry_points"`
	CompletionPoints []string       `json:"completion_points"`
	RouteCounts      map[string]int `json:"route_counts"`
}

// Router answers queries against one immutable graph. It holds no other
// state, so a single Router may serve concurrent callers.
type Router struct {
	graph   *flow.Graph
	observe func(query string)
}

// Option configures a Router.
type Option func(*Router)

// WithObserver registers a callback invoked once per query with the query
// name. Adapters use it to feed metrics; it never alters results.
func WithObserver(fn func(query string)) Option {
	return func(r *Router) {
		r.observe = fn
	}
}

// New builds a Router over a graph.
func New(g *flow.Graph, opts ...Option) *Router {
	r := &Router{graph: g}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Graph returns the graph the router was built over.
func (r *Router) Graph() *flow.Graph {
	return r.graph
}

// NextAgents returns the outgoing options for an agent in routing order.
// Unknown or terminal agents yield an empty slice.
func (r *Router) NextAgents(current string) []NextAgent {
	r.observed("next_agents")
	routes := r.graph.Routes(current)
	out := make([]NextAgent, 0, len(routes))
	for _, rt := range routes {
		out = append(out, NextAgent{
			Target: rt.To,
			Name:   r.displayName(rt.To),
			Label:  rt.Label,
			IsLoop: rt.IsLoop,
		})
	}
	return out
}

// CanTransition reports whether a direct route from from to to exists.
func (r *Router) CanTransition(from, to string) bool {
	r.observed("can_transition")
	to = flow.NormalizeID(to)
	for _, rt := range r.graph.Routes(from) {
		if rt.To == to {
			return true
		}
	}
	return false
}

// IsLoopPair reports whether a and b share a bidirectional declaration.
// Order-independent and case-insensitive.
func (r *Router) IsLoopPair(a, b string) bool {
	r.observed("is_loop_pair")
	return r.graph.HasLoopPair(a, b)
}

// FindPath returns the first-found shortest path between two agents, both
// endpoints included. The walk runs purely over the routing table, so agents
// an edge-only source never declared still participate. Identical endpoints
// yield the single-element path when the graph mentions the agent at all.
// Unknown or unreachable targets yield an empty slice. Ties in path length
// break by route declaration order, first enqueued first explored.
func (r *Router) FindPath(start, end string) []string {
	r.observed("find_path")
	start, end = flow.NormalizeID(start), flow.NormalizeID(end)
	if start == end {
		if r.graph.Mentions(start) {
			return []string{start}
		}
		return nil
	}

	// The visited set guarantees termination under loop pairs and cycles.
	queue := []string{start}
	visited := map[string]bool{start: true}
	parent := make(map[string]string)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, rt := range r.graph.Routes(current) {
			if visited[rt.To] {
				continue
			}
			visited[rt.To] = true
			parent[rt.To] = current
			if rt.To == end {
				return assemblePath(parent, start, end)
			}
			queue = append(queue, rt.To)
		}
	}
	return nil
}

// Summary derives the aggregate counts for the graph. Route counts cover
// every declared agent, including terminals with zero routes, plus any
// undeclared source that owns routes.
func (r *Router) Summary() Summary {
	r.observed("summary")
	g := r.graph

	ids := g.AgentIDs()
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}
	for _, rt := range g.AllRoutes() {
		counts[rt.From]++
	}

	return Summary{
		Agents:           len(ids),
		Routes:           g.RouteCount(),
		LoopPairs:        len(g.LoopPairs()),
		EntryPoints:      g.EntryPoints(),
		CompletionPoints: g.CompletionPoints(),
		RouteCounts:      counts,
	}
}

func (r *Router) displayName(id string) string {
	if a, ok := r.graph.Agent(id); ok {
		return a.Name
	}
	return strings.ToUpper(id)
}

func (r *Router) observed(query string) {
	if r.observe != nil {
		r.observe(query)
	}
}

func assemblePath(parent map[string]string, start, end string) []string {
	path := []string{end}
	for current := end; current != start; {
		current = parent[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
