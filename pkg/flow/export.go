package flow

// Export is the plain serialized form of a Graph, for caching and inspection
// by external tooling. It is a convenience only: every query path must work
// from a freshly parsed Graph without ever reading a cached export.
type Export struct {
	Agents           []Agent    `json:"agents"`
	Routes           []Route    `json:"routes"`
	LoopPairs        []LoopPair `json:"loop_pairs"`
	EntryPoints      []string   `json:"entry_points"`
	CompletionPoints []string   `json:"completion_points"`

	// Sealed carries an opaque encrypted envelope when an encrypting cache
	// middleware is in use. Plain exports leave it empty.
	Sealed string `json:"sealed,omitempty"`
}

// Export serializes the graph. Slices are never nil so the JSON shape stays
// stable for consumers.
func (g *Graph) Export() *Export {
	routes := g.AllRoutes()
	if routes == nil {
		routes = []Route{}
	}
	return &Export{
		Agents:           g.Agents(),
		Routes:           routes,
		LoopPairs:        g.LoopPairs(),
		EntryPoints:      g.EntryPoints(),
		CompletionPoints: g.CompletionPoints(),
	}
}
