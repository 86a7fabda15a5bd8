package flow

// Route defines a directed transition from one agent to another.
type Route struct {
	From string `json:"from"`
	To   string `json:"to"`

	// Label is the condition under which the route is taken. Unlabeled
	// declarations get an auto-generated "from_to_to" label.
	Label string `json:"label"`

	// IsLoop marks routes synthesized from a bidirectional declaration.
	IsLoop bool `json:"is_loop,omitempty"`
}

// LoopPair records a bidirectional declaration between two agents.
// A keeps the declared "from" side so the pair can be rendered back in its
// original direction; membership tests are order-independent.
type LoopPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Matches reports whether the pair joins a and b, in either order.
func (p LoopPair) Matches(a, b string) bool {
	a, b = NormalizeID(a), NormalizeID(b)
	return (p.A == a && p.B == b) || (p.A == b && p.B == a)
}

// pairKey canonicalizes the unordered pair for set membership.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
