package flow

// TokenKind tags the variant of a scanned line.
type TokenKind int

const (
	// TokenIgnored marks a line matching no grammar rule. Kept in the
	// stream so strict parsing can report it; lenient parsing drops it.
	TokenIgnored TokenKind = iota
	// TokenNode marks a node-definition line.
	TokenNode
	// TokenEdge marks an edge-definition line.
	TokenEdge
)

func (k TokenKind) String() string {
	switch k {
	case TokenNode:
		return "node"
	case TokenEdge:
		return "edge"
	default:
		return "ignored"
	}
}

// Token is one scanned line. Kind selects which fields are meaningful:
// node tokens carry ID, Name and Position; edge tokens carry From, To,
// Label and IsLoop; ignored tokens carry only the shared fields.
type Token struct {
	Kind TokenKind
	// Line is the 1-based position in the source.
	Line int
	// Text is the trimmed source line.
	Text string

	ID       string
	Name     string
	Position string

	From   string
	To     string
	Label  string
	IsLoop bool
}
