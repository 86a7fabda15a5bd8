package flow

import "strings"

// Agent represents a named vertex in the workflow graph.
// Agents are discovered solely from node-definition lines; an identifier that
// only ever appears as an edge endpoint is not a first-class agent.
type Agent struct {
	// ID is the declaration identifier, normalized to lowercase.
	ID string `json:"id"`

	// Name is the display label shown to humans. When the declaration label
	// carries no line-break marker it defaults to the uppercased identifier.
	Name string `json:"name"`

	// Position is the sub-label in front of the line-break marker, or the
	// whole label when the marker is absent.
	Position string `json:"position,omitempty"`
}

// NormalizeID lowercases and trims an identifier so graph lookups behave the
// same regardless of source casing.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
