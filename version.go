package espalier

import _ "embed"

// Version is the library release, reported by the CLI and the MCP server.
//
//go:embed version.txt
var Version string
