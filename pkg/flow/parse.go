package flow

// Option configures a single Parse call.
type Option func(*parseConfig)

type parseConfig struct {
	strict bool
}

// WithStrict records advisory findings for duplicate declarations and ignored
// lines. The graph itself comes out identical to a lenient parse; only the
// advisories surfaced through the validator change.
func WithStrict() Option {
	return func(c *parseConfig) {
		c.strict = true
	}
}

// Parse compiles flowchart source text into an immutable Graph.
//
// Parsing is lenient: unmatched lines are skipped and duplicate declarations
// overwritten, never rejected. The error return is reserved for callers that
// wrap source loading (ErrSourceUnavailable); in-memory text always parses.
func Parse(source string, opts ...Option) (*Graph, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return build(Scan(source), cfg.strict), nil
}
