package flow

import "strings"

const (
	commentMarker   = "%%"
	lineBreakMarker = "<br/>"

	arrowOneWay = "-->"
	arrowLoop   = "<-->"
)

// Scan tokenizes source text line by line. Blank lines and comment lines
// yield nothing; every other line produces exactly one token. Matching is
// anchored to the whole line and tried in fixed priority order: node
// definition, labeled one-way edge, labeled bidirectional edge, plain
// one-way edge. A line consumed by an earlier form is never re-matched.
func Scan(source string) []Token {
	var tokens []Token
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		tok, ok := scanLine(line)
		if !ok {
			tok = Token{Kind: TokenIgnored}
		}
		tok.Line = i + 1
		tok.Text = line
		tokens = append(tokens, tok)
	}
	return tokens
}

func scanLine(line string) (Token, bool) {
	if tok, ok := scanNode(line); ok {
		return tok, true
	}
	if tok, ok := scanLabeledEdge(line, arrowOneWay, false); ok {
		return tok, true
	}
	if tok, ok := scanLabeledEdge(line, arrowLoop, true); ok {
		return tok, true
	}
	return scanPlainEdge(line)
}

// scanNode matches `IDENT["LABEL"]`. A label containing the line-break
// marker is split once: the first segment is the position, the remainder the
// display name. Without the marker the whole label is the position and the
// name defaults to the uppercased identifier.
func scanNode(line string) (Token, bool) {
	id, rest := scanIdent(line)
	if id == "" || len(rest) < 4 ||
		!strings.HasPrefix(rest, `["`) || !strings.HasSuffix(rest, `"]`) {
		return Token{}, false
	}
	label := rest[2 : len(rest)-2]

	tok := Token{Kind: TokenNode, ID: NormalizeID(id)}
	if position, name, found := strings.Cut(label, lineBreakMarker); found {
		tok.Position = position
		tok.Name = name
	} else {
		tok.Position = label
		tok.Name = strings.ToUpper(id)
	}
	return tok, true
}

// scanLabeledEdge matches `A <arrow> |"LABEL"| B`. The label is free text up
// to the closing quote-pipe, so it may contain arrow characters.
func scanLabeledEdge(line, arrow string, loop bool) (Token, bool) {
	from, rest := scanIdent(line)
	if from == "" {
		return Token{}, false
	}
	rest = skipSpaces(rest)
	if !strings.HasPrefix(rest, arrow) {
		return Token{}, false
	}
	rest = skipSpaces(rest[len(arrow):])
	if !strings.HasPrefix(rest, `|"`) {
		return Token{}, false
	}
	rest = rest[2:]
	end := strings.Index(rest, `"|`)
	if end < 0 {
		return Token{}, false
	}
	label := rest[:end]
	to, rest := scanIdent(skipSpaces(rest[end+2:]))
	if to == "" || rest != "" {
		return Token{}, false
	}
	return Token{
		Kind:   TokenEdge,
		From:   NormalizeID(from),
		To:     NormalizeID(to),
		Label:  label,
		IsLoop: loop,
	}, true
}

// scanPlainEdge matches `A --> B` and auto-generates the "a_to_b" label.
func scanPlainEdge(line string) (Token, bool) {
	from, rest := scanIdent(line)
	if from == "" {
		return Token{}, false
	}
	rest = skipSpaces(rest)
	if !strings.HasPrefix(rest, arrowOneWay) {
		return Token{}, false
	}
	to, rest := scanIdent(skipSpaces(rest[len(arrowOneWay):]))
	if to == "" || rest != "" {
		return Token{}, false
	}
	tok := Token{
		Kind: TokenEdge,
		From: NormalizeID(from),
		To:   NormalizeID(to),
	}
	tok.Label = tok.From + "_to_" + tok.To
	return tok, true
}

func scanIdent(s string) (ident, rest string) {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

func skipSpaces(s string) string {
	return strings.TrimLeft(s, " \t")
}
