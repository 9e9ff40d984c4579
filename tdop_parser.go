package xpquery

import (
	"strconv"
	"strings"
)

// Parser is TDOP session state: the compiled tokenizer/registry it parses
// against, the cursor over the current source, and a few dialect session
// fields (namespace map, strict flag, version) that spec.md's XPath
// dialect keeps on the parser instance.
//
// A Parser is built once per grammar; Parse may be called repeatedly, but
// not concurrently (spec.md §5: parser instances are not safe for
// concurrent parse calls).
type Parser struct {
	registry *Registry
	tok      *tokenizer

	source string
	rest   string
	pos    int // absolute offset where rest begins

	current   *Token // last token consumed ("token" in spec.md's pseudocode)
	lookahead *Token // one-token lookahead ("next_token")

	// Dialect session state (spec.md §3's "For XPath: a namespace map...").
	Namespaces map[string]string
	Strict     bool
	Version    string
}

// NewParser builds a Parser bound to registry, compiling its tokenizer if
// this is the first parser built from it (Build is idempotent).
func NewParser(registry *Registry) (*Parser, error) {
	tok, err := registry.Build()
	if err != nil {
		return nil, err
	}
	return &Parser{registry: registry, tok: tok}, nil
}

// Registry returns the parser's symbol registry, for a token's nud/led to
// look up other kinds or resolve the namespace map.
func (p *Parser) Registry() *Registry { return p.registry }

// Current returns the most recently consumed token.
func (p *Parser) Current() *Token { return p.current }

// Lookahead returns the one-token lookahead that has not yet been consumed.
func (p *Parser) Lookahead() *Token { return p.lookahead }

// Parse tokenizes and parses source, returning the root of the token
// tree. Cursor state is always cleared on return, including on error.
func (p *Parser) Parse(source string) (_ *Token, err error) {
	if source == "" {
		return nil, newParseError(CategoryEmptySource, "source is empty")
	}
	p.source = source
	p.rest = source
	p.pos = 0
	p.current = nil
	p.lookahead = nil
	defer func() {
		p.source, p.rest = "", ""
		p.pos = 0
		p.current, p.lookahead = nil, nil
	}()

	if err = p.advance(); err != nil {
		return nil, err
	}
	root, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if p.lookahead.Symbol() != "(end)" {
		return nil, p.unexpected(p.lookahead, nil)
	}
	return root, nil
}

// expression implements the canonical Pratt loop (spec.md §4.C):
//
//	t = next_token; advance; left = t.nud()
//	while rbp < next_token.lbp: t = next_token; advance; left = t.led(left)
//	return left
func (p *Parser) expression(rbp int) (*Token, error) {
	t := p.lookahead
	if err := p.advance(); err != nil {
		return nil, err
	}
	if t.Kind == nil || t.Kind.Nud == nil {
		return nil, p.errorAt(t, CategoryUnexpectedSymbol, "unexpected "+describeToken(t))
	}
	left, err := t.Kind.Nud(p, t)
	if err != nil {
		return nil, err
	}
	for p.lookahead.Kind != nil && rbp < p.lookahead.Kind.LBP {
		t = p.lookahead
		if err := p.advance(); err != nil {
			return nil, err
		}
		if t.Kind.Led == nil {
			return nil, p.errorAt(t, CategoryUnexpectedSymbol, "unexpected infix use of "+describeToken(t))
		}
		left, err = t.Kind.Led(p, t, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func describeToken(t *Token) string {
	switch t.Symbol() {
	case "(name)":
		return "name '" + fstr(t.Value) + "'"
	case "(string)":
		return "literal"
	case "(end)":
		return "end of source"
	default:
		return "'" + t.Symbol() + "'"
	}
}

func fstr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// advance requires (if expected is non-empty) that the lookahead's symbol
// is one of expected, then shifts lookahead into current and scans a new
// lookahead from the remaining source.
func (p *Parser) advance(expected ...string) error {
	if p.lookahead != nil {
		if p.lookahead.Symbol() == "(end)" {
			return p.errorAt(p.lookahead, CategoryUnexpectedEnd, "unexpected end of source")
		}
		if len(expected) > 0 && !containsSymbol(expected, p.lookahead.Symbol()) {
			return p.unexpected(p.lookahead, expected)
		}
	}
	p.current = p.lookahead
	tok, err := p.scan()
	if err != nil {
		return err
	}
	p.lookahead = tok
	return nil
}

// scan reads exactly one token from the remaining source, skipping any
// whitespace run first, and classifying the match by which of the
// tokenizer's five alternatives fired.
func (p *Parser) scan() (*Token, error) {
	for {
		if len(p.rest) == 0 {
			return p.special("(end)", "", Span{p.pos, p.pos}), nil
		}
		idx := p.tok.re.FindStringSubmatchIndex(p.rest)
		if idx == nil {
			return nil, newParseError(CategoryInvalidSourceType, "no token could be matched at the current position")
		}
		group, s, e := classifyMatch(idx)
		text := p.rest[s:e]
		start, end := p.pos+s, p.pos+e
		consumed := idx[1]
		p.pos += consumed
		p.rest = p.rest[consumed:]

		switch group {
		case groupWhitespace:
			continue
		case groupSymbol:
			kind, ok := p.registry.Kind(text)
			if ok {
				return &Token{Kind: kind, Value: text, Span: Span{start, end}, parser: p}, nil
			}
			if identifierShapeRE.MatchString(text) {
				nk, _ := p.registry.Kind("(name)")
				return &Token{Kind: nk, Value: text, Span: Span{start, end}, parser: p}, nil
			}
			uk, _ := p.registry.Kind("(unknown)")
			tok := &Token{Kind: uk, Value: text, Span: Span{start, end}, parser: p}
			return tok, newParseError(CategoryUnknownSymbol, "unknown symbol "+text).at(p.position(start))
		case groupName:
			nk, _ := p.registry.Kind("(name)")
			return &Token{Kind: nk, Value: text, Span: Span{start, end}, parser: p}, nil
		case groupUnknown:
			uk, _ := p.registry.Kind("(unknown)")
			tok := &Token{Kind: uk, Value: text, Span: Span{start, end}, parser: p}
			return tok, newParseError(CategoryUnknownSymbol, "unexpected character "+text).at(p.position(start))
		case groupLiteral:
			return p.classifyLiteral(text, Span{start, end})
		default:
			return nil, newParseError(CategoryInvalidSourceType, "incompatible tokenizer: matched empty alternative")
		}
	}
}

func (p *Parser) classifyLiteral(text string, span Span) (*Token, error) {
	if text[0] == '\'' || text[0] == '"' {
		value := unescapeStringLiteral(text)
		sk, _ := p.registry.Kind("(string)")
		return &Token{Kind: sk, Value: value, Span: span, parser: p}, nil
	}
	if strings.ContainsAny(text, "eE") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return p.invalidLiteral(text, span, err)
		}
		fk, _ := p.registry.Kind("(float)")
		return &Token{Kind: fk, Value: v, Span: span, parser: p}, nil
	}
	if strings.Contains(text, ".") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return p.invalidLiteral(text, span, err)
		}
		dk, _ := p.registry.Kind("(decimal)")
		return &Token{Kind: dk, Value: v, Span: span, parser: p}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return p.invalidLiteral(text, span, err)
	}
	ik, _ := p.registry.Kind("(integer)")
	return &Token{Kind: ik, Value: v, Span: span, parser: p}, nil
}

func (p *Parser) invalidLiteral(text string, span Span, cause error) (*Token, error) {
	ik, _ := p.registry.Kind("(invalid)")
	tok := &Token{Kind: ik, Value: text, Span: span, parser: p}
	return tok, newParseError(CategoryInvalidLiteral, "invalid literal "+text+": "+cause.Error()).at(p.position(span[0]))
}

// unescapeStringLiteral strips the surrounding quotes and undoubles the
// quote-doubling escape (XPath 1.0's only string-literal escape).
func unescapeStringLiteral(text string) string {
	quote := text[0]
	inner := text[1 : len(text)-1]
	doubled := string(quote) + string(quote)
	return strings.ReplaceAll(inner, doubled, string(quote))
}

func (p *Parser) special(symbol, value string, span Span) *Token {
	kind, ok := p.registry.Kind(symbol)
	if !ok {
		kind = &SymbolKind{Symbol: symbol}
	}
	return &Token{Kind: kind, Value: value, Span: span, parser: p}
}

// advanceUntil is the primitive for raw chunks: it accumulates raw text,
// starting with the current lookahead's, until the lookahead matches one
// of stopSymbols, and returns the accumulated text (not including the
// stop symbol).
func (p *Parser) advanceUntil(stopSymbols ...string) (string, error) {
	if len(stopSymbols) == 0 {
		return "", newParseError(CategoryUnexpectedSymbol, "advanceUntil requires at least one stop symbol")
	}
	if p.lookahead.Symbol() == "(end)" {
		return "", p.errorAt(p.lookahead, CategoryUnexpectedEnd, "unexpected end of source")
	}
	if containsSymbol(stopSymbols, p.lookahead.Symbol()) {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString(p.source[p.lookahead.Span[0]:p.lookahead.Span[1]])
	p.current = p.lookahead
	for {
		if len(p.rest) == 0 {
			p.lookahead = p.special("(end)", "", Span{p.pos, p.pos})
			break
		}
		idx := p.tok.re.FindStringSubmatchIndex(p.rest)
		if idx == nil {
			return "", newParseError(CategoryInvalidSourceType, "no token could be matched at the current position")
		}
		group, s, e := classifyMatch(idx)
		text := p.rest[s:e]
		start, end := p.pos+s, p.pos+e
		consumed := idx[1]
		p.pos += consumed
		p.rest = p.rest[consumed:]

		if group == groupSymbol && containsSymbol(stopSymbols, text) {
			kind, _ := p.registry.Kind(text)
			p.lookahead = &Token{Kind: kind, Value: text, Span: Span{start, end}, parser: p}
			break
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func containsSymbol(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *Parser) unexpected(t *Token, expected []string) error {
	msg := "unexpected " + describeToken(t)
	if len(expected) > 0 {
		msg += ", expected one of " + strings.Join(expected, ", ")
	}
	return p.errorAt(t, CategoryUnexpectedSymbol, msg)
}

func (p *Parser) errorAt(t *Token, category ParseCategory, msg string) error {
	line, col := p.position(t.Span[0])
	return newParseError(category, msg).at(line, col)
}

// position computes the 1-based (line, column) for a byte offset into the
// source by counting preceding newlines and locating the last one.
func (p *Parser) position(offset int) (line, column int) {
	if offset > len(p.source) {
		offset = len(p.source)
	}
	prefix := p.source[:offset]
	line = strings.Count(prefix, "\n") + 1
	if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
		column = offset - idx
	} else {
		column = offset + 1
	}
	return line, column
}

// isLineStart reports whether offset is the first non-whitespace position
// on its source line.
func (p *Parser) isLineStart(offset int) bool {
	_, col := p.position(offset)
	return col == 1
}

// isSourceStart reports whether offset is the very first byte of source.
func (p *Parser) isSourceStart(offset int) bool {
	return offset == 0
}

// isSpaced reports whether there is any whitespace between byte offsets
// before and after in the source — used by the XPath grammar to forbid
// spaces inside QNames.
func (p *Parser) isSpaced(before, after int) bool {
	if before < 0 || after > len(p.source) || before >= after {
		return false
	}
	return strings.ContainsAny(p.source[before:after], " \t\r\n")
}
