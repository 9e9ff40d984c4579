package xpquery

import "fmt"

// registerQName wires the ":" QName constructor and the "{uri}" namespace-
// literal extension syntax onto r. Grounded on spec.md §4.E directly — the
// teacher's recursive-descent parser has no equivalent since it never
// resolves QName prefixes at parse time; the shape here follows
// elementpath/xpath1_parser.py's ':' method (XPST0081 on unknown prefix).
func registerQName(r *Registry, bp int) error {
	if _, err := r.Register(":", WithLBP(bp), WithLed(qnameLed)); err != nil {
		return err
	}
	if _, err := r.Register("{", WithPattern(`\{`), WithNud(braceNamespaceNud)); err != nil {
		return err
	}
	_, err := r.Register("}", WithPattern(`\}`))
	return err
}

// qnameLed combines a "prefix" name token and a "local" name (or "*")
// token into one composite (name) token whose Value is "{uri}local",
// with uri the prefix's binding in the parser's namespace map; the prefix
// itself is not kept on the token. It raises XPST0081 if prefix is not
// bound, and XPST0003 if whitespace surrounds the ":".
func qnameLed(p *Parser, t *Token, left *Token) (*Token, error) {
	prefix, ok := left.Value.(string)
	if !ok || !left.Is(LabelSymbol) {
		return nil, errorf(left, XPST0003, "invalid QName prefix %v", left.Value)
	}
	if p.isSpaced(left.Span[1], t.Span[0]) || p.isSpaced(t.Span[1], p.lookahead.Span[0]) {
		return nil, errorf(t, XPST0003, "whitespace is not allowed inside a QName")
	}
	uri, bound := p.Namespaces[prefix]
	if !bound {
		if prefix == "xml" {
			uri = "http://www.w3.org/XML/1998/namespace"
		} else {
			return nil, errorf(t, XPST0081, "unresolvable namespace prefix %q", prefix)
		}
	}
	right, err := p.expression(90)
	if err != nil {
		return nil, err
	}
	local, ok := right.Value.(string)
	if !ok {
		return nil, errorf(right, XPST0003, "invalid QName local part")
	}
	nameKind, _ := p.registry.Kind("(name)")
	composite := &Token{
		Kind:   nameKind,
		Value:  "{" + uri + "}" + local,
		Span:   Span{left.Span[0], right.Span[1]},
		parser: p,
	}
	return composite, nil
}

// braceNamespaceNud parses the non-strict-mode "{uri}name" extension: an
// explicit namespace URI literal followed by a local name, producing the
// same composite (name)-kind token qnameLed does, with the URI carried as
// "{uri}local" per spec.md's alphabet (the node test matcher in
// xpath_path.go splits it back apart).
func braceNamespaceNud(p *Parser, t *Token) (*Token, error) {
	if p.Strict {
		return nil, errorf(t, XPST0003, "namespace URI literal is not allowed in strict mode")
	}
	uri, err := p.advanceUntil("}")
	if err != nil {
		return nil, err
	}
	if err := p.advance("}"); err != nil {
		return nil, err
	}
	if p.lookahead.Symbol() != "(name)" && p.lookahead.Symbol() != "*" {
		return nil, p.unexpected(p.lookahead, []string{"(name)", "*"})
	}
	nameTok := p.lookahead
	if err := p.advance(); err != nil {
		return nil, err
	}
	local := fmt.Sprintf("%v", nameTok.Value)
	nameKind, _ := p.registry.Kind("(name)")
	return &Token{
		Kind:   nameKind,
		Value:  "{" + uri + "}" + local,
		Span:   Span{t.Span[0], nameTok.Span[1]},
		parser: p,
	}, nil
}

// splitQName separates a node-test value of the form "prefix:local" or
// "{uri}local" or a bare "local"/"*" into (namespaceURI-or-prefix, local,
// isURIForm).
func splitQName(value string) (ns, local string, isURI bool) {
	if len(value) > 0 && value[0] == '{' {
		if end := indexByte(value, '}'); end >= 0 {
			return value[1:end], value[end+1:], true
		}
	}
	if i := indexByte(value, ':'); i >= 0 {
		return value[:i], value[i+1:], false
	}
	return "", value, false
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
