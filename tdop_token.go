package xpquery

import "fmt"

// Span is a half-open [start, end) byte range into the original source
// string, used for line/column diagnostics and for Token.Source().
type Span [2]int

// Token is a node in the parse tree: a reference to its kind (symbol,
// label, denotation/semantic behaviors), an ordered list of child
// operands, a value, and a source span.
//
// Arity (len(Children)) is whatever the token's nud/led attached; it is
// never mutated after parsing completes.
type Token struct {
	Kind     *SymbolKind
	Value    any
	Children []*Token
	Span     Span

	parser *Parser // reached only for the namespace map and symbol table
}

// Symbol returns the token's kind symbol (e.g. "+", "(name)", "child").
func (t *Token) Symbol() string {
	if t.Kind == nil {
		return ""
	}
	return t.Kind.Symbol
}

// Arity returns the number of children the token was built with.
func (t *Token) Arity() int { return len(t.Children) }

// Label returns the token kind's label set, or nil if the token has no
// kind (should not happen for a well-formed tree).
func (t *Token) Label() LabelSet {
	if t.Kind == nil {
		return nil
	}
	return t.Kind.Label
}

// Is reports whether the token's label set contains l.
func (t *Token) Is(l Label) bool {
	return t.Label().Is(l)
}

// Parser returns the parser that produced this token, to reach the
// namespace map or symbol table during evaluation.
func (t *Token) Parser() *Parser { return t.parser }

// Evaluate dispatches to the token kind's Eval behavior, or returns an
// empty string per spec.md's "default evaluate returns nothing" rule.
func (t *Token) Evaluate(ctx *Context) (Value, error) {
	if t.Kind == nil || t.Kind.Eval == nil {
		return StringValue(""), nil
	}
	return t.Kind.Eval(t, ctx)
}

// Select dispatches to the token kind's Select behavior, or an empty
// sequence per spec.md's "default select yields nothing" rule.
func (t *Token) Select(ctx *Context) func(yield func(Node) bool) {
	if t.Kind == nil || t.Kind.Select == nil {
		return func(yield func(Node) bool) {}
	}
	return t.Kind.Select(t, ctx)
}

// Iter walks the token tree in the order spec.md §4.D defines for locating
// named sub-expressions: arity 0 yields self; arity 1 yields self then
// recurses into the sole child; arity >=2 recurses the first child,
// yields self, then recurses the remaining children. Only tokens whose
// symbol is in symbols (or all tokens, if symbols is empty) are yielded.
func (t *Token) Iter(symbols ...string) func(yield func(*Token) bool) {
	match := func(tok *Token) bool {
		if len(symbols) == 0 {
			return true
		}
		for _, s := range symbols {
			if tok.Symbol() == s {
				return true
			}
		}
		return false
	}
	var walk func(tok *Token, yield func(*Token) bool) bool
	walk = func(tok *Token, yield func(*Token) bool) bool {
		switch tok.Arity() {
		case 0:
			if match(tok) {
				return yield(tok)
			}
			return true
		case 1:
			if match(tok) {
				if !yield(tok) {
					return false
				}
			}
			return walk(tok.Children[0], yield)
		default:
			if !walk(tok.Children[0], yield) {
				return false
			}
			if match(tok) {
				if !yield(tok) {
					return false
				}
			}
			for _, child := range tok.Children[1:] {
				if !walk(child, yield) {
					return false
				}
			}
			return true
		}
	}
	return func(yield func(*Token) bool) { walk(t, yield) }
}

// Tree renders an S-expression-like diagnostic representation of the
// token, with special formats for the reserved literal/name kinds.
func (t *Token) Tree() string {
	switch t.Symbol() {
	case "(name)", "(string)":
		return fmt.Sprintf("(%v)", t.Value)
	case "(float)", "(decimal)", "(integer)":
		return fmt.Sprintf("%v", t.Value)
	}
	if t.Arity() == 0 {
		return t.Symbol()
	}
	parts := make([]string, 0, t.Arity()+1)
	parts = append(parts, t.Symbol())
	for _, c := range t.Children {
		parts = append(parts, c.Tree())
	}
	s := "("
	for i, p := range parts {
		if i > 0 {
			s += " "
		}
		s += p
	}
	return s + ")"
}

// Source reconstructs the slice of the original source this token and all
// its descendants span, for diagnostics.
func (t *Token) Source(original string) string {
	start, end := t.Span[0], t.Span[1]
	var widen func(tok *Token)
	widen = func(tok *Token) {
		for _, c := range tok.Children {
			cs := c.Span
			if cs[0] < start {
				start = cs[0]
			}
			if cs[1] > end {
				end = cs[1]
			}
			widen(c)
		}
	}
	widen(t)
	if start < 0 || end > len(original) || start > end {
		return ""
	}
	return original[start:end]
}
