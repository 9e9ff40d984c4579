package xpquery

// axisAlphabet lists every XPath 1.0 axis name, used both to build the
// grammar's declared alphabet and (via registerAxes) to register each
// axis's symbol kind.
var axisAlphabet = []string{
	"child", "descendant", "parent", "ancestor",
	"following-sibling", "preceding-sibling", "following", "preceding",
	"attribute", "namespace", "self", "descendant-or-self", "ancestor-or-self",
}

var functionAlphabet = []string{
	"last", "position", "count", "id", "local-name", "namespace-uri", "name",
	"string", "concat", "starts-with", "contains", "substring-before",
	"substring-after", "substring", "string-length", "normalize-space", "translate",
	"boolean", "not", "true", "false", "lang",
	"number", "sum", "floor", "ceiling", "round",
	"text", "comment", "processing-instruction", "node",
}

var operatorAlphabet = []string{
	"+", "-", "*", "div", "mod",
	"=", "!=", "<", "<=", ">", ">=",
	"and", "or",
}

var pathAlphabet = []string{
	"/", "//", "[", "]", "|", "@", ".", "..", "(", ")", "{", "}", ",", "::", ":", "*", "$",
}

// xpathAlphabet is the full closed set of symbols the XPath 1.0 dialect
// may ever register (spec.md §4.E): axes, functions (including the four
// kind tests), operators, and path/predicate/union punctuation.
func xpathAlphabet() []string {
	all := make([]string, 0, len(axisAlphabet)+len(functionAlphabet)+len(operatorAlphabet)+len(pathAlphabet))
	all = append(all, axisAlphabet...)
	all = append(all, functionAlphabet...)
	all = append(all, operatorAlphabet...)
	all = append(all, pathAlphabet...)
	return all
}

// NewXPathParser builds a Parser for the XPath 1.0 dialect: a fresh
// Registry with the closed alphabet above, every axis/node-test/path/
// operator/function symbol registered, and namespaces/strict/version
// session fields applied. Grounded on elementpath/xpath1_parser.py's
// XPath1Parser.SYMBOLS table and the teacher's isAxis/keyword-switch in
// xpath_parser.go, reassembled as a declarative registry build.
func NewXPathParser(namespaces map[string]string, strict bool) (*Parser, error) {
	r := NewRegistry(xpathAlphabet())

	if _, err := r.Register("::"); err != nil {
		return nil, err
	}
	if err := registerAxes(r, bpStep); err != nil {
		return nil, err
	}
	if err := registerNodeTests(r); err != nil {
		return nil, err
	}
	if err := registerPath(r); err != nil {
		return nil, err
	}
	if err := registerOperators(r); err != nil {
		return nil, err
	}
	if err := registerFunctions(r); err != nil {
		return nil, err
	}
	if err := registerQName(r, bpStep); err != nil {
		return nil, err
	}
	if _, err := r.Register("$", WithPattern(`\$`), WithNud(variableNud)); err != nil {
		return nil, err
	}
	if err := registerLiterals(r); err != nil {
		return nil, err
	}

	p, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	if namespaces == nil {
		namespaces = map[string]string{}
	}
	p.Namespaces = namespaces
	p.Strict = strict
	p.Version = "1.0"
	return p, nil
}

// registerLiterals attaches Eval behavior to the four reserved literal
// kinds the tokenizer materializes directly (registerSpecialSymbols only
// gives them a self-returning nud): a string literal evaluates to its
// text, the three numeric literal kinds to their parsed number. This is
// the dialect-level override tdop_symbol.go's registerSpecialSymbols doc
// comment anticipates ("update semantics only overwrite callables, never
// remove the default nud").
func registerLiterals(r *Registry) error {
	if _, err := r.Register("(string)", WithEval(func(t *Token, ctx *Context) (Value, error) {
		s, _ := t.Value.(string)
		return StringValue(s), nil
	})); err != nil {
		return err
	}
	numericEval := func(t *Token, ctx *Context) (Value, error) {
		switch v := t.Value.(type) {
		case float64:
			return NumberValue(v), nil
		case int64:
			return NumberValue(float64(v)), nil
		default:
			return NumberValue(0), nil
		}
	}
	for _, symbol := range []string{"(integer)", "(decimal)", "(float)"} {
		if _, err := r.Register(symbol, WithEval(numericEval)); err != nil {
			return err
		}
	}
	return nil
}

// variableNud parses "$name" as a variable reference, resolved against
// Context.Variables at evaluation time (spec.md §3's variable_values
// table).
func variableNud(p *Parser, t *Token) (*Token, error) {
	if p.lookahead.Symbol() != "(name)" {
		return nil, p.unexpected(p.lookahead, []string{"(name)"})
	}
	name := p.lookahead
	if err := p.advance(); err != nil {
		return nil, err
	}
	qualified, _ := name.Value.(string)
	t.Value = qualified
	t.Kind = t.Kind.clone()
	t.Kind.Label = NewLabel(LabelSymbol)
	t.Kind.Eval = func(tok *Token, ctx *Context) (Value, error) {
		varName, _ := tok.Value.(string)
		v, ok := ctx.Variables[varName]
		if !ok {
			return nil, errorf(tok, MissingName, "unbound variable $%s", varName)
		}
		return v, nil
	}
	t.Kind.Select = func(tok *Token, ctx *Context) func(yield func(Node) bool) {
		return func(yield func(Node) bool) {
			v, err := tok.Kind.Eval(tok, ctx)
			if err != nil {
				return
			}
			for _, n := range v.Nodes() {
				if !yield(n) {
					return
				}
			}
		}
	}
	return t, nil
}
