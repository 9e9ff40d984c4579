package xpquery

// Binding powers for the path/predicate/union layer, shared with
// xpath_grammar.go's alphabet table.
const (
	bpOr       = 10
	bpAnd      = 20
	bpEquality = 30
	bpRelation = 35
	bpAdditive = 40
	bpMultiply = 50
	bpUnary    = 60
	bpUnion    = 70
	bpPath     = 75
	bpPredicate = 80
	bpStep     = 90
)

// registerNodeTests wires the "(name)" node test, the "*" wildcard test,
// and the four kind tests (node/text/comment/processing-instruction) onto
// r. Every node test's Select yields the context item itself if it
// matches, nothing otherwise — the shape every axis composes against
// (xpath_axis.go's axisSelect calls test.Select(stepCtx)).
func registerNodeTests(r *Registry) error {
	if _, err := r.Register("(name)", WithLabel(LabelSymbol, LabelKindTest),
		WithNud(func(p *Parser, t *Token) (*Token, error) {
			// A name in function or axis position is not a registered one.
			if s := p.lookahead.Symbol(); s == "(" || s == "::" {
				return nil, errorf(t, XPST0017, "unknown function or axis %v", t.Value)
			}
			return t, nil
		}),
		WithSelect(nameTestSelect), WithEval(nodeTestEval(nameTestSelect))); err != nil {
		return err
	}
	if _, err := r.Register("*", WithPattern(`\*`), WithLabel(LabelSymbol, LabelKindTest),
		WithNud(func(p *Parser, t *Token) (*Token, error) { return t, nil }),
		WithSelect(nameTestSelect), WithEval(nodeTestEval(nameTestSelect))); err != nil {
		return err
	}
	for _, kind := range []struct {
		symbol string
		test   NodeKind
	}{
		{"text", TextNodeKind},
		{"comment", CommentNodeKind},
		{"processing-instruction", ProcessingInstructionNodeKind},
		{"node", 0},
	} {
		kind := kind
		sel := kindTestSelect(kind.test)
		if _, err := r.Function(kind.symbol, Range(0, 1), WithLabel(LabelFunction, LabelKindTest),
			WithSelect(sel), WithEval(nodeTestEval(sel))); err != nil {
			return err
		}
	}
	return nil
}

// nameTestSelect matches ctx.Item against t's node-test value: "*" (or
// "prefix:*"/"{uri}*") matches the axis's principal node kind, a plain or
// namespace-qualified name requires an exact local-name and
// namespace-URI match.
func nameTestSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		if ctx.Item == nil || !ctx.IsPrincipalNodeKind() {
			return
		}
		value, _ := t.Value.(string)
		ns, local, _ := splitQName(value)
		if local != "*" && ctx.Item.LocalName() != local {
			return
		}
		// An unprefixed "*" matches the principal node kind regardless of
		// namespace; a prefixed/namespace-qualified wildcard ("b:*",
		// "{uri}*") still requires the namespace-URI match below.
		if value != "*" && ctx.Item.NamespaceURI() != ns {
			return
		}
		yield(ctx.Item)
	}
}

// kindTestSelect builds the Select behavior for a kind test: text(),
// comment(), processing-instruction(['name']), or node() (want==0 matches
// any kind). The optional single argument to processing-instruction
// restricts the match to that PI target.
func kindTestSelect(want NodeKind) SelectFunc {
	return func(t *Token, ctx *Context) func(yield func(Node) bool) {
		return func(yield func(Node) bool) {
			if ctx.Item == nil {
				return
			}
			if want != 0 && ctx.Item.Kind() != want {
				return
			}
			if want == ProcessingInstructionNodeKind && len(t.Children) == 1 {
				target, err := t.Children[0].Evaluate(ctx)
				if err == nil && ctx.Item.Name() != target.AsString() {
					return
				}
			}
			yield(ctx.Item)
		}
	}
}

// nodeTestEval lets a bare node test double as a standalone expression
// (e.g. a predicate like "[node()]" evaluated for its boolean effective
// value): it collects everything the node test's Select yields from the
// current context item and wraps it as a one-or-zero-node node-set.
func nodeTestEval(sel SelectFunc) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		var nodes []Node
		for n := range sel(t, ctx) {
			nodes = append(nodes, n)
		}
		return NewNodeSet(nodes), nil
	}
}

// registerPath wires "/", "//", "[", "]", "|", "@", ".", ".." — the path
// composition, predicate, union and abbreviation layer of spec.md §4.E.
// Grounded on elementpath/xpath1_parser.py's '/'/'//'/'['/'|' method
// registrations and the teacher's xpathPathNode.Evaluate/
// removeDuplicatesAndSort (xpath.go:498-575) for the identity-dedup-in-
// document-order algorithm (now xpath_value.go's sortedUniqueNodes).
func registerPath(r *Registry) error {
	if _, err := r.Register("/", WithLBP(bpPath),
		WithNud(absolutePathNud), WithLed(pathLed), WithSelect(rootSelect), WithEval(pathEval(rootSelect))); err != nil {
		return err
	}
	if _, err := r.Register("//", WithLBP(bpPath),
		WithNud(abbreviatedDescendantNud), WithLed(descendantPathLed),
		WithSelect(descendantSelect), WithEval(pathEval(descendantSelect))); err != nil {
		return err
	}
	if _, err := r.Register("[", WithLBP(bpPredicate), WithLed(predicateLed)); err != nil {
		return err
	}
	if _, err := r.Register("]", WithPattern(`\]`)); err != nil {
		return err
	}
	if _, err := r.Register("|", WithLBP(bpUnion), WithLed(unionLed), WithEval(unionEval), WithSelect(unionSelect)); err != nil {
		return err
	}
	if _, err := r.Register("@", WithPattern(`@`), WithNud(attributeAbbreviationNud)); err != nil {
		return err
	}
	if _, err := r.Register(".", WithPattern(`\.(?!\d)`), WithLabel(LabelSymbol),
		WithNud(func(p *Parser, t *Token) (*Token, error) { return t, nil }),
		WithSelect(func(t *Token, ctx *Context) func(yield func(Node) bool) { return ctx.IterSelf() }),
		WithEval(nodeTestEval(func(t *Token, ctx *Context) func(yield func(Node) bool) { return ctx.IterSelf() }))); err != nil {
		return err
	}
	if _, err := r.Register("..", WithPattern(`\.\.`), WithLabel(LabelSymbol),
		WithNud(func(p *Parser, t *Token) (*Token, error) { return t, nil }),
		WithSelect(func(t *Token, ctx *Context) func(yield func(Node) bool) { return ctx.IterParent() }),
		WithEval(nodeTestEval(func(t *Token, ctx *Context) func(yield func(Node) bool) { return ctx.IterParent() }))); err != nil {
		return err
	}
	if _, err := r.Register(",", WithLBP(0)); err != nil {
		return err
	}
	if _, err := r.Register("(", WithLBP(bpStep), WithPattern(`\(`),
		WithNud(groupingNud), WithLed(nil),
		WithSelect(groupingSelect), WithEval(groupingEval)); err != nil {
		return err
	}
	_, err := r.Register(")", WithPattern(`\)`))
	return err
}

func groupingNud(p *Parser, t *Token) (*Token, error) {
	inner, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if err := p.advance(")"); err != nil {
		return nil, err
	}
	t.Children = []*Token{inner}
	return t, nil
}

// groupingSelect/groupingEval let a parenthesized sub-expression act as a
// FilterExpr in further path composition (e.g. "(a|b)/c"): both simply
// delegate to the enclosed expression.
func groupingSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return t.Children[0].Select(ctx)
}

func groupingEval(t *Token, ctx *Context) (Value, error) {
	return t.Children[0].Evaluate(ctx)
}

// absolutePathNud parses a leading "/" (an absolute path): either a bare
// root reference ("/" alone) or "/" followed by a relative path.
func absolutePathNud(p *Parser, t *Token) (*Token, error) {
	if !startsRelativePath(p.lookahead) {
		return t, nil
	}
	rhs, err := p.expression(bpPath)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{rhs}
	return t, nil
}

// pathLed parses "left / right": a path step composed onto an existing
// (possibly relative) path expression.
func pathLed(p *Parser, t *Token, left *Token) (*Token, error) {
	right, err := p.expression(bpPath)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{left, right}
	return t, nil
}

// abbreviatedDescendantNud parses a leading "//" as shorthand for
// "/descendant-or-self::node()/<rest>".
func abbreviatedDescendantNud(p *Parser, t *Token) (*Token, error) {
	rhs, err := p.expression(bpPath)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{rhs}
	return t, nil
}

func descendantPathLed(p *Parser, t *Token, left *Token) (*Token, error) {
	right, err := p.expression(bpPath)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{left, right}
	return t, nil
}

func startsRelativePath(next *Token) bool {
	if next == nil || next.Kind == nil {
		return false
	}
	return next.Kind.Nud != nil && next.Symbol() != "(end)"
}

// selectStep applies step against ctx the way an XPath step composes: a
// bare node/kind test carries no axis specifier of its own, so XPath 1.0
// defaults it to "child::" — it must be tested against each of ctx.Item's
// children, not against ctx.Item itself. Anything else (an axis step,
// "@", ".", "..", a predicate, a union, a parenthesized group) already
// performs its own traversal in its Select and is asked directly.
// Grounded on elementpath's distinction between a NodeTest's select()
// (iterates children-or-self) and the match-only check an explicit axis
// token applies to candidates it has already produced.
func selectStep(step *Token, ctx *Context) func(yield func(Node) bool) {
	if !step.Is(LabelKindTest) {
		return step.Select(ctx)
	}
	return func(yield func(Node) bool) {
		for candidate := range ctx.IterChildrenOrSelf() {
			stepCtx := ctx.Copy()
			stepCtx.Item = candidate
			stepCtx.Axis = AxisChild
			for n := range step.Select(stepCtx) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// rootSelect implements "/" used either as a bare root reference (no
// children) or as path composition (1 child: relative continuation from
// the document root; 2 children: left-hand path composed with a right
// step, each context item feeding the next).
func rootSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		switch len(t.Children) {
		case 0:
			yield(ctx.Root)
		case 1:
			rootCtx := ctx.Copy()
			rootCtx.Item = ctx.Root
			for n := range selectStep(t.Children[0], rootCtx) {
				if !yield(n) {
					return
				}
			}
		default:
			for left := range selectStep(t.Children[0], ctx) {
				leftCtx := ctx.Copy()
				leftCtx.Item = left
				for n := range selectStep(t.Children[1], leftCtx) {
					if !yield(n) {
						return
					}
				}
			}
		}
	}
}

// pathEval wraps a path/descendant token's Select as a node-set value for
// use when the whole expression is evaluated scalarly (e.g. "count(/a/b)").
func pathEval(sel SelectFunc) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		var nodes []Node
		for n := range sel(t, ctx) {
			nodes = append(nodes, n)
		}
		return NewNodeSet(nodes), nil
	}
}

// descendantSelect implements "//" select: descendant-or-self::node()
// from the context item (document root if "//" begins the expression),
// then the right-hand continuation from each.
func descendantSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		base := ctx.Copy()
		if len(t.Children) == 2 {
			for left := range selectStep(t.Children[0], ctx) {
				base.Item = left
				walkDescendantOrSelf(base, t.Children[1], yield)
			}
			return
		}
		base.Item = ctx.Root
		walkDescendantOrSelf(base, t.Children[0], yield)
	}
}

func walkDescendantOrSelf(base *Context, step *Token, yield func(Node) bool) bool {
	for candidate := range base.IterDescendants(AxisDescendantOrSelf) {
		stepCtx := base.Copy()
		stepCtx.Item = candidate
		for n := range selectStep(step, stepCtx) {
			if !yield(n) {
				return false
			}
		}
	}
	return true
}

// predicateLed implements "expr[predicate]": the predicate is evaluated
// once per candidate from expr's Select with Position/Size set over the
// whole candidate sequence (spec.md's predicate-truth rule: a numeric
// predicate value matches position equality, any other value uses its
// boolean effective value).
func predicateLed(p *Parser, t *Token, left *Token) (*Token, error) {
	pred, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if err := p.advance("]"); err != nil {
		return nil, err
	}
	t.Children = []*Token{left, pred}
	t.Kind = t.Kind.clone()
	t.Kind.Select = predicateSelect
	t.Kind.Eval = nodeTestEval(predicateSelect)
	return t, nil
}

func predicateSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		var candidates []Node
		for n := range selectStep(t.Children[0], ctx) {
			candidates = append(candidates, n)
		}
		size := len(candidates)
		for i, n := range candidates {
			predCtx := ctx.Copy()
			predCtx.Item = n
			predCtx.Position = i + 1
			predCtx.Size = size
			v, err := t.Children[1].Evaluate(predCtx)
			if err != nil {
				continue
			}
			if predicateMatches(v, i+1) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// predicateMatches implements XPath 1.0's predicate truth value rule: a
// number must equal the context position; anything else uses its boolean
// effective value.
func predicateMatches(v Value, position int) bool {
	if v.Type() == NumberType {
		return v.AsNumber() == float64(position)
	}
	return v.AsBoolean()
}

// unionLed implements "left | right": both operands evaluated as node
// sets against the same context and merged, deduplicated, sorted into
// document order. The token carries no flag for nested unions: each
// level's unionEval merges and sorts its own operands again.
func unionLed(p *Parser, t *Token, left *Token) (*Token, error) {
	right, err := p.expression(bpUnion)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{left, right}
	return t, nil
}

func unionEval(t *Token, ctx *Context) (Value, error) {
	lv, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return NewNodeSet(append(append([]Node{}, lv.Nodes()...), rv.Nodes()...)), nil
}

// unionSelect lets a union compose as a path step itself (e.g. the
// FilterExpr "(a|b)/c"): yields the merged, deduplicated, document-order
// node set unionEval computes.
func unionSelect(t *Token, ctx *Context) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		v, err := unionEval(t, ctx)
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

// attributeAbbreviationNud parses the "@name" shorthand for
// "attribute::name", reusing the attribute axis's machinery directly.
func attributeAbbreviationNud(p *Parser, t *Token) (*Token, error) {
	step, err := p.expression(bpStep)
	if err != nil {
		return nil, err
	}
	t.Children = []*Token{step}
	t.Kind = t.Kind.clone()
	t.Kind.Select = axisSelect(AxisAttribute)
	t.Kind.Eval = axisEval(AxisAttribute)
	return t, nil
}
