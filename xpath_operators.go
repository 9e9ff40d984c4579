package xpquery

import "math"

// registerOperators wires arithmetic (+ - * div mod), unary minus, the
// four relational operators, the two equality operators, and the two
// logical connectives. Grounded on the teacher's xpathBinaryOpNode.
// Evaluate/compareValues/compareStrings (xpath.go:945-1193) for the
// general-comparison cross-product structure, and
// elementpath/xpath1_parser.py's mod/div methods for the exact sign/
// zero-divisor semantics (SPEC_FULL.md §9 item 2 for mod's sign;
// DESIGN.md's "Open Question decisions" for the zero divisor).
func registerOperators(r *Registry) error {
	arith := []struct {
		symbol string
		bp     int
		eval   EvalFunc
	}{
		{"+", bpAdditive, arithmeticEval(func(a, b float64) float64 { return a + b })},
		{"-", bpAdditive, arithmeticEval(func(a, b float64) float64 { return a - b })},
		{"*", bpMultiply, starEval(arithmeticEval(func(a, b float64) float64 { return a * b }))},
		{"div", bpMultiply, divEval},
		{"mod", bpMultiply, modEval},
	}
	for _, op := range arith {
		op := op
		if _, err := r.Infix(op.symbol, op.bp, WithEval(op.eval)); err != nil {
			return err
		}
	}
	// Infix replaced the label set registerNodeTests gave "*"; keep its
	// wildcard name-test roles alongside the operator one.
	starKind, _ := r.Kind("*")
	starKind.Label = NewLabel(LabelOperator, LabelSymbol, LabelKindTest)
	// Unary minus shares the "-" symbol's kind but only applies in nud
	// (prefix) position; Duplicate isn't appropriate here since "-" is
	// already registered as infix above, so the nud is layered directly
	// onto the existing kind.
	minusKind, _ := r.Kind("-")
	minusKind.Nud = func(p *Parser, t *Token) (*Token, error) {
		operand, err := p.expression(bpUnary)
		if err != nil {
			return nil, err
		}
		neg := &Token{Kind: t.Kind, Value: t.Value, Span: t.Span, Children: []*Token{operand}, parser: p}
		neg.Kind = neg.Kind.clone()
		neg.Kind.Eval = func(tok *Token, ctx *Context) (Value, error) {
			v, err := tok.Children[0].Evaluate(ctx)
			if err != nil {
				return nil, err
			}
			return NumberValue(-v.AsNumber()), nil
		}
		return neg, nil
	}

	comparisons := []struct {
		symbol string
		bp     int
		fn     func(a, b Value) bool
	}{
		{"=", bpEquality, func(a, b Value) bool { return compareGeneral(a, b, true) }},
		{"!=", bpEquality, func(a, b Value) bool { return compareGeneral(a, b, false) }},
		{"<", bpRelation, func(a, b Value) bool { return compareNumeric(a, b, func(x, y float64) bool { return x < y }) }},
		{"<=", bpRelation, func(a, b Value) bool { return compareNumeric(a, b, func(x, y float64) bool { return x <= y }) }},
		{">", bpRelation, func(a, b Value) bool { return compareNumeric(a, b, func(x, y float64) bool { return x > y }) }},
		{">=", bpRelation, func(a, b Value) bool { return compareNumeric(a, b, func(x, y float64) bool { return x >= y }) }},
	}
	for _, cmp := range comparisons {
		cmp := cmp
		if _, err := r.Infix(cmp.symbol, cmp.bp, WithEval(comparisonEval(cmp.fn))); err != nil {
			return err
		}
	}
	if _, err := r.Infix("and", bpAnd, WithEval(logicalEval(false))); err != nil {
		return err
	}
	if _, err := r.Infix("or", bpOr, WithEval(logicalEval(true))); err != nil {
		return err
	}
	return nil
}

// starEval dispatches "*" by arity: two children means multiplication,
// anything else means the token was parsed in node-test (wildcard)
// position and falls back to its nud-assigned node-test evaluation.
func starEval(multiply EvalFunc) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		if len(t.Children) == 2 {
			return multiply(t, ctx)
		}
		return nodeTestEval(nameTestSelect)(t, ctx)
	}
}

func arithmeticEval(fn func(a, b float64) float64) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		lv, err := t.Children[0].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		rv, err := t.Children[1].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		return NumberValue(fn(lv.AsNumber(), rv.AsNumber())), nil
	}
}

// xpathDiv implements "div": division by zero yields +/-Infinity (or NaN
// for 0 div 0), matching IEEE 754 float division directly — XPath 1.0's
// div is defined over xs:double here since no decimal type is modeled.
func xpathDiv(a, b float64) float64 { return a / b }

// xpathMod implements "mod" per elementpath's exact semantics: the
// result's sign follows the dividend, which is exactly math.Mod's
// behavior already (Open Question #2 — no special-casing needed).
func xpathMod(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || b == 0 {
		return math.NaN()
	}
	return math.Mod(a, b)
}

// bothIntegerOperands reports whether t's two operands are both literal
// (integer) tokens — the narrow, purely syntactic case a parser without a
// static type system can recognize as "xs:integer div/mod xs:integer"
// (DESIGN.md's "div/mod zero-divisor strict-mode error is syntactic"
// decision: deeper expressions whose dynamic type happens to be integral
// are not distinguished and keep returning IEEE +/-Infinity/NaN).
func bothIntegerOperands(t *Token) bool {
	return len(t.Children) == 2 &&
		t.Children[0].Symbol() == "(integer)" && t.Children[1].Symbol() == "(integer)"
}

// divEval implements "div", raising FOAR0001 in strict mode for an
// integer zero-divisor instead of returning IEEE Infinity/NaN.
func divEval(t *Token, ctx *Context) (Value, error) {
	lv, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rn := rv.AsNumber()
	if rn == 0 && bothIntegerOperands(t) && t.Parser() != nil && t.Parser().Strict {
		return nil, errorf(t, FOAR0001, "integer division by zero")
	}
	return NumberValue(xpathDiv(lv.AsNumber(), rn)), nil
}

// modEval implements "mod", raising FOAR0001 in strict mode for an
// integer zero-divisor instead of returning NaN.
func modEval(t *Token, ctx *Context) (Value, error) {
	lv, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	rn := rv.AsNumber()
	if rn == 0 && bothIntegerOperands(t) && t.Parser() != nil && t.Parser().Strict {
		return nil, errorf(t, FOAR0001, "integer modulus by zero")
	}
	return NumberValue(xpathMod(lv.AsNumber(), rn)), nil
}

// compareGeneral implements XPath 1.0's "="/"!=" general comparison: if
// either operand is a node-set, the comparison holds if it holds
// (equal==wantEqual) for some pair drawn from the node-set(s) against the
// scalar coercion of the other side; otherwise both sides are compared
// once via scalarEqual. The existential "some pair" quantifier applies
// identically whether wantEqual is true ("=") or false ("!="), per XPath
// 1.0 §3.4.
func compareGeneral(a, b Value, wantEqual bool) bool {
	aNodes, aIsSet := a.(nodeSetValue)
	bNodes, bIsSet := b.(nodeSetValue)
	switch {
	case aIsSet && bIsSet:
		for _, an := range aNodes {
			for _, bn := range bNodes {
				if scalarEqual(StringValue(an.StringValue()), StringValue(bn.StringValue())) == wantEqual {
					return true
				}
			}
		}
		return false
	case aIsSet:
		for _, an := range aNodes {
			if scalarEqual(StringValue(an.StringValue()), b) == wantEqual {
				return true
			}
		}
		return false
	case bIsSet:
		for _, bn := range bNodes {
			if scalarEqual(a, StringValue(bn.StringValue())) == wantEqual {
				return true
			}
		}
		return false
	default:
		return scalarEqual(a, b) == wantEqual
	}
}

// scalarEqual compares two non-node-set values per XPath 1.0's coercion
// rule: boolean involved compares as booleans, string involved compares
// as strings, otherwise numerically.
func scalarEqual(a, b Value) bool {
	switch {
	case a.Type() == BooleanType || b.Type() == BooleanType:
		return a.AsBoolean() == b.AsBoolean()
	case a.Type() == StringType || b.Type() == StringType:
		return a.AsString() == b.AsString()
	default:
		return a.AsNumber() == b.AsNumber()
	}
}

// compareNumeric implements XPath 1.0's relational operators (<, <=, >,
// >=): always numeric, with the same node-set existential quantifier as
// compareGeneral.
func compareNumeric(a, b Value, numFn func(x, y float64) bool) bool {
	aNodes, aIsSet := a.(nodeSetValue)
	bNodes, bIsSet := b.(nodeSetValue)
	switch {
	case aIsSet && bIsSet:
		for _, an := range aNodes {
			for _, bn := range bNodes {
				if numFn(parseXPathNumber(an.StringValue()), parseXPathNumber(bn.StringValue())) {
					return true
				}
			}
		}
		return false
	case aIsSet:
		for _, an := range aNodes {
			if numFn(parseXPathNumber(an.StringValue()), b.AsNumber()) {
				return true
			}
		}
		return false
	case bIsSet:
		for _, bn := range bNodes {
			if numFn(a.AsNumber(), parseXPathNumber(bn.StringValue())) {
				return true
			}
		}
		return false
	default:
		return numFn(a.AsNumber(), b.AsNumber())
	}
}

func comparisonEval(fn func(a, b Value) bool) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		lv, err := t.Children[0].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		rv, err := t.Children[1].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		return BooleanValue(fn(lv, rv)), nil
	}
}

// logicalEval implements "and"/"or" with XPath's short-circuit rule:
// shortCircuitsOn is the boolean value of the left operand that makes the
// right operand unnecessary and is itself the short-circuited result
// (false for "and", true for "or").
func logicalEval(shortCircuitsOn bool) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		lv, err := t.Children[0].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		if lv.AsBoolean() == shortCircuitsOn {
			return BooleanValue(shortCircuitsOn), nil
		}
		rv, err := t.Children[1].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		return BooleanValue(rv.AsBoolean()), nil
	}
}
