package xpquery

import "testing"

// buildArithmeticParser builds a tiny standalone Pratt grammar (not XPath)
// to exercise the engine in isolation from the XPath dialect, matching
// spec.md's claim that the tdop_*.go layer is grammar-agnostic.
func buildArithmeticParser(t *testing.T) *Parser {
	t.Helper()
	r := NewRegistry([]string{"+", "-", "*", "(", ")"})
	add := func(a, b float64) float64 { return a + b }
	sub := func(a, b float64) float64 { return a - b }
	mul := func(a, b float64) float64 { return a * b }
	eval := func(fn func(a, b float64) float64) EvalFunc {
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
	if _, err := r.Infix("+", 10, WithEval(eval(add))); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Infix("-", 10, WithEval(eval(sub))); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Infix("*", 20, WithEval(eval(mul))); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("(", WithLBP(30),
		WithNud(func(p *Parser, t *Token) (*Token, error) {
			inner, err := p.expression(0)
			if err != nil {
				return nil, err
			}
			if err := p.advance(")"); err != nil {
				return nil, err
			}
			t.Children = []*Token{inner}
			t.Kind = t.Kind.clone()
			t.Kind.Eval = func(t *Token, ctx *Context) (Value, error) { return t.Children[0].Evaluate(ctx) }
			return t, nil
		})); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register(")"); err != nil {
		t.Fatal(err)
	}
	numericEval := func(t *Token, ctx *Context) (Value, error) {
		switch v := t.Value.(type) {
		case float64:
			return NumberValue(v), nil
		case int64:
			return NumberValue(float64(v)), nil
		}
		return NumberValue(0), nil
	}
	if _, err := r.Register("(integer)", WithEval(numericEval)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("(decimal)", WithEval(numericEval)); err != nil {
		t.Fatal(err)
	}
	p, err := NewParser(r)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func evalNumber(t *testing.T, p *Parser, src string) float64 {
	t.Helper()
	root, err := p.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := root.Evaluate(&Context{})
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return v.AsNumber()
}

func TestPrattEnginePrecedence(t *testing.T) {
	p := buildArithmeticParser(t)
	got := evalNumber(t, p, "1 + 2 * 3")
	if got != 7 {
		t.Fatalf("1 + 2 * 3 = %v, want 7", got)
	}
	got = evalNumber(t, p, "(1 + 2) * 3")
	if got != 9 {
		t.Fatalf("(1 + 2) * 3 = %v, want 9", got)
	}
}

func TestPrattEngineTree(t *testing.T) {
	p := buildArithmeticParser(t)
	root, err := p.Parse("1 + 2 * 3")
	if err != nil {
		t.Fatal(err)
	}
	want := "(+ 1 (* 2 3))"
	if got := root.Tree(); got != want {
		t.Fatalf("Tree() = %q, want %q", got, want)
	}
}

func TestParserRejectsTrailingTokens(t *testing.T) {
	p := buildArithmeticParser(t)
	if _, err := p.Parse("1 + 2 )"); err == nil {
		t.Fatal("expected an error for a trailing unmatched ')'")
	}
}

func TestParserRejectsEmptySource(t *testing.T) {
	p := buildArithmeticParser(t)
	if _, err := p.Parse(""); err == nil {
		t.Fatal("expected an error for empty source")
	}
}
