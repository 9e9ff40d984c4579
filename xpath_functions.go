package xpquery

import (
	"math"
	"sort"
	"strings"
)

// registerFunctions wires the XPath 1.0 core function library (spec.md
// §4.E/§4.F): node-set functions (last/position/count/id/local-name/
// namespace-uri/name), string functions (string/concat/starts-with/
// contains/substring-before/substring-after/substring/string-length/
// normalize-space/translate), boolean functions (boolean/not/true/false/
// lang), and number functions (number/sum/floor/ceiling/round). Grounded
// on elementpath/xpath1_parser.py's function methods for exact edge-case
// semantics and the teacher's xpathFunctionNode dispatch shape.
func registerFunctions(r *Registry) error {
	type fn struct {
		name  string
		arity *FunctionArity
		eval  EvalFunc
	}
	fns := []fn{
		{"last", Exactly(0), lastEval},
		{"position", Exactly(0), positionEval},
		{"count", Exactly(1), countEval},
		{"id", Exactly(1), idEval},
		{"local-name", Range(0, 1), nodePartEval(Node.LocalName)},
		{"namespace-uri", Range(0, 1), nodePartEval(Node.NamespaceURI)},
		{"name", Range(0, 1), nodePartEval(Node.Name)},

		{"string", Range(0, 1), stringEval},
		{"concat", Variadic(), concatEval},
		{"starts-with", Exactly(2), startsWithEval},
		{"contains", Exactly(2), containsEval},
		{"substring-before", Exactly(2), substringBeforeEval},
		{"substring-after", Exactly(2), substringAfterEval},
		{"substring", Range(2, 3), substringEval},
		{"string-length", Range(0, 1), stringLengthEval},
		{"normalize-space", Range(0, 1), normalizeSpaceEval},
		{"translate", Exactly(3), translateEval},

		{"boolean", Exactly(1), booleanEval},
		{"not", Exactly(1), notEval},
		{"true", Exactly(0), trueEval},
		{"false", Exactly(0), falseEval},
		{"lang", Exactly(1), langEval},

		{"number", Range(0, 1), numberEval},
		{"sum", Exactly(1), sumEval},
		{"floor", Exactly(1), floorEval},
		{"ceiling", Exactly(1), ceilingEval},
		{"round", Exactly(1), roundEval},
	}
	for _, f := range fns {
		if _, err := r.Function(f.name, f.arity, WithEval(f.eval)); err != nil {
			return err
		}
	}
	idKind, _ := r.Kind("id")
	idKind.Select = func(t *Token, ctx *Context) func(yield func(Node) bool) {
		return func(yield func(Node) bool) {
			v, err := idEval(t, ctx)
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
	return nil
}

func lastEval(t *Token, ctx *Context) (Value, error)     { return NumberValue(float64(ctx.Size)), nil }
func positionEval(t *Token, ctx *Context) (Value, error) { return NumberValue(float64(ctx.Position)), nil }

func countEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return NumberValue(float64(len(v.Nodes()))), nil
}

// idEval resolves one or more whitespace-separated IDREF-shaped tokens —
// drawn from a node-set argument's string-values, or directly from a
// scalar argument's string value — against the context document's
// ID-attribute index.
func idEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	var refSource []string
	if nodes := v.Nodes(); nodes != nil {
		for _, n := range nodes {
			refSource = append(refSource, n.StringValue())
		}
	} else {
		refSource = append(refSource, v.AsString())
	}
	doc, ok := ctx.Root.(Document)
	if !ok {
		return NewNodeSet(nil), nil
	}
	var out []Node
	for _, s := range refSource {
		for _, ref := range strings.Fields(s) {
			if n, ok := doc.ElementByID(ref); ok {
				out = append(out, n)
			}
		}
	}
	return NewNodeSet(out), nil
}

// nodePartEval builds the shared shape of local-name()/namespace-uri()/
// name(): defaulting to the context item when called with no argument,
// and to the first node (in document order) of a node-set argument.
func nodePartEval(part func(Node) string) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		var target Node
		if len(t.Children) == 0 {
			target = ctx.Item
		} else {
			v, err := t.Children[0].Evaluate(ctx)
			if err != nil {
				return nil, err
			}
			nodes := v.Nodes()
			if len(nodes) == 0 {
				return StringValue(""), nil
			}
			target = nodes[0]
			for _, n := range nodes[1:] {
				if documentOrderLess(n, target) {
					target = n
				}
			}
		}
		if target == nil {
			return StringValue(""), nil
		}
		return StringValue(part(target)), nil
	}
}

func stringEval(t *Token, ctx *Context) (Value, error) {
	v, err := getArgument(t, ctx, 0)
	if err != nil {
		return nil, err
	}
	return StringValue(v.AsString()), nil
}

func concatEval(t *Token, ctx *Context) (Value, error) {
	var sb strings.Builder
	for _, child := range t.Children {
		v, err := child.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		sb.WriteString(v.AsString())
	}
	return StringValue(sb.String()), nil
}

func startsWithEval(t *Token, ctx *Context) (Value, error) {
	a, b, err := getOperands(t, ctx)
	if err != nil {
		return nil, err
	}
	return BooleanValue(strings.HasPrefix(a.AsString(), b.AsString())), nil
}

func containsEval(t *Token, ctx *Context) (Value, error) {
	a, b, err := getOperands(t, ctx)
	if err != nil {
		return nil, err
	}
	return BooleanValue(strings.Contains(a.AsString(), b.AsString())), nil
}

func substringBeforeEval(t *Token, ctx *Context) (Value, error) {
	a, b, err := getOperands(t, ctx)
	if err != nil {
		return nil, err
	}
	s, sep := a.AsString(), b.AsString()
	if sep == "" {
		return StringValue(""), nil
	}
	if idx := strings.Index(s, sep); idx >= 0 {
		return StringValue(s[:idx]), nil
	}
	return StringValue(""), nil
}

func substringAfterEval(t *Token, ctx *Context) (Value, error) {
	a, b, err := getOperands(t, ctx)
	if err != nil {
		return nil, err
	}
	s, sep := a.AsString(), b.AsString()
	if sep == "" {
		return StringValue(s), nil
	}
	if idx := strings.Index(s, sep); idx >= 0 {
		return StringValue(s[idx+len(sep):]), nil
	}
	return StringValue(""), nil
}

// substringEval implements substring(string, start, length?) with
// round-half-away-from-zero start/length rounding (SPEC_FULL.md §9 Open
// Question #1): characters are 1-indexed and the selected range is
// clamped to the string's actual bounds.
func substringEval(t *Token, ctx *Context) (Value, error) {
	sv, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	startV, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	runes := []rune(sv.AsString())
	start := startV.AsNumber()
	if math.IsNaN(start) {
		return StringValue(""), nil
	}
	startIdx := math.Round(start)
	endIdx := math.Inf(1)
	if len(t.Children) == 3 {
		lengthV, err := t.Children[2].Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		length := lengthV.AsNumber()
		if math.IsNaN(length) {
			return StringValue(""), nil
		}
		endIdx = startIdx + math.Round(length)
	}
	from := int(math.Max(startIdx, 1))
	to := len(runes) + 1
	if !math.IsInf(endIdx, 1) {
		to = int(math.Min(endIdx, float64(len(runes)+1)))
	}
	if from >= to || from > len(runes) {
		return StringValue(""), nil
	}
	return StringValue(string(runes[from-1 : to-1])), nil
}

func stringLengthEval(t *Token, ctx *Context) (Value, error) {
	v, err := getArgument(t, ctx, 0)
	if err != nil {
		return nil, err
	}
	return NumberValue(float64(len([]rune(v.AsString())))), nil
}

func normalizeSpaceEval(t *Token, ctx *Context) (Value, error) {
	v, err := getArgument(t, ctx, 0)
	if err != nil {
		return nil, err
	}
	return StringValue(strings.Join(strings.Fields(v.AsString()), " ")), nil
}

func translateEval(t *Token, ctx *Context) (Value, error) {
	sv, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	fromV, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	toV, err := t.Children[2].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	from, to := []rune(fromV.AsString()), []rune(toV.AsString())
	var sb strings.Builder
	for _, r := range sv.AsString() {
		idx := -1
		for i, f := range from {
			if f == r {
				idx = i
				break
			}
		}
		switch {
		case idx < 0:
			sb.WriteRune(r)
		case idx < len(to):
			sb.WriteRune(to[idx])
		default:
			// dropped: the character is mapped to no replacement
		}
	}
	return StringValue(sb.String()), nil
}

func booleanEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return BooleanValue(v.AsBoolean()), nil
}

func notEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return BooleanValue(!v.AsBoolean()), nil
}

func trueEval(t *Token, ctx *Context) (Value, error)  { return BooleanValue(true), nil }
func falseEval(t *Token, ctx *Context) (Value, error) { return BooleanValue(false), nil }

// langEval implements lang(string) per elementpath's ancestor-walk: the
// nearest ancestor-or-self xml:lang attribute is compared case-
// insensitively, first whole and then with the attribute value's
// "-"-suffixed sub-tag removed (so lang('en') matches an xml:lang="en-US"
// declaration); the argument itself is never truncated.
func langEval(t *Token, ctx *Context) (Value, error) {
	wantV, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToLower(wantV.AsString())
	for cur := ctx.Item; cur != nil; cur = cur.Parent() {
		el, ok := cur.(Element)
		if !ok {
			continue
		}
		attr, ok := el.Attribute("xml:lang")
		if !ok {
			continue
		}
		got := strings.ToLower(attr.StringValue())
		if got == want {
			return BooleanValue(true), nil
		}
		if i := strings.IndexByte(got, '-'); i >= 0 {
			got = got[:i]
		}
		return BooleanValue(got == want), nil
	}
	return BooleanValue(false), nil
}

func numberEval(t *Token, ctx *Context) (Value, error) {
	v, err := getArgument(t, ctx, 0)
	if err != nil {
		return nil, err
	}
	return NumberValue(v.AsNumber()), nil
}

func sumEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	nodes := v.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return documentOrderLess(nodes[i], nodes[j]) })
	var total float64
	for _, n := range nodes {
		total += parseXPathNumber(n.StringValue())
	}
	return NumberValue(total), nil
}

func floorEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return NumberValue(math.Floor(v.AsNumber())), nil
}

func ceilingEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return NumberValue(math.Ceil(v.AsNumber())), nil
}

// roundEval implements fn:round's "if two values are equally near, the
// greater is the result" tie-break: unlike math.Round (half away from
// zero), round(-0.5) is 0 and round(-2.5) is -2, not -1/-3.
func roundEval(t *Token, ctx *Context) (Value, error) {
	v, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	n := v.AsNumber()
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NumberValue(n), nil
	}
	return NumberValue(math.Floor(n + 0.5)), nil
}
