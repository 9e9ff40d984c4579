package xpquery

// This file collects the small value-coercion helpers xpath_functions.go
// leans on repeatedly. Grounded on elementpath's XPathToken.boolean_value/
// string_value/number_value/get_argument and the teacher's
// stringValueOf/numberValueOf/booleanValueOf (xpath.go:1505-1551).

// contextStringValue is the string-value of the context item itself,
// used as the implicit argument XPath 1.0 assigns when a function call
// omits its sole node-set/string argument (e.g. bare "string()",
// "normalize-space()", "number()").
func contextStringValue(ctx *Context) Value {
	if ctx.Item == nil {
		return StringValue("")
	}
	return StringValue(ctx.Item.StringValue())
}

// getArgument evaluates t's idx'th argument, or falls back to the
// context item's string value if the function was called with fewer
// arguments than idx+1 (the "operates on the context node by default"
// rule most string/number functions share).
func getArgument(t *Token, ctx *Context, idx int) (Value, error) {
	if idx >= len(t.Children) {
		return contextStringValue(ctx), nil
	}
	return t.Children[idx].Evaluate(ctx)
}

// getOperands evaluates t's first two arguments as a pair, with no
// context-item fallback (used by two-argument functions like contains/
// starts-with where both arguments are mandatory by arity).
func getOperands(t *Token, ctx *Context) (Value, Value, error) {
	a, err := t.Children[0].Evaluate(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := t.Children[1].Evaluate(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// getComparisonData resolves both a general comparison's operands
// preserving node-set-ness (unlike getOperands, which is for string
// functions): used wherever a caller needs to know whether either side
// was a node-set (e.g. diagnostics, or a dialect extension that treats
// node-set-vs-node-set comparisons specially).
func getComparisonData(t *Token, ctx *Context) (left, right Value, leftIsNodes, rightIsNodes bool, err error) {
	left, right, err = getOperands(t, ctx)
	if err != nil {
		return nil, nil, false, false, err
	}
	_, leftIsNodes = left.(nodeSetValue)
	_, rightIsNodes = right.(nodeSetValue)
	return left, right, leftIsNodes, rightIsNodes, nil
}
