package xpquery

import "testing"

func evalXPath(t *testing.T, doc *documentNode, src string) Value {
	t.Helper()
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	root, err := p.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatalf("evaluate %q: %v", src, err)
	}
	return v
}

func TestXPathStringFunctions(t *testing.T) {
	doc := buildCatalog(t)
	cases := []struct {
		expr string
		want string
	}{
		{`concat('a', 'b', 'c')`, "abc"},
		{`normalize-space('  a   b  c ')`, "a b c"},
		{`translate('bar', 'abc', 'xyz')`, "yxr"},
		{`substring-after('1999/04/01', '/')`, "04/01"},
	}
	for _, c := range cases {
		got := evalXPath(t, doc, c.expr).AsString()
		if got != c.want {
			t.Errorf("%s = %q, want %q", c.expr, got, c.want)
		}
	}
}

func TestXPathBooleanFunctions(t *testing.T) {
	doc := buildCatalog(t)
	cases := []struct {
		expr string
		want bool
	}{
		{`starts-with('xpquery', 'xp')`, true},
		{`contains('xpquery', 'quer')`, true},
		{`not(false())`, true},
		{`boolean('')`, false},
		{`boolean('x')`, true},
		{`true() and false()`, false},
		{`true() or false()`, true},
	}
	for _, c := range cases {
		got := evalXPath(t, doc, c.expr).AsBoolean()
		if got != c.want {
			t.Errorf("%s = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestXPathNumberFunctions(t *testing.T) {
	doc := buildCatalog(t)
	cases := []struct {
		expr string
		want float64
	}{
		{`floor(4.7)`, 4},
		{`ceiling(4.2)`, 5},
		{`round(4.5)`, 5},
		{`number('42')`, 42},
		{`string-length('hello')`, 5},
		{`10 mod 3`, 1},
		{`10 div 4`, 2.5},
	}
	for _, c := range cases {
		got := evalXPath(t, doc, c.expr).AsNumber()
		if got != c.want {
			t.Errorf("%s = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestXPathLastAndPosition(t *testing.T) {
	doc := buildCatalog(t)
	v := evalXPath(t, doc, "//a[position() = last()]/@id")
	if v.AsString() != "second" {
		t.Fatalf("//a[position() = last()]/@id = %q, want \"second\"", v.AsString())
	}
}

func TestXPathLocalName(t *testing.T) {
	p, err := NewXPathParser(map[string]string{"b": "urn:books"}, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "local-name(//b:b)")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsString() != "b" {
		t.Fatalf("local-name(//b:b) = %q, want \"b\"", v.AsString())
	}
}

func TestXPathIDFunction(t *testing.T) {
	doc := NewDocument()
	root := newElementNode("root")
	item := root.AppendElement("item")
	item.SetAttribute("id", "x1")
	item.MarkID("id")
	doc.SetDocumentElement(root)

	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	result, err := p.Parse("id('x1')")
	if err != nil {
		t.Fatal(err)
	}
	v, err := result.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Nodes()) != 1 || v.Nodes()[0] != Node(item) {
		t.Fatalf("id('x1') should resolve to the marked element, got %v", v.Nodes())
	}
}

func TestXPathDivisionByZeroYieldsInfinity(t *testing.T) {
	doc := buildCatalog(t)
	v := evalXPath(t, doc, "1 div 0")
	if !v.AsBoolean() {
		// Infinity is non-zero, so its boolean effective value is true;
		// this sanity-checks the value isn't silently NaN/zero.
		t.Fatal("1 div 0 should be a non-zero (infinite) number")
	}
	n := v.AsNumber()
	if n <= 1e300 {
		t.Fatalf("1 div 0 = %v, want +Infinity", n)
	}
}

func TestXPathFunctionArgumentUnresolvablePrefixIsAnError(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Parse("count(//missing:thing)")
	if err == nil {
		t.Fatal("expected a namespace-resolution error")
	}
	xerr, ok := err.(*Error)
	if !ok || xerr.Code != XPST0081 {
		t.Fatalf("expected *Error{Code: XPST0081}, got %#v", err)
	}
}
