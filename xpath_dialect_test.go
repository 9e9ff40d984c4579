package xpquery

import "testing"

// buildCatalog constructs a small in-memory document used across the
// dialect tests:
//
//	<root xmlns:b="urn:books">
//	  <a id="first">one</a>
//	  <a id="second"><b:b>nested</b:b></a>
//	  <!-- trailer -->
//	</root>
func buildCatalog(t *testing.T) *documentNode {
	t.Helper()
	doc := NewDocument()
	root := newElementNode("root")
	root.SetAttribute("xmlns:b", "urn:books")

	a1 := root.AppendElement("a")
	a1.SetAttribute("id", "first")
	a1.AppendText("one")

	a2 := root.AppendElement("a")
	a2.SetAttribute("id", "second")
	bEl := a2.AppendElement("b:b")
	bEl.namespaceURI = "urn:books"
	bEl.AppendText("nested")

	root.AppendComment("trailer")

	doc.SetDocumentElement(root)
	return doc
}

func mustParse(t *testing.T, p *Parser, src string) *Token {
	t.Helper()
	root, err := p.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return root
}

func TestXPathArithmeticPrecedenceAndTree(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	root := mustParse(t, p, "1 + 2 * 3")
	if want := "(+ 1 (* 2 3))"; root.Tree() != want {
		t.Fatalf("Tree() = %q, want %q", root.Tree(), want)
	}
	v, err := root.Evaluate(NewContext(buildCatalog(t)))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != 7 {
		t.Fatalf("1 + 2 * 3 = %v, want 7", v.AsNumber())
	}
}

func TestXPathAbsolutePathWithPredicate(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "/root/a[2]")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	nodes := v.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected exactly one node, got %d", len(nodes))
	}
	el, ok := nodes[0].(Element)
	if !ok {
		t.Fatalf("expected an element, got %T", nodes[0])
	}
	attr, ok := el.Attribute("id")
	if !ok || attr.StringValue() != "second" {
		t.Fatalf("expected a[2] to have id=\"second\", got %v", attr)
	}
}

func TestXPathDescendantTextStep(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "//a/text()")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	nodes := v.Nodes()
	if len(nodes) != 1 || nodes[0].StringValue() != "one" {
		t.Fatalf("//a/text() = %v, want exactly the text node \"one\"", nodes)
	}
}

func TestXPathCountOfAllElements(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "count(//*) = 4")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBoolean() {
		t.Fatal("count(//*) = 4 should be true: root + two a + one namespaced b")
	}
}

func TestXPathNamespaceURI(t *testing.T) {
	p, err := NewXPathParser(map[string]string{"b": "urn:books"}, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "namespace-uri(//b:b)")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsString() != "urn:books" {
		t.Fatalf("namespace-uri(//b:b) = %q, want \"urn:books\"", v.AsString())
	}
}

func TestXPathSubstringBefore(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, `substring-before('1999/04/01','/')`)
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsString() != "1999" {
		t.Fatalf("substring-before = %q, want \"1999\"", v.AsString())
	}
}

func TestXPathSubstringRounding(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, `substring("12345", 1.5, 2.6)`)
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsString() != "234" {
		t.Fatalf("substring(\"12345\", 1.5, 2.6) = %q, want \"234\"", v.AsString())
	}
}

func TestXPathGeneralComparisonAgainstNodeSet(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, `//a/@id = 'second'`)
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBoolean() {
		t.Fatal("expected //a/@id = 'second' to be true (existential quantifier over the node-set)")
	}

	root = mustParse(t, p, `//a/@id != 'second'`)
	v, err = root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBoolean() {
		t.Fatal("expected //a/@id != 'second' to be true: the \"first\" id differs")
	}
}

func TestXPathUnion(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, `//a[@id='first'] | //a[@id='second']`)
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Nodes()) != 2 {
		t.Fatalf("union of the two a elements should yield 2 nodes, got %d", len(v.Nodes()))
	}
}

func TestXPathParenthesizedUnionComposesAsPathStep(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, `(//a[@id='first'] | //a[@id='second'])/@id`)
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Nodes()) != 2 {
		t.Fatalf("expected 2 id attributes from the grouped union, got %d", len(v.Nodes()))
	}
}

func TestXPathUnknownPrefixIsAnError(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse("//unbound:name"); err == nil {
		t.Fatal("expected XPST0081 for an unresolvable namespace prefix")
	} else if xerr, ok := err.(*Error); !ok || xerr.Code != XPST0081 {
		t.Fatalf("expected *Error{Code: XPST0081}, got %#v", err)
	}
}

func TestXPathPredicatePositionalFilter(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "//a[1]/@id")
	v, err := root.Evaluate(NewContext(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Nodes()) != 1 || v.Nodes()[0].StringValue() != "first" {
		t.Fatalf("//a[1]/@id = %v, want exactly id=\"first\"", v.Nodes())
	}
}

func TestXPathVariableReference(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "$wanted = 'second'")
	ctx := NewContext(doc)
	ctx.Variables["wanted"] = StringValue("second")
	v, err := root.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBoolean() {
		t.Fatal("expected $wanted = 'second' to be true")
	}
}

func TestXPathUnboundVariableIsAnError(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	doc := buildCatalog(t)
	root := mustParse(t, p, "$missing")
	if _, err := root.Evaluate(NewContext(doc)); err == nil {
		t.Fatal("expected an error evaluating an unbound variable")
	}
}

func TestCachingParserReusesCompiledTree(t *testing.T) {
	p, err := NewXPathParser(nil, false)
	if err != nil {
		t.Fatal(err)
	}
	cp := NewCachingParser(p, 8)
	first, err := cp.Parse("/root/a")
	if err != nil {
		t.Fatal(err)
	}
	second, err := cp.Parse("/root/a")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected the second Parse of an identical source string to return the cached tree")
	}
}
