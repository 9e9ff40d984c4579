// Package xpquery implements a reusable top-down operator precedence
// (Pratt) parsing engine, plus an XPath 1.0 expression parser and
// evaluator built on it.
//
// The engine (tdop_*.go) is grammar-agnostic: a Registry declares a
// closed alphabet of symbols, each carrying binding powers and null/left
// denotations (nud/led), and a Parser drives the classic Pratt loop over
// a tokenizer synthesized from that registry. The XPath 1.0 dialect
// (xpath_*.go) is one concrete grammar built on top of it, evaluating
// expressions against an externally supplied XML-like node tree (node.go
// declares the interfaces that tree must satisfy; node_tree.go is a
// small in-memory reference implementation used to exercise it).
//
// A typical caller builds a dialect parser once and reuses it for many
// expressions:
//
//	p, err := xpquery.NewXPathParser(nil, false)
//	root, err := p.Parse("/catalog/book[@id='bk101']/title")
//	ctx := xpquery.NewContext(doc)
//	value, err := root.Evaluate(ctx)
package xpquery
