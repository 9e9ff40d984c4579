package xpquery

import "strings"

// This file provides the one concrete Node/Element/Document implementation
// the engine is tested against: a small in-memory tree builder. It is
// deliberately minimal — XPath's "XML data model provider" is an external
// collaborator per spec.md §1, so this exists only to exercise and test
// the engine, not as a second competing DOM implementation.

type baseNode struct {
	kind   NodeKind
	parent Node
	doc    *documentNode
}

func (b *baseNode) Kind() NodeKind   { return b.kind }
func (b *baseNode) Parent() Node     { return b.parent }
func (b *baseNode) Document() Node   { return b.doc }

type elementNode struct {
	baseNode
	name         string
	namespaceURI string
	children     []Node
	attributes   []*attrNode
	nsDecls      map[string]string // prefix -> URI declared on this element
}

func newElementNode(name string) *elementNode {
	return &elementNode{
		baseNode: baseNode{kind: ElementNodeKind},
		name:     name,
	}
}

func (e *elementNode) Name() string         { return e.name }
func (e *elementNode) LocalName() string    { return localPart(e.name) }
func (e *elementNode) NamespaceURI() string { return e.namespaceURI }

func (e *elementNode) StringValue() string {
	var sb strings.Builder
	collectText(e, &sb)
	return sb.String()
}

func (e *elementNode) Children() []Node {
	return e.children
}

func (e *elementNode) Attributes() []Node {
	out := make([]Node, len(e.attributes))
	for i, a := range e.attributes {
		out[i] = a
	}
	return out
}

func (e *elementNode) Attribute(name string) (Node, bool) {
	for _, a := range e.attributes {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

func collectText(n Node, sb *strings.Builder) {
	switch v := n.(type) {
	case *textNode:
		sb.WriteString(v.data)
	case Element:
		for _, c := range v.Children() {
			collectText(c, sb)
		}
	}
}

// localPart strips any "prefix:" portion of a qualified name.
func localPart(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// prefixPart returns the "prefix" portion of a qualified name, or "" if
// unqualified.
func prefixPart(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return ""
}

type attrNode struct {
	baseNode
	name         string
	namespaceURI string
	value        string
	owner        Node
}

func (a *attrNode) Name() string         { return a.name }
func (a *attrNode) LocalName() string    { return localPart(a.name) }
func (a *attrNode) NamespaceURI() string { return a.namespaceURI }
func (a *attrNode) StringValue() string  { return a.value }
func (a *attrNode) Parent() Node         { return a.owner }

type textNode struct {
	baseNode
	data string
}

func (t *textNode) Name() string         { return "" }
func (t *textNode) LocalName() string    { return "" }
func (t *textNode) NamespaceURI() string { return "" }
func (t *textNode) StringValue() string  { return t.data }

type commentNode struct {
	baseNode
	data string
}

func (c *commentNode) Name() string         { return "" }
func (c *commentNode) LocalName() string    { return "" }
func (c *commentNode) NamespaceURI() string { return "" }
func (c *commentNode) StringValue() string  { return c.data }

type piNode struct {
	baseNode
	target string
	data   string
}

func (p *piNode) Name() string         { return p.target }
func (p *piNode) LocalName() string    { return p.target }
func (p *piNode) NamespaceURI() string { return "" }
func (p *piNode) StringValue() string  { return p.data }

// documentNode is the root of a tree, wrapping one element (the document
// element) plus document-level metadata.
type documentNode struct {
	elementNode
	idIndex  map[string]Node
	encoding string
}

// NewDocument creates an empty document; call SetDocumentElement to attach
// its single document-element child.
func NewDocument() *documentNode {
	d := &documentNode{
		elementNode: elementNode{baseNode: baseNode{kind: RootNodeKind}},
		idIndex:     make(map[string]Node),
	}
	d.doc = d
	return d
}

func (d *documentNode) ElementByID(id string) (Node, bool) {
	n, ok := d.idIndex[id]
	return n, ok
}

func (d *documentNode) CharacterSet() string  { return d.encoding }
func (d *documentNode) InputEncoding() string { return d.encoding }

// SetDocumentElement attaches root as the document's single element
// child, stamping document/parent pointers through the whole subtree.
func (d *documentNode) SetDocumentElement(root *elementNode) {
	d.children = []Node{root}
	stampTree(root, d, d)
}

func stampTree(n Node, parent Node, doc *documentNode) {
	switch v := n.(type) {
	case *elementNode:
		v.parent, v.doc = parent, doc
		for _, a := range v.attributes {
			a.parent, a.doc, a.owner = v, doc, v
		}
		for _, c := range v.children {
			stampTree(c, v, doc)
		}
	case *textNode:
		v.parent, v.doc = parent, doc
	case *commentNode:
		v.parent, v.doc = parent, doc
	case *piNode:
		v.parent, v.doc = parent, doc
	}
}

// --- Builder convenience API ---

// AppendElement appends a new child element named name under e, returning
// the new element for further building.
func (e *elementNode) AppendElement(name string) *elementNode {
	child := newElementNode(name)
	child.parent, child.doc = e, e.doc
	e.children = append(e.children, child)
	return child
}

// AppendText appends a text node with data under e.
func (e *elementNode) AppendText(data string) *textNode {
	t := &textNode{baseNode: baseNode{kind: TextNodeKind, parent: e, doc: e.doc}, data: data}
	e.children = append(e.children, t)
	return t
}

// AppendComment appends a comment node with data under e.
func (e *elementNode) AppendComment(data string) *commentNode {
	c := &commentNode{baseNode: baseNode{kind: CommentNodeKind, parent: e, doc: e.doc}, data: data}
	e.children = append(e.children, c)
	return c
}

// AppendPI appends a processing-instruction node under e.
func (e *elementNode) AppendPI(target, data string) *piNode {
	p := &piNode{baseNode: baseNode{kind: ProcessingInstructionNodeKind, parent: e, doc: e.doc}, target: target, data: data}
	e.children = append(e.children, p)
	return p
}

// SetAttribute sets (or replaces) an attribute named name to value. A name
// of the form "xmlns:prefix" also records a namespace declaration visible
// to descendants via the in-scope-namespace lookup.
func (e *elementNode) SetAttribute(name, value string) *attrNode {
	if name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
		if e.nsDecls == nil {
			e.nsDecls = make(map[string]string)
		}
		prefix := ""
		if name != "xmlns" {
			prefix = name[len("xmlns:"):]
		}
		e.nsDecls[prefix] = value
	}
	for _, a := range e.attributes {
		if a.name == name {
			a.value = value
			return a
		}
	}
	a := &attrNode{
		baseNode: baseNode{kind: AttributeNodeKind, parent: e, doc: e.doc},
		name:     name,
		value:    value,
		owner:    e,
	}
	e.attributes = append(e.attributes, a)
	return a
}

// MarkID registers name's current value on e as an ID value, resolvable
// via Document.ElementByID — modeling an XML DTD/schema's ID-typed
// attribute without requiring a schema.
func (e *elementNode) MarkID(name string) {
	if a, ok := e.Attribute(name); ok {
		if e.doc != nil {
			e.doc.idIndex[a.StringValue()] = e
		}
	}
}

// LookupNamespaceURI resolves prefix against the in-scope namespace
// declarations starting at n and walking up through ancestor elements.
func LookupNamespaceURI(n Node, prefix string) (string, bool) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if el, ok := cur.(*elementNode); ok && el.nsDecls != nil {
			if uri, ok := el.nsDecls[prefix]; ok {
				return uri, true
			}
		}
	}
	return "", false
}
