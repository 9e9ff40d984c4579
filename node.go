package xpquery

// NodeKind enumerates the XPath 1.0 node kinds (§3: "XML data model
// provider"). The engine treats the provider as an external collaborator
// — this file is only the interface surface it programs against, trimmed
// from the teacher's full DOM Level 3 API to what XPath 1.0 evaluation
// actually needs.
type NodeKind uint8

const (
	RootNodeKind NodeKind = iota + 1
	ElementNodeKind
	AttributeNodeKind
	TextNodeKind
	CommentNodeKind
	ProcessingInstructionNodeKind
	NamespaceNodeKind
)

// Node is the minimal read contract every XPath-selectable item exposes.
// Concrete kinds (elements, attributes, text, ...) all satisfy it; a
// dialect distinguishes them further via Kind() and a type assertion to
// Element when it needs attribute/child navigation.
type Node interface {
	Kind() NodeKind
	// Name is the node's qualified name (e.g. "prefix:local" for a
	// namespace-qualified element or attribute); empty for text/comment.
	Name() string
	// LocalName is Name with any namespace prefix stripped.
	LocalName() string
	// NamespaceURI is the resolved namespace URI, or "" if unqualified.
	NamespaceURI() string
	// StringValue is the XPath string-value of the node per its kind's
	// serialization rule (concatenated descendant text for elements,
	// data for text/comment/PI nodes, the attribute value for
	// attributes).
	StringValue() string
	Parent() Node
	Document() Node // the owning root/document node
}

// Element is a Node with children and attributes.
type Element interface {
	Node
	Children() []Node
	Attributes() []Node
	// Attribute looks up an attribute by qualified name; ok is false if
	// the element carries no such attribute.
	Attribute(name string) (Node, bool)
}

// Document is the root node of a tree; its Children (usually a single
// element) are the document children, and CharacterSet/InputEncoding
// expose the declared source encoding (populated by node_encoding.go).
type Document interface {
	Element
	// ElementByID resolves an ID-typed attribute value to its element,
	// supporting the id() function; ok is false if unknown.
	ElementByID(id string) (Node, bool)
	CharacterSet() string
	InputEncoding() string
}

// kindTestName returns the XPath kind-test keyword ("text", "comment",
// "processing-instruction", "node") matching a NodeKind. The kind tests
// themselves (xpath_path.go's kindTestSelect) compare NodeKind values and
// do not call it.
func kindTestName(k NodeKind) string {
	switch k {
	case TextNodeKind:
		return "text"
	case CommentNodeKind:
		return "comment"
	case ProcessingInstructionNodeKind:
		return "processing-instruction"
	default:
		return "node"
	}
}

// isPrincipalNodeKind reports whether k is the axis's principal node kind
// (element for most axes, attribute for the attribute axis, namespace for
// the namespace axis) — used for "*" wildcard name tests.
func isPrincipalNodeKind(axis Axis, k NodeKind) bool {
	switch axis {
	case AxisAttribute:
		return k == AttributeNodeKind
	case AxisNamespace:
		return k == NamespaceNodeKind
	default:
		return k == ElementNodeKind
	}
}
