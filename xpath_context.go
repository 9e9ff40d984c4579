package xpquery

// Context is the XPath evaluation context enumerated in spec.md §3: the
// current item, the document root, the 1-based position/size of the
// current node-set, a variable-binding table, and a family of iterators
// axis and path tokens pull from. Context.Item is the only field mutated
// during iteration (spec.md §5); any caller that needs independent,
// nested iteration must call Copy() first.
type Context struct {
	Item      Node
	Root      Node
	Position  int
	Size      int
	Variables map[string]Value

	// Axis is the axis currently being stepped along, used by node-test
	// "*" wildcards to match only the axis's principal node kind
	// (IsPrincipalNodeKind). Zero value AxisChild is the correct default
	// for non-axis contexts (predicates, function arguments, ...).
	Axis Axis

	parser *Parser
}

// NewContext builds a root evaluation context over doc, with item and
// root both set to doc and position/size at the single-item default.
func NewContext(doc Node) *Context {
	return &Context{Item: doc, Root: doc, Position: 1, Size: 1, Variables: map[string]Value{}}
}

// Copy returns a shallow copy isolating Item/Position/Size/Axis mutation
// from the receiver — the isolation boundary spec.md §5 requires at every
// composition point (path steps, predicates, unions).
func (c *Context) Copy() *Context {
	cp := *c
	return &cp
}

// IsPrincipalNodeKind reports whether the context item is the principal
// node kind of the axis currently being traversed (element for most axes,
// attribute for the attribute axis, namespace for the namespace axis).
func (c *Context) IsPrincipalNodeKind() bool {
	if c.Item == nil {
		return false
	}
	return isPrincipalNodeKind(c.Axis, c.Item.Kind())
}

// GetParent returns item's parent node, or nil at the root.
func (c *Context) GetParent(item Node) Node { return item.Parent() }

// GetPath renders a "/tag/tag[...]"-shaped diagnostic path to item.
func (c *Context) GetPath(item Node) string {
	var names []string
	for cur := item; cur != nil && cur != c.Root; cur = cur.Parent() {
		if cur.Name() != "" {
			names = append([]string{cur.Name()}, names...)
		}
	}
	path := ""
	for _, n := range names {
		path += "/" + n
	}
	if path == "" {
		return "/"
	}
	return path
}

// IterSelf yields only the context item.
func (c *Context) IterSelf() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		if c.Item != nil {
			yield(c.Item)
		}
	}
}

// IterChildrenOrSelf yields the context item's children in document
// order (used by the child axis and by path composition's implicit
// child step).
func (c *Context) IterChildrenOrSelf() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		el, ok := c.Item.(Element)
		if !ok {
			return
		}
		for _, ch := range el.Children() {
			if !yield(ch) {
				return
			}
		}
	}
}

// IterAttributes yields the context item's attributes.
func (c *Context) IterAttributes() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		el, ok := c.Item.(Element)
		if !ok {
			return
		}
		for _, a := range el.Attributes() {
			if !yield(a) {
				return
			}
		}
	}
}

// IterParent yields the context item's parent, if any.
func (c *Context) IterParent() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		if p := c.Item.Parent(); p != nil {
			yield(p)
		}
	}
}

// IterSiblings yields following-sibling or preceding-sibling nodes
// (document order for following, reverse document order for preceding,
// per XPath 1.0's axis direction rule).
func (c *Context) IterSiblings(axis Axis) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		parent := c.Item.Parent()
		el, ok := parent.(Element)
		if !ok {
			return
		}
		siblings := el.Children()
		idx := -1
		for i, s := range siblings {
			if s == c.Item {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		if axis == AxisFollowingSibling {
			for _, s := range siblings[idx+1:] {
				if !yield(s) {
					return
				}
			}
			return
		}
		for i := idx - 1; i >= 0; i-- {
			if !yield(siblings[i]) {
				return
			}
		}
	}
}

// IterAncestors yields ancestor (or ancestor-or-self) nodes nearest-first.
func (c *Context) IterAncestors(axis Axis) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		if axis == AxisAncestorOrSelf {
			if !yield(c.Item) {
				return
			}
		}
		for cur := c.Item.Parent(); cur != nil; cur = cur.Parent() {
			if !yield(cur) {
				return
			}
		}
	}
}

// IterDescendants yields descendant (or descendant-or-self) nodes in
// document (pre-order) order.
func (c *Context) IterDescendants(axis Axis) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		if axis == AxisDescendantOrSelf {
			if !yield(c.Item) {
				return
			}
		}
		var walk func(n Node) bool
		walk = func(n Node) bool {
			el, ok := n.(Element)
			if !ok {
				return true
			}
			for _, ch := range el.Children() {
				if !yield(ch) {
					return false
				}
				if !walk(ch) {
					return false
				}
			}
			return true
		}
		walk(c.Item)
	}
}

// IterFollowings yields the following axis: every node after the context
// item in document order excluding its own descendants, attributes and
// namespace nodes.
func (c *Context) IterFollowings() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		for _, n := range allTreeNodes(c.Root) {
			if n == c.Item || isAncestor(c.Item, n) {
				continue
			}
			if documentOrderLess(c.Item, n) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// IterPreceding yields the preceding axis: every node before the context
// item in document order excluding its own ancestors.
func (c *Context) IterPreceding() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		for _, n := range allTreeNodes(c.Root) {
			if n == c.Item || isAncestor(n, c.Item) {
				continue
			}
			if documentOrderLess(n, c.Item) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// IterSelector yields every node in the whole tree (document order) for
// which keep returns true — a general-purpose whole-document scan. No
// token in this package calls it; id() resolves through
// Document.ElementByID instead.
func (c *Context) IterSelector(keep func(Node) bool) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		for _, n := range allTreeNodes(c.Root) {
			if keep(n) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// IterResults yields set's members in document order, deduplicated. The
// union operator (|) does not call it; unionEval merges through
// NewNodeSet.
func (c *Context) IterResults(set map[Node]bool) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		nodes := make([]Node, 0, len(set))
		for n := range set {
			nodes = append(nodes, n)
		}
		for _, n := range sortedUniqueNodes(nodes) {
			if !yield(n) {
				return
			}
		}
	}
}

// allTreeNodes returns every element/text/comment/processing-instruction
// node reachable from root, in document (pre-)order. Attribute and
// namespace nodes are excluded, per the definitions of the following/
// preceding axes.
func allTreeNodes(root Node) []Node {
	var out []Node
	var walk func(n Node)
	walk = func(n Node) {
		out = append(out, n)
		if el, ok := n.(Element); ok {
			for _, c := range el.Children() {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}
