package xpquery

// Axis identifies one of the thirteen XPath 1.0 axes (spec.md §4.E).
type Axis uint8

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisParent
	AxisAncestor
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
	AxisAttribute
	AxisNamespace
	AxisSelf
	AxisDescendantOrSelf
	AxisAncestorOrSelf
)

// axisName is the XPath spelling of an axis, used for its symbol string
// and for diagnostics.
func axisName(a Axis) string {
	switch a {
	case AxisChild:
		return "child"
	case AxisDescendant:
		return "descendant"
	case AxisParent:
		return "parent"
	case AxisAncestor:
		return "ancestor"
	case AxisFollowingSibling:
		return "following-sibling"
	case AxisPrecedingSibling:
		return "preceding-sibling"
	case AxisFollowing:
		return "following"
	case AxisPreceding:
		return "preceding"
	case AxisAttribute:
		return "attribute"
	case AxisNamespace:
		return "namespace"
	case AxisSelf:
		return "self"
	case AxisDescendantOrSelf:
		return "descendant-or-self"
	case AxisAncestorOrSelf:
		return "ancestor-or-self"
	default:
		return "unknown-axis"
	}
}

// registerAxes declares "axisname::" for every axis in r's alphabet and
// attaches the Select behavior that walks the axis and, for each
// candidate, hands off to the step's node test via a per-candidate
// context copy. Grounded on the teacher's xpathAxisNode.evaluateAxis
// dispatch (xpath.go:601-903), restructured to pull from Context
// iterators instead of a concrete DOM walk.
func registerAxes(r *Registry, bp int) error {
	axes := []Axis{
		AxisChild, AxisDescendant, AxisParent, AxisAncestor,
		AxisFollowingSibling, AxisPrecedingSibling, AxisFollowing, AxisPreceding,
		AxisAttribute, AxisNamespace, AxisSelf, AxisDescendantOrSelf, AxisAncestorOrSelf,
	}
	for _, axis := range axes {
		axis := axis
		_, err := r.Axis(axisName(axis), bp,
			WithSelect(axisSelect(axis)),
			WithEval(axisEval(axis)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// axisSource returns the raw, untested sequence of candidate nodes an
// axis walks from ctx.Item, in the axis's defined direction.
func axisSource(axis Axis, ctx *Context) func(yield func(Node) bool) {
	switch axis {
	case AxisChild:
		return ctx.IterChildrenOrSelf()
	case AxisDescendant:
		return ctx.IterDescendants(AxisDescendant)
	case AxisDescendantOrSelf:
		return ctx.IterDescendants(AxisDescendantOrSelf)
	case AxisParent:
		return ctx.IterParent()
	case AxisAncestor:
		return ctx.IterAncestors(AxisAncestor)
	case AxisAncestorOrSelf:
		return ctx.IterAncestors(AxisAncestorOrSelf)
	case AxisFollowingSibling:
		return ctx.IterSiblings(AxisFollowingSibling)
	case AxisPrecedingSibling:
		return ctx.IterSiblings(AxisPrecedingSibling)
	case AxisFollowing:
		return ctx.IterFollowings()
	case AxisPreceding:
		return ctx.IterPreceding()
	case AxisAttribute:
		return ctx.IterAttributes()
	case AxisNamespace:
		return iterNamespaces(ctx.Item)
	case AxisSelf:
		return ctx.IterSelf()
	default:
		return func(yield func(Node) bool) {}
	}
}

// axisSelect walks axis from ctx.Item, testing every candidate against
// the axis token's sole child (the node test parsed by Registry.Axis's
// nud) in a per-candidate context copy with Axis set so "*" wildcards
// resolve to the axis's principal node kind.
func axisSelect(axis Axis) SelectFunc {
	return func(t *Token, ctx *Context) func(yield func(Node) bool) {
		return func(yield func(Node) bool) {
			test := t.Children[0]
			for candidate := range axisSource(axis, ctx) {
				stepCtx := ctx.Copy()
				stepCtx.Item = candidate
				stepCtx.Axis = axis
				stop := false
				for matched := range test.Select(stepCtx) {
					if !yield(matched) {
						stop = true
						break
					}
				}
				if stop {
					return
				}
			}
		}
	}
}

// axisEval evaluates an axis step as a node-set value, the scalar
// counterpart of axisSelect used wherever a step appears outside a path
// composition (e.g. as a standalone expression).
func axisEval(axis Axis) EvalFunc {
	return func(t *Token, ctx *Context) (Value, error) {
		var nodes []Node
		for n := range axisSelect(axis)(t, ctx) {
			nodes = append(nodes, n)
		}
		return NewNodeSet(nodes), nil
	}
}

// namespaceNode is a synthetic node representing one in-scope namespace
// declaration, materialized on demand since the reference tree doesn't
// store namespace nodes as first-class children.
type namespaceNode struct {
	baseNode
	prefix string
	uri    string
}

func (n *namespaceNode) Name() string         { return n.prefix }
func (n *namespaceNode) LocalName() string    { return n.prefix }
func (n *namespaceNode) NamespaceURI() string { return "" }
func (n *namespaceNode) StringValue() string  { return n.uri }

// iterNamespaces yields the in-scope namespace nodes of n: every prefix
// declared on n or an ancestor, nearest declaration winning, plus the
// implicit "xml" binding every element carries.
func iterNamespaces(n Node) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		seen := map[string]bool{}
		emit := func(prefix, uri string) bool {
			if seen[prefix] {
				return true
			}
			seen[prefix] = true
			var doc *documentNode
			if d, ok := n.Document().(*documentNode); ok {
				doc = d
			}
			return yield(&namespaceNode{
				baseNode: baseNode{kind: NamespaceNodeKind, parent: n, doc: doc},
				prefix:   prefix,
				uri:      uri,
			})
		}
		for cur := n; cur != nil; cur = cur.Parent() {
			el, ok := cur.(*elementNode)
			if !ok || el.nsDecls == nil {
				continue
			}
			for prefix, uri := range el.nsDecls {
				if !emit(prefix, uri) {
					return
				}
			}
		}
		emit("xml", "http://www.w3.org/XML/1998/namespace")
	}
}
