package xpquery

// nodePath returns n's position as a sequence of sibling indices from the
// document root, with attribute nodes given a negative index so they
// always sort before their owning element's children (matching XPath
// document order: element, then its attributes, then its children).
func nodePath(n Node) []int {
	var path []int
	for cur := n; cur != nil; {
		parent := cur.Parent()
		if parent == nil {
			break
		}
		switch v := cur.(type) {
		case *attrNode:
			idx := -1
			if el, ok := parent.(*elementNode); ok {
				for i, a := range el.attributes {
					if a == v {
						idx = -(len(el.attributes) - i) - 1
						break
					}
				}
			}
			path = append([]int{idx}, path...)
		default:
			idx := 0
			if el, ok := parent.(*elementNode); ok {
				for i, c := range el.children {
					if c == cur {
						idx = i
						break
					}
				}
			}
			path = append([]int{idx}, path...)
		}
		cur = parent
	}
	return path
}

// documentOrderLess reports whether a precedes b in document order.
func documentOrderLess(a, b Node) bool {
	if a == b {
		return false
	}
	pa, pb := nodePath(a), nodePath(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

// isAncestor reports whether a is a (possibly indirect) ancestor of b.
func isAncestor(a, b Node) bool {
	for cur := b.Parent(); cur != nil; cur = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// sameIdentity reports whether two Node values refer to the same
// underlying node. It is a plain identity comparison: the tree has no
// typed wrapper types to unwrap.
func sameIdentity(a, b Node) bool {
	return a == b
}
