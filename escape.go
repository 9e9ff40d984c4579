package xpquery

import "strings"

// escapeText renders s as XML character data, escaping '<', '>' and '&';
// every other character is written unchanged. Adapted from the teacher's
// EscapeText;
// used by elementNode.Render for a human-readable reconstruction of a
// built tree (diagnostics only — XPath string-value itself is never
// escaped).
func escapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// escapeAttr escapes s for use inside a double-quoted XML attribute
// value; the surrounding quotes are written by the caller.
func escapeAttr(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '<':
			sb.WriteString("&lt;")
		case '&':
			sb.WriteString("&amp;")
		case '"':
			sb.WriteString("&#34;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Render reconstructs e and its subtree as an XML fragment, for
// diagnostics and test fixtures.
func (e *elementNode) Render() string {
	var sb strings.Builder
	renderNode(e, &sb)
	return sb.String()
}

func renderNode(n Node, sb *strings.Builder) {
	switch v := n.(type) {
	case *elementNode:
		sb.WriteByte('<')
		sb.WriteString(v.name)
		for _, a := range v.attributes {
			sb.WriteByte(' ')
			sb.WriteString(a.name)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(a.value))
			sb.WriteByte('"')
		}
		if len(v.children) == 0 {
			sb.WriteString("/>")
			return
		}
		sb.WriteByte('>')
		for _, c := range v.children {
			renderNode(c, sb)
		}
		sb.WriteString("</")
		sb.WriteString(v.name)
		sb.WriteByte('>')
	case *textNode:
		sb.WriteString(escapeText(v.data))
	case *commentNode:
		sb.WriteString("<!--")
		sb.WriteString(v.data)
		sb.WriteString("-->")
	case *piNode:
		sb.WriteString("<?")
		sb.WriteString(v.target)
		sb.WriteByte(' ')
		sb.WriteString(v.data)
		sb.WriteString("?>")
	}
}
