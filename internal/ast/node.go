package ast

import "strings"

// Point is a zero-based line/column position in a source file.
type Point struct {
	Line   int
	Column int
}

// Node is an owned copy of a tree-sitter syntax node.
// The tree is immutable after parsing and safe to share across goroutines.
type Node struct {
	Kind      string
	Field     string // field name under the parent, "" if none
	Named     bool
	StartByte int
	EndByte   int
	Start     Point
	End       Point
	Parent    *Node
	Children  []*Node
	File      *File
	index     int
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	if n == nil || n.File == nil {
		return ""
	}
	return string(n.File.Source[n.StartByte:n.EndByte])
}

// Index returns the position of the node within its parent's children.
func (n *Node) Index() int {
	return n.index
}

// NamedChildren returns all named children in source order.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child carrying the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfKind returns the first direct child of one of the given kinds.
func (n *Node) FirstChildOfKind(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				return c
			}
		}
	}
	return nil
}

// ChildrenOfKind returns all direct children of the given kind.
func (n *Node) ChildrenOfKind(kind string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether an anonymous direct child has the given text,
// e.g. "abstract", "static" or "?".
func (n *Node) HasToken(tok string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if !c.Named && c.Kind == tok {
			return true
		}
	}
	return false
}

// Is reports whether the node has one of the given kinds.
func (n *Node) Is(kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// Ancestor returns the closest ancestor of one of the given kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// PrevSibling returns the sibling directly before the node, or nil.
func (n *Node) PrevSibling() *Node {
	if n == nil || n.Parent == nil || n.index == 0 {
		return nil
	}
	return n.Parent.Children[n.index-1]
}

// Walk visits the node and its descendants depth first.
// Returning false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Unwrap strips parenthesized expressions and types.
func Unwrap(n *Node) *Node {
	for n != nil && n.Is("parenthesized_expression", "parenthesized_type") {
		inner := n.NamedChildren()
		if len(inner) != 1 {
			return n
		}
		n = inner[0]
	}
	return n
}

// StringValue returns the contents of a string literal node without quotes.
func StringValue(n *Node) string {
	if n == nil {
		return ""
	}
	if frag := n.FirstChildOfKind("string_fragment"); frag != nil && len(n.NamedChildren()) == 1 {
		return frag.Text()
	}
	text := n.Text()
	if len(text) >= 2 {
		q := text[0]
		if (q == '"' || q == '\'' || q == '`') && text[len(text)-1] == q {
			return text[1 : len(text)-1]
		}
	}
	return strings.Trim(text, "\"'`")
}
