// Package syntax wraps the tree-sitter multi-language parser behind a
// uniform node view, with a native go/parser fallback for Go sources.
// Analyzers walk the same Node shape regardless of which engine produced
// the tree.
package syntax

import (
	"strings"

	"codecritic/internal/models"
)

// Node is a language-agnostic view over one parsed syntax node. Nodes are
// owned by their Tree and discarded after analysis of one file.
type Node struct {
	Kind      string
	StartLine int // 1-based
	EndLine   int
	StartByte int
	EndByte   int
	Children  []*Node

	parent *Node
	field  string // field name in the parent, if any
}

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Field returns this node's field name within its parent ("" if none).
func (n *Node) Field() string { return n.field }

// ChildByField returns the first child carrying the given field name.
func (n *Node) ChildByField(name string) *Node {
	for _, c := range n.Children {
		if c.field == name {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child carrying the given field name.
func (n *Node) ChildrenByField(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.field == name {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the source slice this node spans.
func (n *Node) Text(src []byte) string {
	if n.StartByte < 0 || n.EndByte > len(src) || n.StartByte > n.EndByte {
		return ""
	}
	return string(src[n.StartByte:n.EndByte])
}

// Walk visits the subtree rooted at n in pre-order. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree is one parse session's result. Source is retained so node text can
// be sliced without re-reading the file.
type Tree struct {
	Root     *Node
	Source   []byte
	Language models.Language
}

// ResolveCallName recursively joins attribute-access chains into a dotted
// path, e.g. "db.session.query". Returns "" for call targets that are not
// simple name/attribute chains.
func ResolveCallName(n *Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case "identifier", "field_identifier", "property_identifier", "type_identifier", "shorthand_property_identifier":
		return n.Text(src)
	case "attribute", "member_expression", "selector_expression", "field_expression", "scoped_identifier":
		left := firstOfFields(n, "object", "operand", "value", "path")
		right := firstOfFields(n, "attribute", "property", "field", "name")
		l := ResolveCallName(left, src)
		r := ""
		if right != nil {
			r = right.Text(src)
		}
		if l == "" {
			return r
		}
		if r == "" {
			return l
		}
		return l + "." + r
	case "parenthesized_expression":
		if len(n.Children) == 1 {
			return ResolveCallName(n.Children[0], src)
		}
	}
	return ""
}

func firstOfFields(n *Node, names ...string) *Node {
	for _, name := range names {
		if c := n.ChildByField(name); c != nil {
			return c
		}
	}
	return nil
}

// IsAsync reports whether a function-like node is marked async. The async
// keyword is an anonymous token in the grammars, so the check is lexical.
func IsAsync(n *Node, src []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(n.Text(src)), "async")
}
