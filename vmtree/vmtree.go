// Package vmtree holds the content tree a diagram renders: one Node per
// outline entry, children in display order. Interaction state (folded,
// description hidden) is deliberately not stored on the tree; it lives in a
// State map owned by each diagram instance so the same tree can back
// several instances without aliasing.
package vmtree

import (
	"fmt"
	"strconv"

	"github.com/vinemap/vinemap/lib/geo"
)

// Node is one outline entry. Title and Description are HTML fragments.
// The annotation fields below Children are assigned by the identity and
// measurement pass and are only meaningful within one render.
type Node struct {
	Title       string
	Description string
	Children    []*Node

	// Depth is 0 at the root; every child is parent depth + 1.
	Depth int
	// Index is the depth-first visit order, starting at 1.
	Index int
	// Key correlates this node with its rendered elements across renders.
	Key string
	// ParentIndex is the parent's Index, or 0 for the root.
	ParentIndex int

	TitleSize geo.Size
	DescSize  geo.Size

	// LastPos caches the node's diagram position from the previous render.
	// It is the default animation origin when a render has no explicit one.
	LastPos *geo.Point
}

// HasChildren reports whether the node has children in the content tree,
// regardless of fold state.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// HasDescription reports whether the node carries a description fragment.
func (n *Node) HasDescription() bool {
	return n.Description != ""
}

// IdentityKey derives the correlation key from the parent's index (empty
// for the root), the node's own index, and its title. Reordering nodes or
// editing a title intentionally produces a fresh key, so those changes
// re-enter rather than morph.
func IdentityKey(parentIndex, index int, title string) string {
	parent := ""
	if parentIndex > 0 {
		parent = strconv.Itoa(parentIndex)
	}
	return fmt.Sprintf("%s.%d.%s", parent, index, title)
}

// Walk visits n and every descendant depth-first in display order.
// parent is nil for the root.
func Walk(n *Node, visit func(n, parent *Node)) {
	if n == nil {
		return
	}
	walk(n, nil, visit)
}

func walk(n, parent *Node, visit func(n, parent *Node)) {
	visit(n, parent)
	for _, c := range n.Children {
		walk(c, n, visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 0
	Walk(n, func(*Node, *Node) { count++ })
	return count
}

// Find returns the first node in the subtree with the given identity key.
func (n *Node) Find(key string) *Node {
	var found *Node
	Walk(n, func(node, _ *Node) {
		if found == nil && node.Key == key {
			found = node
		}
	})
	return found
}

// CloneChildren replaces every children slice in the subtree with a fresh
// one-level copy. Run at the start of each data (re)initialization so
// layout annotations from a prior render never leak into still-folded
// subtrees.
func (n *Node) CloneChildren() {
	if n == nil {
		return
	}
	if n.Children != nil {
		n.Children = append([]*Node(nil), n.Children...)
	}
	for _, c := range n.Children {
		c.CloneChildren()
	}
}
