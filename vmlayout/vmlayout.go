// Package vmlayout computes positions for a prepared content tree.
//
// Coordinates follow the layout convention, not the screen one: X runs
// along the cross axis (vertical once drawn) and Y along the main axis
// (depth, horizontal once drawn). A node's X is the center of its band;
// its Y is its left edge on the main axis. The renderer maps (Y, X) to
// screen (x, y).
//
// Each subtree occupies a cross-axis band sized by the larger of the
// node's own extent and its stacked children. Bands never interleave, so
// positions are collision-free for any mix of node sizes. Adjacent leaf
// siblings sit one spacing apart; once either neighbor has a subtree the
// gap doubles, which visually groups sibling clusters.
package vmlayout

import (
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmtree"
)

type Options struct {
	// SpacingH is the horizontal corridor reserved after each node for its
	// outgoing edges, before the next depth begins.
	SpacingH float64
	// SpacingV separates sibling bands on the cross axis.
	SpacingV float64
	// PaddingX pads node content horizontally on both sides.
	PaddingX float64
}

// Node wraps a content node with its computed geometry for one render.
// The positioned tree is rebuilt from scratch every render; only the
// content node and its key persist.
type Node struct {
	Data     *vmtree.Node
	Parent   *Node
	Children []*Node

	// X is the cross-axis center of the node's band.
	X float64
	// Y is the main-axis position of the node's left edge.
	Y float64
	// XSize is the node's cross-axis extent (content height).
	XSize float64
	// YSize is the gross main-axis extent: content width plus the edge
	// corridor. YSizeInner is YSize net of that corridor.
	YSize      float64
	YSizeInner float64

	band float64
}

// Extents are the bounds of the last layout over both axes.
type Extents struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

type Tree struct {
	Root    *Node
	Extents Extents
}

// Layout positions every visible node of root. Folded nodes are treated
// as leaves: their content subtree survives but contributes nothing to the
// positioned tree. A nil root yields a nil tree and the render is skipped.
func Layout(root *vmtree.Node, st *vmtree.State, opts Options) *Tree {
	if root == nil {
		return nil
	}

	pRoot := build(root, nil, st, opts)
	measureBands(pRoot, opts)
	place(pRoot, 0, opts)
	adjustSpacing(pRoot, opts.SpacingH)

	t := &Tree{Root: pRoot}
	t.Extents = computeExtents(pRoot)
	return t
}

func build(d *vmtree.Node, parent *Node, st *vmtree.State, opts Options) *Node {
	n := &Node{
		Data:   d,
		Parent: parent,
	}
	n.XSize, n.YSize = nodeSize(d, st, opts)

	if parent == nil {
		n.Y = 0
	} else {
		n.Y = parent.Y + parent.YSize
	}

	if !st.Get(d.Key).Folded {
		for _, c := range d.Children {
			n.Children = append(n.Children, build(c, n, st, opts))
		}
	}
	return n
}

// nodeSize computes the layout box for one node: height is title plus
// description (when shown), width is the wider of the two plus padding,
// plus the outgoing-edge corridor.
func nodeSize(d *vmtree.Node, st *vmtree.State, opts Options) (xSize, ySize float64) {
	height := float64(d.TitleSize.Height)
	if !st.Get(d.Key).DescHidden {
		height += float64(d.DescSize.Height)
	}

	width := geo.Max(float64(d.TitleSize.Width), float64(d.DescSize.Width))
	if width > 0 {
		width += 2 * opts.PaddingX
	}
	width += opts.SpacingH

	return height, width
}

func measureBands(n *Node, opts Options) {
	if len(n.Children) == 0 {
		n.band = n.XSize
		return
	}
	sum := 0.
	for i, c := range n.Children {
		measureBands(c, opts)
		sum += c.band
		if i > 0 {
			sum += gap(n.Children[i-1], c, opts.SpacingV)
		}
	}
	n.band = geo.Max(n.XSize, sum)
}

// gap doubles across subtree boundaries so clusters of leaf siblings read
// as a group.
func gap(a, b *Node, spacingV float64) float64 {
	if len(a.Children) == 0 && len(b.Children) == 0 {
		return spacingV
	}
	return 2 * spacingV
}

func place(n *Node, top float64, opts Options) {
	n.X = top + n.band/2

	if len(n.Children) == 0 {
		return
	}
	sum := 0.
	for i, c := range n.Children {
		sum += c.band
		if i > 0 {
			sum += gap(n.Children[i-1], c, opts.SpacingV)
		}
	}
	cursor := top + (n.band-sum)/2
	for i, c := range n.Children {
		if i > 0 {
			cursor += gap(n.Children[i-1], c, opts.SpacingV)
		}
		place(c, cursor, opts)
		cursor += c.band
	}
}

// adjustSpacing converts the gross main-axis size into an inner size and
// shifts each node past the corridor reserved for its incoming edge. The
// corridor width is fixed regardless of the node's content width.
func adjustSpacing(n *Node, spacingH float64) {
	n.YSizeInner = n.YSize - spacingH
	n.Y += spacingH
	for _, c := range n.Children {
		adjustSpacing(c, spacingH)
	}
}

func computeExtents(root *Node) Extents {
	e := Extents{
		MinX: root.X - root.XSize/2,
		MaxX: root.X + root.XSize/2,
		MinY: root.Y,
		MaxY: root.Y + root.YSizeInner,
	}
	root.Each(func(n *Node) {
		e.MinX = geo.Min(e.MinX, n.X-n.XSize/2)
		e.MaxX = geo.Max(e.MaxX, n.X+n.XSize/2)
		e.MinY = geo.Min(e.MinY, n.Y)
		e.MaxY = geo.Max(e.MaxY, n.Y+n.YSizeInner)
	})
	return e
}

// Each visits n and every positioned descendant depth-first.
func (n *Node) Each(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Each(visit)
	}
}

// Rect is the node's occupied rectangle in diagram coordinates:
// (main-axis, cross-axis) mapped to (x, y).
func (n *Node) Rect() *geo.Box {
	return geo.NewBox(geo.NewPoint(n.Y, n.X-n.XSize/2), n.YSizeInner, n.XSize)
}

// Pos is the node's top-left corner in diagram coordinates.
func (n *Node) Pos() *geo.Point {
	return geo.NewPoint(n.Y, n.X-n.XSize/2)
}

// Find returns the positioned node for the given content node, or nil if
// it is not part of this layout (folded away or removed).
func (t *Tree) Find(d *vmtree.Node) *Node {
	if t == nil || d == nil {
		return nil
	}
	var found *Node
	t.Root.Each(func(n *Node) {
		if found == nil && n.Data == d {
			found = n
		}
	})
	return found
}

// Width and Height of the layout in diagram coordinates.
func (e Extents) Width() float64  { return e.MaxY - e.MinY }
func (e Extents) Height() float64 { return e.MaxX - e.MinX }
