package vmscene

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/vinemap/vinemap/lib/color"
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/lib/xmath"
	"github.com/vinemap/vinemap/vmlayout"
)

// reconcileEdges diffs the parent-child links. An edge is keyed by its
// child, the only node with exactly one incoming link, so a child keeps
// its edge across repositions.
func (s *Scene) reconcileEdges(flat []*vmlayout.Node, anchorIn, anchorOut *geo.Point, opts Options) {
	children := xmath.Filter(flat, func(n *vmlayout.Node) bool { return n.Parent != nil })

	j := NewJoin(s.edges, children, func(n *vmlayout.Node) string { return n.Data.Key })

	for _, n := range j.Enter {
		el := etree.NewElement("path")
		el.CreateAttr("class", "vm-edge")
		el.CreateAttr("data-key", n.Data.Key)
		el.CreateAttr("fill", "none")
		el.CreateAttr("stroke", edgeStroke(opts.Color(n.Data.Index)))
		el.CreateAttr("stroke-width", ftoa(geo.EdgeWidth(n.Data.Depth)))
		// born as a zero-length link at the origin, unfurled into place
		el.CreateAttr("d", edgePath(anchorIn, anchorIn))
		s.edgeLayer.AddChild(el)
		s.edges[n.Data.Key] = el

		src, dst := edgeEndpoints(n)
		s.animate(el, "edge/"+n.Data.Key, "d", edgePath(src, dst), opts.Duration)
	}
	for _, p := range j.Update {
		src, dst := edgeEndpoints(p.Data)
		s.animate(p.El, "edge/"+p.Data.Data.Key, "d", edgePath(src, dst), opts.Duration)
	}
	for key, el := range j.Exit {
		s.animate(el, "edge/"+key, "d", edgePath(anchorOut, anchorOut), opts.Duration)
		s.edgeLayer.RemoveChild(el)
		s.exitLayer.AddChild(el)
		delete(s.edges, key)
	}
}

// edgeStroke darkens the node color so the link sits visually behind the
// node's connector. A color the parser rejects is used as-is.
func edgeStroke(c string) string {
	dark, err := color.Darken(c)
	if err != nil {
		return c
	}
	return dark
}

// edgeEndpoints computes where a child's incoming link attaches: the right
// end of the parent's connector line and the left end of the child's.
func edgeEndpoints(n *vmlayout.Node) (src, dst *geo.Point) {
	pp := n.Parent.Pos()
	cp := n.Pos()
	src = geo.NewPoint(pp.X+n.Parent.YSizeInner, pp.Y+n.Parent.XSize)
	dst = geo.NewPoint(cp.X, cp.Y+n.XSize)
	return src, dst
}

// edgePath renders a cubic with horizontal tangents at both ends.
func edgePath(src, dst *geo.Point) string {
	mx := (src.X + dst.X) / 2
	return fmt.Sprintf("M%s,%s C%s,%s %s,%s %s,%s",
		ftoa(src.X), ftoa(src.Y),
		ftoa(mx), ftoa(src.Y),
		ftoa(mx), ftoa(dst.Y),
		ftoa(dst.X), ftoa(dst.Y),
	)
}
