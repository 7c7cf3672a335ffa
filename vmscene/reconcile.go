package vmscene

import (
	"context"
	"time"

	"cdr.dev/slog"
	"github.com/beevik/etree"

	"github.com/vinemap/vinemap/lib/color"
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/lib/log"
	"github.com/vinemap/vinemap/vmlayout"
	"github.com/vinemap/vinemap/vmtree"
)

const toggleRadius = 6

type Options struct {
	Duration time.Duration
	Color    color.Func
	PaddingX float64
	// DescHidden reports the current description visibility for a key.
	DescHidden func(key string) bool
	// Folded reports the current fold state for a key.
	Folded func(key string) bool
}

// Reconcile diffs the new layout against the rendered scene and applies
// minimal, animated mutations. origin anchors entering and exiting
// elements; when nil, or no longer part of the layout, the tree root
// anchors them instead. A nil tree skips the render entirely.
func (s *Scene) Reconcile(ctx context.Context, tree *vmlayout.Tree, origin *vmtree.Node, opts Options) {
	if tree == nil || tree.Root == nil {
		return
	}
	if opts.Color == nil {
		opts.Color = color.OfIndex
	}
	if opts.DescHidden == nil {
		opts.DescHidden = func(string) bool { return true }
	}
	if opts.Folded == nil {
		opts.Folded = func(string) bool { return false }
	}

	s.stats = Stats{}
	s.exitLayer.Child = nil

	var flat []*vmlayout.Node
	tree.Root.Each(func(n *vmlayout.Node) { flat = append(flat, n) })

	o := tree.Find(origin)
	if o == nil {
		o = tree.Root
	}
	// Entering elements start from the origin's previous position when one
	// is known, so an expand grows out of where the user clicked; exiting
	// ones collapse to the origin's new position.
	anchorIn := o.Pos()
	if o.Data.LastPos != nil {
		anchorIn = o.Data.LastPos.Copy()
	}
	anchorOut := o.Pos()
	// edges collapse onto the right end of the origin's connector line
	edgeAnchorIn := geo.NewPoint(anchorIn.X+o.YSizeInner, anchorIn.Y+o.XSize)
	edgeAnchorOut := geo.NewPoint(anchorOut.X+o.YSizeInner, anchorOut.Y+o.XSize)

	s.reconcileNodes(flat, anchorIn, anchorOut, opts)
	s.reconcileEdges(flat, edgeAnchorIn, edgeAnchorOut, opts)

	// Final positions become the next render's default animation origin.
	for _, n := range flat {
		n.Data.LastPos = n.Pos()
	}

	log.Debug(ctx, "reconciled scene",
		slog.F("entered", s.stats.Entered),
		slog.F("updated", s.stats.Updated),
		slog.F("exited", s.stats.Exited),
	)
}

func (s *Scene) reconcileNodes(flat []*vmlayout.Node, anchorIn, anchorOut *geo.Point, opts Options) {
	j := NewJoin(s.nodes, flat, func(n *vmlayout.Node) string { return n.Data.Key })

	for _, n := range j.Enter {
		s.enterNode(n, anchorIn, opts)
		s.stats.Entered++
	}
	for _, p := range j.Update {
		s.updateNode(p.El, p.Data, opts)
		s.stats.Updated++
	}
	for key, ng := range j.Exit {
		s.exitNode(ng, anchorOut, opts)
		delete(s.nodes, key)
		s.stats.Exited++
	}
}

func (s *Scene) enterNode(n *vmlayout.Node, anchorIn *geo.Point, opts Options) {
	key := n.Data.Key
	c := opts.Color(n.Data.Index)
	strokeW := geo.EdgeWidth(n.Data.Depth)

	el := etree.NewElement("g")
	el.CreateAttr("class", "vm-node")
	el.CreateAttr("data-key", key)
	// created off-screen at the origin, translated into place
	el.CreateAttr("transform", translate(anchorIn))
	s.nodeLayer.AddChild(el)

	ng := &nodeGroup{key: key, el: el, pos: anchorIn.Copy()}
	s.nodes[key] = ng

	ng.connector = etree.NewElement("rect")
	ng.connector.CreateAttr("class", "vm-connector")
	ng.connector.CreateAttr("x", "0")
	ng.connector.CreateAttr("y", ftoa(n.XSize-strokeW))
	ng.connector.CreateAttr("height", ftoa(strokeW))
	ng.connector.CreateAttr("width", "0")
	ng.connector.CreateAttr("fill", c)
	ng.connector.CreateAttr("opacity", "0")
	el.AddChild(ng.connector)

	ng.content = etree.NewElement("foreignObject")
	ng.content.CreateAttr("class", "vm-content")
	ng.content.CreateAttr("x", ftoa(opts.PaddingX))
	ng.content.CreateAttr("y", "0")
	ng.content.CreateAttr("height", ftoa(n.XSize))
	ng.content.CreateAttr("width", "0")
	ng.content.CreateAttr("opacity", "0")
	title := ng.content.CreateElement("div")
	title.CreateAttr("class", "vm-title")
	title.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	appendMarkup(title, n.Data.Title)
	el.AddChild(ng.content)

	if n.Data.HasChildren() {
		ng.circle = etree.NewElement("circle")
		ng.circle.CreateAttr("class", "vm-toggle")
		ng.circle.CreateAttr("cx", ftoa(n.YSizeInner))
		ng.circle.CreateAttr("cy", ftoa(n.XSize))
		ng.circle.CreateAttr("r", "0")
		ng.circle.CreateAttr("stroke", c)
		ng.circle.CreateAttr("stroke-width", "1.5")
		el.AddChild(ng.circle)
	}

	if n.Data.HasDescription() {
		ng.chevron = etree.NewElement("polygon")
		ng.chevron.CreateAttr("class", "vm-desc-toggle")
		ng.chevron.CreateAttr("fill", c)
		el.AddChild(ng.chevron)
	}

	// animate into place
	s.animate(el, key, "transform", translate(n.Pos()), opts.Duration)
	ng.pos = n.Pos()
	s.animate(ng.connector, key+"/connector", "width", ftoa(n.YSizeInner), opts.Duration)
	s.animate(ng.connector, key+"/connector", "opacity", "1", opts.Duration)
	s.animate(ng.content, key+"/content", "width", ftoa(contentWidth(n, opts)), opts.Duration)
	s.animate(ng.content, key+"/content", "opacity", "1", opts.Duration)
	if ng.circle != nil {
		s.animate(ng.circle, key+"/toggle", "r", ftoa(toggleRadius), opts.Duration)
		s.setToggleFill(ng, n, opts)
	}
	if ng.chevron != nil {
		s.setChevron(ng, n, opts)
	}
	s.reconcileDesc(ng, n, opts)
}

func (s *Scene) updateNode(ng *nodeGroup, n *vmlayout.Node, opts Options) {
	key := ng.key
	s.animate(ng.el, key, "transform", translate(n.Pos()), opts.Duration)
	ng.pos = n.Pos()

	// the connector line and toggle track the node's bottom edge, which
	// moves when the description is shown or hidden
	strokeW := geo.EdgeWidth(n.Data.Depth)
	s.animate(ng.connector, key+"/connector", "width", ftoa(n.YSizeInner), opts.Duration)
	s.animate(ng.connector, key+"/connector", "y", ftoa(n.XSize-strokeW), opts.Duration)
	s.animate(ng.content, key+"/content", "width", ftoa(contentWidth(n, opts)), opts.Duration)
	s.animate(ng.content, key+"/content", "height", ftoa(n.XSize), opts.Duration)

	if ng.circle != nil {
		s.animate(ng.circle, key+"/toggle", "cy", ftoa(n.XSize), opts.Duration)
		s.setToggleFill(ng, n, opts)
	}
	// the chevron's shape encodes hidden/shown, so it is recomputed on
	// update as well: toggling changes it in place without re-entering
	if ng.chevron != nil {
		s.setChevron(ng, n, opts)
	}
	s.reconcileDesc(ng, n, opts)
}

func (s *Scene) exitNode(ng *nodeGroup, anchorOut *geo.Point, opts Options) {
	key := ng.key
	// collapse back into the origin: slide over, shrink the connector,
	// fade the toggle
	s.animate(ng.el, key, "transform", translate(anchorOut), opts.Duration)
	s.animate(ng.connector, key+"/connector", "width", "0", opts.Duration)
	if ng.circle != nil {
		s.animate(ng.circle, key+"/toggle", "opacity", "0", opts.Duration)
	}

	s.nodeLayer.RemoveChild(ng.el)
	s.exitLayer.AddChild(ng.el)
}

// reconcileDesc manages the nested description paragraph: present only
// while shown, faded in and out, never position-animated.
func (s *Scene) reconcileDesc(ng *nodeGroup, n *vmlayout.Node, opts Options) {
	show := n.Data.HasDescription() && !opts.DescHidden(n.Data.Key)
	switch {
	case show && ng.desc == nil:
		ng.desc = etree.NewElement("p")
		ng.desc.CreateAttr("class", "vm-desc")
		ng.desc.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
		ng.desc.CreateAttr("opacity", "0")
		appendMarkup(ng.desc, n.Data.Description)
		ng.content.AddChild(ng.desc)
		s.animate(ng.desc, ng.key+"/desc", "opacity", "1", opts.Duration)
	case !show && ng.desc != nil:
		s.animate(ng.desc, ng.key+"/desc", "opacity", "0", opts.Duration)
		ng.content.RemoveChild(ng.desc)
		ng.desc = nil
	}
}

func (s *Scene) setToggleFill(ng *nodeGroup, n *vmlayout.Node, opts Options) {
	// filled circle flags hidden children; expanded nodes show an outline
	fill := "#fff"
	if opts.Folded(n.Data.Key) {
		fill = opts.Color(n.Data.Index)
	}
	ng.circle.RemoveAttr("fill")
	ng.circle.CreateAttr("fill", fill)
}

func (s *Scene) setChevron(ng *nodeGroup, n *vmlayout.Node, opts Options) {
	cx := n.YSizeInner - toggleRadius
	cy := float64(n.Data.TitleSize.Height) / 2
	pts := geo.ChevronPoints(cx, cy, 8, opts.DescHidden(n.Data.Key))
	val := ""
	for i, p := range pts {
		if i > 0 {
			val += " "
		}
		val += p.FormattedCoordinates()
	}
	ng.chevron.RemoveAttr("points")
	ng.chevron.CreateAttr("points", val)
}

func contentWidth(n *vmlayout.Node, opts Options) float64 {
	return geo.Max(n.YSizeInner-2*opts.PaddingX, 0)
}

// appendMarkup parses an XHTML fragment into el as real child nodes, so
// rich titles and descriptions stay elements in the serialized scene. A
// fragment that is not well-formed XML is kept as character data instead of
// being dropped.
func appendMarkup(el *etree.Element, markup string) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<f>" + markup + "</f>"); err != nil {
		el.AddChild(etree.NewCData(markup))
		return
	}
	children := append([]etree.Token(nil), doc.Root().Child...)
	for _, c := range children {
		el.AddChild(c)
	}
}
