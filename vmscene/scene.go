// Package vmscene maintains the persistent visual scene for a diagram and
// reconciles it against each new layout with minimal, animated mutations.
// The scene is a retained SVG element tree; animations are recorded as
// SMIL children so a static export still shows the render's motion, and as
// interruptible tasks so in-flight transitions are superseded rather than
// queued when renders overlap.
package vmscene

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/vinemap/vinemap/lib/anim"
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmview"
)

const svgNS = "http://www.w3.org/2000/svg"

// Stats counts the enter/update/exit operations of the last reconcile.
type Stats struct {
	Entered int
	Updated int
	Exited  int
}

type nodeGroup struct {
	key string

	el        *etree.Element // <g class="vm-node">
	connector *etree.Element // <rect class="vm-connector">
	circle    *etree.Element // branch toggle, nil for leaves
	chevron   *etree.Element // description toggle, nil without description
	content   *etree.Element // <foreignObject class="vm-content">
	desc      *etree.Element // <p class="vm-desc">, nil while hidden

	// pos is the group's current diagram position (top-left).
	pos *geo.Point
}

type Scene struct {
	doc    *etree.Document
	svg    *etree.Element
	canvas *etree.Element

	edgeLayer *etree.Element
	nodeLayer *etree.Element
	// exitLayer holds this render's departing elements so an export still
	// shows their exit animation. Cleared at the start of the next render.
	exitLayer *etree.Element

	nodes map[string]*nodeGroup
	edges map[string]*etree.Element

	animator *anim.Animator
	stats    Stats
}

func NewScene(width, height float64) *Scene {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", svgNS)
	svg.CreateAttr("width", ftoa(width))
	svg.CreateAttr("height", ftoa(height))

	canvas := svg.CreateElement("g")
	canvas.CreateAttr("class", "vm-canvas")

	s := &Scene{
		doc:       doc,
		svg:       svg,
		canvas:    canvas,
		edgeLayer: canvas.CreateElement("g"),
		nodeLayer: canvas.CreateElement("g"),
		exitLayer: canvas.CreateElement("g"),
		nodes:     make(map[string]*nodeGroup),
		edges:     make(map[string]*etree.Element),
		animator:  anim.NewAnimator(),
	}
	s.edgeLayer.CreateAttr("class", "vm-edges")
	s.nodeLayer.CreateAttr("class", "vm-nodes")
	s.exitLayer.CreateAttr("class", "vm-exiting")
	return s
}

// Stats reports the operation counts of the last reconcile.
func (s *Scene) LastStats() Stats {
	return s.stats
}

// HasNode reports whether a node with the given identity key is rendered.
func (s *Scene) HasNode(key string) bool {
	_, ok := s.nodes[key]
	return ok
}

// HasEdge reports whether the incoming edge of the given child key is
// rendered.
func (s *Scene) HasEdge(childKey string) bool {
	_, ok := s.edges[childKey]
	return ok
}

// NodePosition returns the rendered diagram position of a node, or nil.
func (s *Scene) NodePosition(key string) *geo.Point {
	if ng, ok := s.nodes[key]; ok {
		return ng.pos.Copy()
	}
	return nil
}

// SetTransform applies a viewport transform to the canvas group.
func (s *Scene) SetTransform(t vmview.Transform, dur time.Duration) {
	val := fmt.Sprintf("translate(%s %s) scale(%s)", ftoa(t.X), ftoa(t.Y), ftoa(t.Scale))
	s.animate(s.canvas, "canvas", "transform", val, dur)
}

// Destroy interrupts every pending transition and empties the scene.
func (s *Scene) Destroy() {
	s.animator.StopAll()
	s.edgeLayer.Child = nil
	s.nodeLayer.Child = nil
	s.exitLayer.Child = nil
	s.nodes = make(map[string]*nodeGroup)
	s.edges = make(map[string]*etree.Element)
}

// SVG serializes the current scene.
func (s *Scene) SVG() ([]byte, error) {
	s.doc.Indent(2)
	return s.doc.WriteToBytes()
}

// animate sets attr to value and records a freezing SMIL transition from
// its previous value. Starting a new animation on the same element and
// attribute interrupts the pending one.
func (s *Scene) animate(el *etree.Element, id, attr, value string, dur time.Duration) *anim.Transition {
	from := el.SelectAttrValue(attr, "")
	el.RemoveAttr(attr)
	el.CreateAttr(attr, value)

	// drop the previous SMIL child for this attribute
	for _, name := range []string{"animate", "animateTransform"} {
		for _, child := range el.SelectElements(name) {
			if child.SelectAttrValue("attributeName", "") == attr {
				el.RemoveChild(child)
			}
		}
	}

	if dur > 0 && from != "" && from != value {
		if a := smilFor(attr, from, value); a != nil {
			a.CreateAttr("dur", fmt.Sprintf("%dms", dur.Milliseconds()))
			a.CreateAttr("fill", "freeze")
			el.AddChild(a)
		}
	}
	return s.animator.Start(id+"#"+attr, dur)
}

// smilFor builds the SMIL record for one attribute change, or nil when the
// change is not expressible as a single SMIL element (the compound canvas
// transform); the transition task still runs for those.
func smilFor(attr, from, to string) *etree.Element {
	if attr == "transform" {
		// A freeze-fill animateTransform would replace the whole transform
		// with its translate end state, dropping the scale component.
		if strings.Contains(from, "scale(") || strings.Contains(to, "scale(") {
			return nil
		}
		var fx, fy, tx, ty float64
		_, errF := fmt.Sscanf(from, "translate(%f %f)", &fx, &fy)
		_, errT := fmt.Sscanf(to, "translate(%f %f)", &tx, &ty)
		if errF != nil || errT != nil {
			return nil
		}
		a := etree.NewElement("animateTransform")
		a.CreateAttr("attributeName", "transform")
		a.CreateAttr("type", "translate")
		a.CreateAttr("from", fmt.Sprintf("%s %s", ftoa(fx), ftoa(fy)))
		a.CreateAttr("to", fmt.Sprintf("%s %s", ftoa(tx), ftoa(ty)))
		return a
	}
	a := etree.NewElement("animate")
	a.CreateAttr("attributeName", attr)
	a.CreateAttr("from", from)
	a.CreateAttr("to", to)
	return a
}

func ftoa(v float64) string {
	return fmt.Sprintf("%g", geo.TruncateDecimals(v))
}

func translate(p *geo.Point) string {
	return fmt.Sprintf("translate(%s %s)", ftoa(p.X), ftoa(p.Y))
}
