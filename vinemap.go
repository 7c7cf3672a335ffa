// Package vinemap renders collapsible tree diagrams of outline content.
// It composes the render pipeline: vmprep measures and keys the content
// tree, vmlayout positions the visible nodes, vmscene reconciles the
// retained SVG scene against the new layout, and vmview frames the result
// in the viewport. A Mindmap instance owns one scene, one camera, and one
// interaction state; the content tree itself carries no interaction state
// and may back several instances.
package vinemap

import (
	"context"
	"sync"
	"time"

	"cdr.dev/slog"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/vinemap/vinemap/lib/anim"
	"github.com/vinemap/vinemap/lib/broadcast"
	"github.com/vinemap/vinemap/lib/color"
	"github.com/vinemap/vinemap/lib/log"
	"github.com/vinemap/vinemap/lib/textmeasure"
	"github.com/vinemap/vinemap/vmlayout"
	"github.com/vinemap/vinemap/vmprep"
	"github.com/vinemap/vinemap/vmscene"
	"github.com/vinemap/vinemap/vmtree"
	"github.com/vinemap/vinemap/vmview"
)

type Options struct {
	// Width and Height are the viewport extents in pixels.
	Width  float64
	Height float64

	// Duration is the length of every render and camera animation.
	Duration time.Duration

	// Font is the typeface the default measurer sizes node content with.
	Font textmeasure.Font

	// MinNodeHeight floors a node's title height so empty titles still
	// occupy a row.
	MinNodeHeight int
	// SpacingVertical separates sibling nodes; the gap doubles across
	// subtree boundaries.
	SpacingVertical float64
	// SpacingHorizontal is the corridor between a node and its children,
	// traversed by their edges.
	SpacingHorizontal float64
	// PaddingX pads node content horizontally on both sides.
	PaddingX float64

	// AutoFit refits the viewport after every render.
	AutoFit bool
	// FitRatio is the fraction of the viewport a fit may occupy.
	FitRatio float64
	// MaxScale caps the zoom a fit may reach.
	MaxScale float64
	// VisiblePadding is the margin EnsureVisible keeps around a node.
	VisiblePadding vmview.Padding

	// Color maps a node's per-render index to its branch color.
	Color color.Func
	// Hook may rewrite content fragments before measurement, e.g. to
	// syntax-highlight code blocks.
	Hook vmprep.TransformHook
	// Measurer overrides content measurement. Defaults to the built-in
	// font-metric measurer.
	Measurer vmprep.Measurer
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 800
	}
	if o.Height == 0 {
		o.Height = 600
	}
	if o.Duration == 0 {
		o.Duration = 500 * time.Millisecond
	}
	if o.Font == (textmeasure.Font{}) {
		o.Font = textmeasure.GoSans.Font(textmeasure.FONT_SIZE_M, textmeasure.FONT_STYLE_REGULAR)
	}
	if o.MinNodeHeight == 0 {
		o.MinNodeHeight = 20
	}
	if o.SpacingVertical == 0 {
		o.SpacingVertical = 5
	}
	if o.SpacingHorizontal == 0 {
		o.SpacingHorizontal = 80
	}
	if o.PaddingX == 0 {
		o.PaddingX = 8
	}
	if o.FitRatio == 0 {
		o.FitRatio = 0.95
	}
	if o.MaxScale == 0 {
		o.MaxScale = 2
	}
	if o.VisiblePadding == (vmview.Padding{}) {
		o.VisiblePadding = vmview.Padding{Top: 10, Right: 10, Bottom: 10, Left: 10}
	}
	if o.Color == nil {
		o.Color = color.OfIndex
	}
	return o
}

// Mindmap is one live diagram instance.
type Mindmap struct {
	mu sync.Mutex

	opts   Options
	root   *vmtree.Node
	state  *vmtree.State
	tree   *vmlayout.Tree
	scene  *vmscene.Scene
	camera *vmview.Camera

	dispose   broadcast.Disposer
	destroyed bool
}

func New(opts Options) (*Mindmap, error) {
	opts = opts.withDefaults()
	if opts.Measurer == nil {
		ruler, err := textmeasure.NewRuler()
		if err != nil {
			return nil, err
		}
		opts.Measurer = textmeasure.NewHTMLMeasurer(ruler, opts.Font)
	}

	m := &Mindmap{
		opts:   opts,
		state:  vmtree.NewState(),
		scene:  vmscene.NewScene(opts.Width, opts.Height),
		camera: vmview.NewCamera(vmview.Viewport{Width: opts.Width, Height: opts.Height}),
	}
	m.dispose = broadcast.Refresh().Register(func() {
		ctx := context.Background()
		if err := m.Render(ctx, nil); err != nil {
			log.Error(ctx, "refresh render failed", slog.F("err", err))
		}
	})
	return m, nil
}

// SetData replaces the content tree: measure and key every node, render,
// and, when enabled, refit the viewport. A nil root empties the diagram
// but keeps the instance alive.
func (m *Mindmap) SetData(ctx context.Context, root *vmtree.Node) (err error) {
	defer xdefer.Errorf(&err, "failed to set diagram data")

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}

	if root == nil {
		m.root = nil
		m.tree = nil
		m.scene.Destroy()
		return nil
	}

	err = vmprep.Prepare(ctx, root, m.state, m.opts.Measurer, vmprep.Options{
		MinNodeHeight: m.opts.MinNodeHeight,
		Hook:          m.opts.Hook,
	})
	if err != nil {
		return err
	}
	m.root = root
	return m.render(ctx, nil)
}

// SetOptions swaps the render options. The next render picks them up; the
// measurer, its font, and the viewport of the instance are fixed at
// construction.
func (m *Mindmap) SetOptions(opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	opts = opts.withDefaults()
	opts.Width = m.opts.Width
	opts.Height = m.opts.Height
	opts.Measurer = m.opts.Measurer
	opts.Font = m.opts.Font
	m.opts = opts
}

// Render lays out the current tree and reconciles the scene. origin
// anchors enter and exit animations; nil anchors them at the root.
func (m *Mindmap) Render(ctx context.Context, origin *vmtree.Node) (err error) {
	defer xdefer.Errorf(&err, "failed to render diagram")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil
	}
	return m.render(ctx, origin)
}

func (m *Mindmap) render(ctx context.Context, origin *vmtree.Node) error {
	if m.root == nil {
		return nil
	}
	tree := vmlayout.Layout(m.root, m.state, vmlayout.Options{
		SpacingH: m.opts.SpacingHorizontal,
		SpacingV: m.opts.SpacingVertical,
		PaddingX: m.opts.PaddingX,
	})
	m.scene.Reconcile(ctx, tree, origin, vmscene.Options{
		Duration:   m.opts.Duration,
		Color:      m.opts.Color,
		PaddingX:   m.opts.PaddingX,
		DescHidden: func(k string) bool { return m.state.Get(k).DescHidden },
		Folded:     func(k string) bool { return m.state.Get(k).Folded },
	})
	m.tree = tree

	if m.opts.AutoFit {
		m.camera.Fit(&tree.Extents, m.opts.FitRatio, m.opts.MaxScale, m.opts.Duration)
		m.applyCamera(m.opts.Duration)
	}
	return nil
}

// ToggleFold flips whether n's children are visible and re-renders with n
// as the animation origin. With recursive set, n's new state is pushed
// onto every collapsible descendant. Toggling a leaf is a no-op.
func (m *Mindmap) ToggleFold(ctx context.Context, n *vmtree.Node, recursive bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || n == nil || !n.HasChildren() {
		return nil
	}

	st := m.state.ToggleFold(n.Key)
	if recursive {
		vmtree.Walk(n, func(d, _ *vmtree.Node) {
			if d != n && d.HasChildren() {
				m.state.SetFolded(d.Key, st.Folded)
			}
		})
	}
	if err := m.render(ctx, n); err != nil {
		return err
	}
	m.ensureVisible(n, nil)
	return nil
}

// ToggleDescription flips the visibility of n's description paragraph and
// re-renders with n as the origin. Nodes without a description are a no-op.
func (m *Mindmap) ToggleDescription(ctx context.Context, n *vmtree.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || n == nil || !n.HasDescription() {
		return nil
	}

	m.state.ToggleDescHidden(n.Key)
	if err := m.render(ctx, n); err != nil {
		return err
	}
	m.ensureVisible(n, nil)
	return nil
}

// Fit frames the whole diagram in the viewport.
func (m *Mindmap) Fit() *anim.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed || m.tree == nil {
		return anim.Settled()
	}
	tr := m.camera.Fit(&m.tree.Extents, m.opts.FitRatio, m.opts.MaxScale, m.opts.Duration)
	m.applyCamera(m.opts.Duration)
	return tr
}

// EnsureVisible pans just enough to bring n into the padded viewport.
// A nil pad uses the configured VisiblePadding.
func (m *Mindmap) EnsureVisible(n *vmtree.Node, pad *vmview.Padding) *anim.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return anim.Settled()
	}
	return m.ensureVisible(n, pad)
}

func (m *Mindmap) ensureVisible(n *vmtree.Node, pad *vmview.Padding) *anim.Transition {
	ln := m.tree.Find(n)
	if ln == nil {
		return anim.Settled()
	}
	if pad == nil {
		pad = &m.opts.VisiblePadding
	}
	tr := m.camera.EnsureVisible(ln.Rect(), *pad, m.opts.Duration)
	m.applyCamera(m.opts.Duration)
	return tr
}

// Rescale zooms by factor pinned at the viewport center.
func (m *Mindmap) Rescale(factor float64) *anim.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return anim.Settled()
	}
	tr := m.camera.Rescale(factor, m.opts.Duration)
	m.applyCamera(m.opts.Duration)
	return tr
}

func (m *Mindmap) applyCamera(dur time.Duration) {
	m.scene.SetTransform(m.camera.Transform(), dur)
}

// Transform is the current viewport transform.
func (m *Mindmap) Transform() vmview.Transform {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.camera.Transform()
}

// Root is the current content tree, nil before SetData.
func (m *Mindmap) Root() *vmtree.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// FindNode resolves an identity key against the current tree.
func (m *Mindmap) FindNode(key string) *vmtree.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil {
		return nil
	}
	return m.root.Find(key)
}

// SVG serializes the scene, including the last render's animations.
func (m *Mindmap) SVG() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scene.SVG()
}

// Destroy interrupts pending animations, empties the scene, and detaches
// the instance from the refresh registry. Safe to call more than once.
func (m *Mindmap) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.dispose()
	m.camera.Stop()
	m.scene.Destroy()
	m.root = nil
	m.tree = nil
}
