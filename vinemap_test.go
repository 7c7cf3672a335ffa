package vinemap_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinemap/vinemap"
	"github.com/vinemap/vinemap/lib/broadcast"
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/lib/textmeasure"
	"github.com/vinemap/vinemap/vmtree"
	"github.com/vinemap/vinemap/vmview"
)

type charMeasurer struct{}

func (charMeasurer) Measure(markup string) (geo.Size, error) {
	return geo.Size{Width: 7 * len(markup), Height: 20}, nil
}

func newMindmap(t *testing.T, opts vinemap.Options) *vinemap.Mindmap {
	t.Helper()
	opts.Measurer = charMeasurer{}
	opts.Duration = time.Millisecond
	m, err := vinemap.New(opts)
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	return m
}

func sampleData() *vmtree.Node {
	return &vmtree.Node{
		Title: "root",
		Children: []*vmtree.Node{
			{
				Title: "A",
				Children: []*vmtree.Node{
					{Title: "A1", Children: []*vmtree.Node{{Title: "A1a"}}},
					{Title: "A2"},
				},
			},
			{Title: "B", Description: "about B"},
		},
	}
}

func TestSetDataRenders(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))

	svg, err := m.SVG()
	require.NoError(t, err)
	out := string(svg)
	for _, title := range []string{"root", "A1a", "B"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, `class="vm-edge"`)
}

func TestSetDataNilEmptiesDiagram(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))
	require.NoError(t, m.SetData(ctx, nil))

	svg, err := m.SVG()
	require.NoError(t, err)
	assert.NotContains(t, string(svg), `class="vm-node"`)
	assert.Nil(t, m.Root())
}

func TestToggleFold(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))

	a := m.Root().Children[0]
	require.NoError(t, m.ToggleFold(ctx, a, false))
	// one more render flushes the exit layer
	require.NoError(t, m.Render(ctx, nil))

	svg, err := m.SVG()
	require.NoError(t, err)
	out := string(svg)
	assert.NotContains(t, out, a.Children[0].Key)
	assert.Contains(t, out, a.Key)

	require.NoError(t, m.ToggleFold(ctx, a, false))
	svg, err = m.SVG()
	require.NoError(t, err)
	assert.Contains(t, string(svg), a.Children[0].Key)
}

func TestToggleFoldRecursive(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))

	a := m.Root().Children[0]
	a1 := a.Children[0]

	// fold the subtree recursively, then unfold only the top: the nested
	// fold must persist
	require.NoError(t, m.ToggleFold(ctx, a, true))
	require.NoError(t, m.ToggleFold(ctx, a, false))
	require.NoError(t, m.Render(ctx, nil))

	svg, err := m.SVG()
	require.NoError(t, err)
	out := string(svg)
	assert.Contains(t, out, a1.Key)
	assert.NotContains(t, out, a1.Children[0].Key)
}

func TestToggleFoldLeafNoop(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))

	leaf := m.Root().Children[0].Children[1]
	before, err := m.SVG()
	require.NoError(t, err)
	require.NoError(t, m.ToggleFold(ctx, leaf, false))
	after, err := m.SVG()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestToggleDescription(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(ctx, sampleData()))

	svg, err := m.SVG()
	require.NoError(t, err)
	assert.Contains(t, string(svg), `class="vm-desc"`)

	b := m.Root().Children[1]
	require.NoError(t, m.ToggleDescription(ctx, b))
	svg, err = m.SVG()
	require.NoError(t, err)
	assert.NotContains(t, string(svg), `class="vm-desc"`)

	// no description, no toggle
	require.NoError(t, m.ToggleDescription(ctx, m.Root().Children[0]))
	after, err := m.SVG()
	require.NoError(t, err)
	assert.Equal(t, string(svg), string(after))
}

func TestAutoFit(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{AutoFit: true})
	require.NoError(t, m.SetData(ctx, sampleData()))

	tr := m.Transform()
	assert.NotZero(t, tr.Scale)
	svg, err := m.SVG()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "scale("))
}

func TestEnsureVisiblePans(t *testing.T) {
	ctx := context.Background()
	m := newMindmap(t, vinemap.Options{Width: 200, Height: 150})
	require.NoError(t, m.SetData(ctx, sampleData()))

	// the deepest node sits past the right edge of a 200px viewport
	deep := m.Root().Children[0].Children[0].Children[0]
	<-m.EnsureVisible(deep, nil).Done()
	assert.Negative(t, m.Transform().X)

	// once visible, an explicit zero padding needs no further adjustment
	before := m.Transform()
	<-m.EnsureVisible(deep, &vmview.Padding{}).Done()
	assert.Equal(t, before, m.Transform())
}

func TestRescale(t *testing.T) {
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(context.Background(), sampleData()))

	before := m.Transform().Scale
	<-m.Rescale(1.25).Done()
	assert.InDelta(t, before*1.25, m.Transform().Scale, 1e-9)
}

func TestFontOption(t *testing.T) {
	ctx := context.Background()
	render := func(f textmeasure.Font) string {
		m, err := vinemap.New(vinemap.Options{Font: f, Duration: time.Millisecond})
		require.NoError(t, err)
		t.Cleanup(m.Destroy)
		require.NoError(t, m.SetData(ctx, &vmtree.Node{Title: "measure me"}))
		svg, err := m.SVG()
		require.NoError(t, err)
		return string(svg)
	}

	large := textmeasure.GoSans.Font(textmeasure.FONT_SIZE_L, textmeasure.FONT_STYLE_REGULAR)
	out := render(large)

	// the connector spans the measured title plus the horizontal padding
	ruler, err := textmeasure.NewRuler()
	require.NoError(t, err)
	want, err := textmeasure.NewHTMLMeasurer(ruler, large).Measure("measure me")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf(`width="%d"`, want.Width+16))

	// a smaller face measures a narrower node
	small := render(textmeasure.GoSans.Font(textmeasure.FONT_SIZE_S, textmeasure.FONT_STYLE_REGULAR))
	assert.NotEqual(t, out, small)
}

func TestFindNode(t *testing.T) {
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(context.Background(), sampleData()))

	b := m.Root().Children[1]
	assert.Same(t, b, m.FindNode(b.Key))
	assert.Nil(t, m.FindNode("no-such-key"))
}

func TestDestroyIdempotent(t *testing.T) {
	m := newMindmap(t, vinemap.Options{})
	require.NoError(t, m.SetData(context.Background(), sampleData()))

	before := broadcast.Refresh().Len()
	m.Destroy()
	assert.Equal(t, before-1, broadcast.Refresh().Len())
	m.Destroy()
	assert.Equal(t, before-1, broadcast.Refresh().Len())

	// destroyed instances ignore further operations
	require.NoError(t, m.SetData(context.Background(), sampleData()))
	assert.Nil(t, m.Root())
	broadcast.Refresh().Notify()
}
