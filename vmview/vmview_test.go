package vmview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmlayout"
	"github.com/vinemap/vinemap/vmview"
)

var vp = vmview.Viewport{Width: 800, Height: 600}

func TestFitSingleNode(t *testing.T) {
	// a lone 100x20 node starting at the spacing corridor
	e := &vmlayout.Extents{MinX: -10, MaxX: 10, MinY: 80, MaxY: 180}

	tr, ok := vmview.Fit(e, vp, 0.95, 2)
	assert.True(t, ok)
	// both axis ratios allow more than maxScale, so the cap wins
	assert.Equal(t, 2., tr.Scale)

	// the node's rectangle ends up centered in the viewport
	rect := geo.NewBox(geo.NewPoint(e.MinY, e.MinX), e.Width(), e.Height())
	center := tr.ApplyBox(rect).Center()
	assert.InDelta(t, vp.Width/2, center.X, 1e-9)
	assert.InDelta(t, vp.Height/2, center.Y, 1e-9)
}

func TestFitRatioBound(t *testing.T) {
	// content wider than the viewport: fitRatio bounds the scale
	e := &vmlayout.Extents{MinX: 0, MaxX: 100, MinY: 0, MaxY: 4000}
	tr, ok := vmview.Fit(e, vp, 0.95, 2)
	assert.True(t, ok)
	assert.InDelta(t, 0.95*vp.Width/4000, tr.Scale, 1e-9)
}

func TestFitUndefinedExtents(t *testing.T) {
	_, ok := vmview.Fit(nil, vp, 0.95, 2)
	assert.False(t, ok)
}

func TestEnsureVisibleNoAdjustment(t *testing.T) {
	tr := vmview.Identity()
	rect := geo.NewBox(geo.NewPoint(100, 100), 50, 30)
	pad := vmview.Padding{Top: 10, Right: 10, Bottom: 10, Left: 10}
	assert.Equal(t, tr, vmview.EnsureVisible(tr, rect, vp, pad))
}

func TestEnsureVisiblePansLeftViolation(t *testing.T) {
	tr := vmview.Identity()
	rect := geo.NewBox(geo.NewPoint(-40, 100), 50, 30)
	pad := vmview.Padding{Left: 10}
	next := vmview.EnsureVisible(tr, rect, vp, pad)
	// shifted right so the rect's left edge lands on the padding line
	assert.Equal(t, 50., next.X)
	assert.Equal(t, 0., next.Y)
}

func TestEnsureVisibleUsesSmallerCorrection(t *testing.T) {
	// rect taller than the viewport: both edges violate, gentler delta wins
	tr := vmview.Identity()
	rect := geo.NewBox(geo.NewPoint(0, -20), 50, 700)
	pad := vmview.Padding{Top: 10, Bottom: 10}
	next := vmview.EnsureVisible(tr, rect, vp, pad)

	// top violation is +30, bottom violation is -90; +30 wins
	assert.Equal(t, tr.Y+30, next.Y)
}

func TestEnsureVisibleUnderZoom(t *testing.T) {
	tr := vmview.Transform{Scale: 2, X: 0, Y: 0}
	rect := geo.NewBox(geo.NewPoint(-30, 50), 20, 20)
	next := vmview.EnsureVisible(tr, rect, vp, vmview.Padding{})
	// screen-space left edge was at -60, pans by +60
	assert.Equal(t, 60., next.X)
}

func TestRescaleAtKeepsCenterFixed(t *testing.T) {
	tr := vmview.Transform{Scale: 1.5, X: 37, Y: -12}
	center := geo.NewPoint(vp.Width/2, vp.Height/2)

	// the diagram point currently under the center
	p := geo.NewPoint((center.X-tr.X)/tr.Scale, (center.Y-tr.Y)/tr.Scale)

	next := vmview.RescaleAt(tr, center, 1.8)
	assert.InDelta(t, 1.5*1.8, next.Scale, 1e-9)
	after := next.Apply(p)
	assert.InDelta(t, center.X, after.X, 1e-9)
	assert.InDelta(t, center.Y, after.Y, 1e-9)
}

func TestCameraInterrupt(t *testing.T) {
	c := vmview.NewCamera(vp)
	first := c.To(vmview.Transform{Scale: 1, X: 10}, time.Minute)
	second := c.Rescale(2, time.Millisecond)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded camera move did not resolve")
	}
	assert.True(t, first.Interrupted())
	<-second.Done()
	assert.Equal(t, 2., c.Transform().Scale)
}

func TestCameraFitNoExtentsIsNoop(t *testing.T) {
	c := vmview.NewCamera(vp)
	before := c.Transform()
	tr := c.Fit(nil, 0.95, 2, time.Minute)
	<-tr.Done()
	assert.Equal(t, before, c.Transform())
}
