package vmview

import (
	"time"

	"github.com/vinemap/vinemap/lib/anim"
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmlayout"
)

// Camera owns the current viewport transform. Every move returns a
// transition that settles after the animation duration; a newer move on
// the camera interrupts the pending one, whose awaiter still resolves
// normally.
type Camera struct {
	vp       Viewport
	cur      Transform
	animator *anim.Animator
}

func NewCamera(vp Viewport) *Camera {
	return &Camera{
		vp:       vp,
		cur:      Identity(),
		animator: anim.NewAnimator(),
	}
}

func (c *Camera) Viewport() Viewport {
	return c.vp
}

func (c *Camera) Transform() Transform {
	return c.cur
}

// To moves the camera to an explicit transform.
func (c *Camera) To(t Transform, dur time.Duration) *anim.Transition {
	c.cur = t
	return c.animator.Start("camera", dur)
}

// Fit frames the whole layout. With undefined extents it is a settled
// no-op rather than an error.
func (c *Camera) Fit(e *vmlayout.Extents, fitRatio, maxScale float64, dur time.Duration) *anim.Transition {
	t, ok := Fit(e, c.vp, fitRatio, maxScale)
	if !ok {
		return anim.Settled()
	}
	return c.To(t, dur)
}

// EnsureVisible pans just enough to honor pad around rect.
func (c *Camera) EnsureVisible(rect *geo.Box, pad Padding, dur time.Duration) *anim.Transition {
	next := EnsureVisible(c.cur, rect, c.vp, pad)
	if next == c.cur {
		return anim.Settled()
	}
	return c.To(next, dur)
}

// Rescale zooms by factor pinned at the viewport center.
func (c *Camera) Rescale(factor float64, dur time.Duration) *anim.Transition {
	center := geo.NewPoint(c.vp.Width/2, c.vp.Height/2)
	return c.To(RescaleAt(c.cur, center, factor), dur)
}

// Stop interrupts any in-flight camera transition.
func (c *Camera) Stop() {
	c.animator.StopAll()
}
