// Package vmview computes pan/zoom transforms over a laid-out diagram:
// fit everything, bring one node into view, or rescale around the
// viewport center. The arithmetic is pure; the Camera owns the current
// transform and hands out awaitable transitions for each move.
package vmview

import (
	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmlayout"
)

// Transform maps diagram coordinates to screen coordinates:
// screen = diagram*Scale + (X, Y).
type Transform struct {
	Scale float64
	X     float64
	Y     float64
}

func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a diagram point to screen space.
func (t Transform) Apply(p *geo.Point) *geo.Point {
	return geo.NewPoint(p.X*t.Scale+t.X, p.Y*t.Scale+t.Y)
}

// ApplyBox maps a diagram rectangle to screen space.
func (t Transform) ApplyBox(b *geo.Box) *geo.Box {
	return geo.NewBox(t.Apply(b.TopLeft), b.Width*t.Scale, b.Height*t.Scale)
}

// Viewport is the visible pixel area.
type Viewport struct {
	Width  float64
	Height float64
}

// Padding is the required clearance per side for EnsureVisible.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Fit computes the transform that centers the extents in the viewport at
// the largest scale, capped at maxScale, where the scaled content spans at
// most fitRatio of the viewport on both axes. The second return is false
// when there is nothing to fit.
func Fit(e *vmlayout.Extents, vp Viewport, fitRatio, maxScale float64) (Transform, bool) {
	if e == nil || vp.Width <= 0 || vp.Height <= 0 {
		return Identity(), false
	}
	w, h := e.Width(), e.Height()
	if w <= 0 && h <= 0 {
		return Identity(), false
	}

	scale := maxScale
	if w > 0 {
		scale = geo.Min(scale, fitRatio*vp.Width/w)
	}
	if h > 0 {
		scale = geo.Min(scale, fitRatio*vp.Height/h)
	}

	return Transform{
		Scale: scale,
		X:     (vp.Width-w*scale)/2 - e.MinY*scale,
		Y:     (vp.Height-h*scale)/2 - e.MinX*scale,
	}, true
}

// EnsureVisible translates t just enough that rect (diagram coordinates)
// satisfies the padding constraints. An axis already in bounds is left
// alone; when a rectangle violates both edges of an axis the smaller
// correction wins, so an oversized rectangle is never yanked across the
// viewport.
func EnsureVisible(t Transform, rect *geo.Box, vp Viewport, pad Padding) Transform {
	screen := t.ApplyBox(rect)

	dx := axisDelta(screen.TopLeft.X, screen.TopLeft.X+screen.Width, pad.Left, pad.Right, vp.Width)
	dy := axisDelta(screen.TopLeft.Y, screen.TopLeft.Y+screen.Height, pad.Top, pad.Bottom, vp.Height)

	t.X += dx
	t.Y += dy
	return t
}

func axisDelta(lo, hi, padLo, padHi, span float64) float64 {
	dLo := padLo - lo         // positive when the low edge is out of bounds
	dHi := (span - padHi) - hi // negative when the high edge is out of bounds
	switch {
	case dLo > 0 && dHi < 0:
		return geo.AbsMin(dLo, dHi)
	case dLo > 0:
		return dLo
	case dHi < 0:
		return dHi
	}
	return 0
}

// RescaleAt multiplies the scale by factor while keeping the given screen
// point (normally the viewport center) visually fixed.
func RescaleAt(t Transform, center *geo.Point, factor float64) Transform {
	return Transform{
		Scale: t.Scale * factor,
		X:     center.X - (center.X-t.X)*factor,
		Y:     center.Y - (center.Y-t.Y)*factor,
	}
}
