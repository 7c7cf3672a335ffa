package geo

import "fmt"

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Contains(p *Point) bool {
	return b.TopLeft.X <= p.X && p.X <= b.TopLeft.X+b.Width &&
		b.TopLeft.Y <= p.Y && p.Y <= b.TopLeft.Y+b.Height
}

// Union grows b in place to cover other.
func (b *Box) Union(other *Box) {
	if other == nil {
		return
	}
	minX := Min(b.TopLeft.X, other.TopLeft.X)
	minY := Min(b.TopLeft.Y, other.TopLeft.Y)
	maxX := Max(b.TopLeft.X+b.Width, other.TopLeft.X+other.Width)
	maxY := Max(b.TopLeft.Y+b.Height, other.TopLeft.Y+other.Height)
	b.TopLeft.X = minX
	b.TopLeft.Y = minY
	b.Width = maxX - minX
	b.Height = maxY - minY
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}
