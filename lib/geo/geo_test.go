package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxUnion(t *testing.T) {
	b := NewBox(NewPoint(0, 0), 10, 10)
	b.Union(NewBox(NewPoint(-5, 2), 3, 20))
	assert.Equal(t, -5., b.TopLeft.X)
	assert.Equal(t, 0., b.TopLeft.Y)
	assert.Equal(t, 15., b.Width)
	assert.Equal(t, 22., b.Height)

	b2 := NewBox(NewPoint(1, 1), 2, 2)
	b2.Union(nil)
	assert.Equal(t, 2., b2.Width)
}

func TestBoxContains(t *testing.T) {
	b := NewBox(NewPoint(10, 20), 30, 40)
	assert.True(t, b.Contains(NewPoint(10, 20)))
	assert.True(t, b.Contains(b.Center()))
	assert.False(t, b.Contains(NewPoint(41, 20)))
	assert.False(t, b.Contains(NewPoint(10, 61)))
}

func TestBoxCopy(t *testing.T) {
	b := NewBox(NewPoint(1, 2), 3, 4)
	c := b.Copy()
	c.TopLeft.X = 9
	assert.Equal(t, 1., b.TopLeft.X)
	assert.Nil(t, (*Box)(nil).Copy())
}

func TestAbsMin(t *testing.T) {
	assert.Equal(t, -2., AbsMin(-2, 5))
	assert.Equal(t, 1., AbsMin(-3, 1))
	assert.Equal(t, 0., AbsMin(0, -1))
}

func TestEdgeWidth(t *testing.T) {
	assert.Equal(t, 6., EdgeWidth(0))
	assert.Equal(t, 4., EdgeWidth(1))
	assert.Equal(t, 2., EdgeWidth(2))
	// floor
	assert.Equal(t, 1.5, EdgeWidth(3))
	assert.Equal(t, 1.5, EdgeWidth(10))
}

func TestChevronPoints(t *testing.T) {
	hidden := ChevronPoints(0, 0, 8, true)
	shown := ChevronPoints(0, 0, 8, false)
	assert.Len(t, hidden, 3)
	assert.Len(t, shown, 3)
	// hidden points right: apex has the max X
	assert.Equal(t, 4., hidden[1].X)
	assert.Equal(t, 0., hidden[1].Y)
	// shown points down: apex has the max Y
	assert.Equal(t, 0., shown[2].X)
	assert.Equal(t, 4., shown[2].Y)
}
