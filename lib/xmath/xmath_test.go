package xmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinemap/vinemap/lib/xmath"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, xmath.Min(2, 7))
	assert.Equal(t, 7, xmath.Max(2, 7))
	assert.Equal(t, -1.5, xmath.Min(-1.5, 0.))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, xmath.Clamp(1, 3, 9))
	assert.Equal(t, 9, xmath.Clamp(12, 3, 9))
	assert.Equal(t, 5, xmath.Clamp(5, 3, 9))
}

func TestFilter(t *testing.T) {
	odd := xmath.Filter([]int{1, 2, 3, 4, 5}, func(v int) bool { return v%2 == 1 })
	assert.Equal(t, []int{1, 3, 5}, odd)
}

func TestMinBy(t *testing.T) {
	got := xmath.MinBy([]string{"oak", "fir", "sycamore"}, func(s string) float64 {
		return float64(len(s))
	})
	assert.Equal(t, "oak", got)

	assert.Equal(t, "", xmath.MinBy(nil, func(string) float64 { return 0 }))
}
