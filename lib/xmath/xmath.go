// Package xmath contains small generic helpers used across the layout and
// scene packages. Kept deliberately tiny; anything with domain meaning
// belongs next to its domain.
package xmath

import "golang.org/x/exp/constraints"

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Filter[T any](els []T, fn func(T) bool) []T {
	out := []T{}
	for _, el := range els {
		if fn(el) {
			out = append(out, el)
		}
	}
	return out
}

// MinBy returns the element of els with the smallest metric, or the zero
// value when els is empty.
func MinBy[T any](els []T, metric func(T) float64) T {
	var best T
	if len(els) == 0 {
		return best
	}
	best = els[0]
	bestM := metric(best)
	for _, el := range els[1:] {
		if m := metric(el); m < bestM {
			best, bestM = el, m
		}
	}
	return best
}
