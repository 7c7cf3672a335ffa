package geo

import "math"

func Min(a, b float64) float64 {
	return math.Min(a, b)
}

func Max(a, b float64) float64 {
	return math.Max(a, b)
}

// TruncateDecimals truncates floats to keep up to 3 digits after decimal, to avoid issues with floats on different machines.
func TruncateDecimals(v float64) float64 {
	return float64(int(v*1000)) / 1000
}

// AbsMin returns whichever of a and b is smaller in magnitude, preserving
// its sign. Used when a rectangle violates both boundaries of an axis and
// only the gentler correction should be applied.
func AbsMin(a, b float64) float64 {
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}
