package geo

// EdgeWidth returns the stroke width for an edge leaving a node at the
// given depth. Edges thin out as the tree deepens, with a floor so deep
// branches stay visible.
func EdgeWidth(depth int) float64 {
	return Max(6-2*float64(depth), 1.5)
}

// ChevronPoints returns the polygon for a description-toggle glyph centered
// at (cx, cy). The glyph points right while the description is hidden and
// down once it is shown.
func ChevronPoints(cx, cy, size float64, hidden bool) []*Point {
	h := size / 2
	if hidden {
		return []*Point{
			NewPoint(cx-h/2, cy-h),
			NewPoint(cx+h, cy),
			NewPoint(cx-h/2, cy+h),
		}
	}
	return []*Point{
		NewPoint(cx-h, cy-h/2),
		NewPoint(cx+h, cy-h/2),
		NewPoint(cx, cy+h),
	}
}
