package geo

// Size is a measured content extent in integer pixels, matching what the
// measurement collaborator reports.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func NewSize(w, h int) Size {
	return Size{Width: w, Height: h}
}

func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}
