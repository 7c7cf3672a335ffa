// Package color assigns branch colors to outline nodes and validates
// user-supplied CSS colors.
package color

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Category is the default cyclic palette, one color per top-level branch.
// Same ten hues as the common categorical scheme so diagrams look familiar
// next to other tooling.
var Category = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
	"#bcbd22",
	"#17becf",
}

// Func maps a node's per-render index to a color. It must return the same
// color for the same index within one render.
type Func func(index int) string

// OfIndex is the default Func: cycle through the categorical palette.
func OfIndex(index int) string {
	if index < 0 {
		index = -index
	}
	return Category[index%len(Category)]
}

// Parse validates a CSS color string and normalizes it to hex notation.
func Parse(s string) (string, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return "", err
	}
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex(), nil
}

// Darken drops the luminance of a CSS color by 10%, used for edge strokes
// so they sit visually behind their node's connector.
func Darken(s string) (string, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return "", err
	}
	h, sat, l := (colorful.Color{R: c.R, G: c.G, B: c.B}).Hsl()
	return colorful.Hsl(h, sat, l-.1).Clamped().Hex(), nil
}
