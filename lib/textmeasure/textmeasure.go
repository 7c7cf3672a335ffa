// Package textmeasure computes the rendered pixel extents of node markup
// without a browser. It is the deterministic stand-in for DOM measurement:
// given the same fragment and font it always reports the same box.
package textmeasure

import (
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	TAB_SIZE         = 4
	LINE_HEIGHT      = 1.3
	CODE_LINE_HEIGHT = 1.5
)

// Ruler measures text runs against parsed truetype fonts. Faces are cached
// per font and size; a Ruler is cheap to call many times per render but is
// not safe for concurrent use.
type Ruler struct {
	ttfs  map[faceKey]*truetype.Font
	faces map[Font]font.Face
}

func NewRuler() (*Ruler, error) {
	r := &Ruler{
		ttfs:  make(map[faceKey]*truetype.Font),
		faces: make(map[Font]font.Face),
	}
	for key := range fontTTFs {
		ttf, err := parseTTF(key.family, key.style)
		if err != nil {
			return nil, err
		}
		r.ttfs[key] = ttf
	}
	return r, nil
}

func (r *Ruler) face(f Font) font.Face {
	if face, ok := r.faces[f]; ok {
		return face
	}
	ttf := r.ttfs[faceKey{f.Family, f.Style}]
	face := truetype.NewFace(ttf, &truetype.Options{
		Size: float64(f.Size),
	})
	r.faces[f] = face
	return face
}

// LineHeight is the vertical advance of one line in the given font.
func (r *Ruler) LineHeight(f Font) float64 {
	factor := LINE_HEIGHT
	if f.Family == GoMono {
		factor = CODE_LINE_HEIGHT
	}
	return math.Ceil(float64(f.Size) * factor)
}

// Measure returns the integer pixel extents of txt rendered in f.
// Newlines and tabs are honored; the reported height is always at least one
// line so empty strings still occupy a row.
func (r *Ruler) Measure(f Font, txt string) (width, height int) {
	face := r.face(f)
	lineHeight := r.LineHeight(f)

	lines := strings.Split(txt, "\n")
	var maxW fixed.Int26_6
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", TAB_SIZE))
		if w := font.MeasureString(face, line); w > maxW {
			maxW = w
		}
	}

	width = int(math.Ceil(float64(maxW) / 64))
	height = int(lineHeight) * len(lines)
	return width, height
}
