package textmeasure

import (
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

type FontFamily string
type FontStyle string

const (
	GoSans FontFamily = "GoSans"
	GoMono FontFamily = "GoMono"

	FONT_STYLE_REGULAR FontStyle = "regular"
	FONT_STYLE_BOLD    FontStyle = "bold"
	FONT_STYLE_ITALIC  FontStyle = "italic"

	FONT_SIZE_S = 14
	FONT_SIZE_M = 16
	FONT_SIZE_L = 20
)

type Font struct {
	Family FontFamily
	Style  FontStyle
	Size   int
}

func (f FontFamily) Font(size int, style FontStyle) Font {
	return Font{
		Family: f,
		Style:  style,
		Size:   size,
	}
}

// faceKey is size-agnostic; faces are derived per size on demand.
type faceKey struct {
	family FontFamily
	style  FontStyle
}

var fontTTFs = map[faceKey][]byte{
	{GoSans, FONT_STYLE_REGULAR}: goregular.TTF,
	{GoSans, FONT_STYLE_BOLD}:    gobold.TTF,
	{GoSans, FONT_STYLE_ITALIC}:  goitalic.TTF,
	{GoMono, FONT_STYLE_REGULAR}: gomono.TTF,
	{GoMono, FONT_STYLE_BOLD}:    gomono.TTF,
	{GoMono, FONT_STYLE_ITALIC}:  gomono.TTF,
}

func parseTTF(family FontFamily, style FontStyle) (*truetype.Font, error) {
	return truetype.Parse(fontTTFs[faceKey{family, style}])
}
