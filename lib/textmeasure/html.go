package textmeasure

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vinemap/vinemap/lib/geo"
)

// css-ish constants so measured boxes match what the stylesheet renders
const (
	PaddingLeft_li = 24.
	Padding_pre    = 8.
	MarginBottom_p = 8.
)

// HTMLMeasurer measures small HTML fragments (node titles, description
// paragraphs) by walking the parsed fragment and measuring each text run in
// the style its ancestors dictate. It implements the measurement contract
// the identity pass consumes.
type HTMLMeasurer struct {
	ruler *Ruler
	base  Font
}

func NewHTMLMeasurer(ruler *Ruler, base Font) *HTMLMeasurer {
	return &HTMLMeasurer{ruler: ruler, base: base}
}

// Measure reports the integer-rounded pixel extents of the fragment.
// An empty fragment measures (0, 0); the caller applies any height floor.
func (m *HTMLMeasurer) Measure(markup string) (geo.Size, error) {
	if strings.TrimSpace(markup) == "" {
		return geo.Size{}, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return geo.Size{}, err
	}

	w := &fragmentWalker{ruler: m.ruler}
	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return geo.Size{}, nil
	}
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, m.base, 0)
	}
	w.closeLine()

	return geo.NewSize(int(w.maxWidth), int(w.height)), nil
}

// fragmentWalker lays text runs onto lines. Block boundaries and <br> close
// the current line; inline elements only change the active font.
type fragmentWalker struct {
	ruler *Ruler

	lineWidth  float64
	lineHeight float64
	indent     float64

	maxWidth float64
	height   float64
}

func (w *fragmentWalker) walk(n *html.Node, f Font, indent float64) {
	switch n.Type {
	case html.TextNode:
		txt := strings.ReplaceAll(n.Data, "\n", " ")
		if strings.TrimSpace(txt) == "" {
			return
		}
		width, height := w.ruler.Measure(f, txt)
		w.indent = indent
		w.lineWidth += float64(width)
		w.lineHeight = geo.Max(w.lineHeight, float64(height))
	case html.ElementNode:
		f2 := f
		block := false
		extraIndent := 0.
		switch n.Data {
		case "br":
			w.closeLine()
			return
		case "strong", "b", "h1", "h2", "h3", "h4", "h5", "h6":
			f2.Style = FONT_STYLE_BOLD
		case "em", "i":
			f2.Style = FONT_STYLE_ITALIC
		case "code":
			f2.Family = GoMono
		case "pre":
			f2.Family = GoMono
			block = true
			extraIndent = Padding_pre
		case "p", "div", "ul", "ol", "blockquote":
			block = true
		case "li":
			block = true
			extraIndent = PaddingLeft_li
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			block = true
		}

		if block {
			w.closeLine()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, f2, indent+extraIndent)
		}
		if block {
			w.closeLine()
			if n.Data == "p" {
				w.height += MarginBottom_p
			}
		}
	}
}

func (w *fragmentWalker) closeLine() {
	if w.lineHeight == 0 && w.lineWidth == 0 {
		return
	}
	w.maxWidth = geo.Max(w.maxWidth, w.lineWidth+w.indent)
	w.height += w.lineHeight
	w.lineWidth = 0
	w.lineHeight = 0
	w.indent = 0
}

var _ interface {
	Measure(string) (geo.Size, error)
} = (*HTMLMeasurer)(nil)
