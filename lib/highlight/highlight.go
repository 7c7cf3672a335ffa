// Package highlight is a content-transform hook that syntax-highlights
// fenced code blocks inside node markup before measurement. It rewrites
// <pre><code class="language-xyz"> blocks in place and leaves the
// surrounding fragment structure untouched, so wrapper elements created
// earlier in the render stay valid.
package highlight

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"oss.terrastruct.com/util-go/xdefer"
)

const languageClassPrefix = "language-"

var formatter = html.New(html.WithClasses(false), html.PreventSurroundingPre(true))

// Fragments rewrites code blocks in every fragment in place. It is shaped
// to plug directly into the identity pass's transform hook.
func Fragments(fragments []*string) (err error) {
	defer xdefer.Errorf(&err, "failed to highlight code blocks")

	for _, frag := range fragments {
		if frag == nil || !strings.Contains(*frag, "<code") {
			continue
		}
		out, err := fragment(*frag)
		if err != nil {
			return err
		}
		*frag = out
	}
	return nil
}

func fragment(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var herr error
	doc.Find("pre > code").Each(func(_ int, sel *goquery.Selection) {
		lang := ""
		if class, ok := sel.Attr("class"); ok {
			for _, c := range strings.Fields(class) {
				if strings.HasPrefix(c, languageClassPrefix) {
					lang = strings.TrimPrefix(c, languageClassPrefix)
				}
			}
		}
		highlighted, err := Code(sel.Text(), lang)
		if err != nil {
			herr = err
			return
		}
		sel.SetHtml(highlighted)
	})
	if herr != nil {
		return "", herr
	}

	return doc.Find("body").Html()
}

// Code highlights a raw code string for the given language. Unknown
// languages fall back to the plaintext lexer.
func Code(source, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}
