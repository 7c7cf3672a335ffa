// Package vmparse turns a markdown outline into a content tree. Headings
// nest by level and list items nest by indentation underneath the nearest
// heading; inline markup (emphasis, code spans, links) is preserved as HTML
// so the measurer and the scene render it as written. Blocks that are
// neither headings nor lists become the description of the node above them.
package vmparse

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	goldmarkHtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/vinemap/vinemap/vmtree"
)

var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHtml.WithUnsafe(),
		goldmarkHtml.WithXHTML(),
	),
	goldmark.WithExtensions(
		extension.Strikethrough,
		extension.Table,
	),
)

// Parse builds a content tree from markdown source. The returned root is
// the document itself: its title is the source's sole top-level heading
// when there is exactly one, otherwise title and the heading levels below
// it nest under an untitled root. Parse never returns a nil tree for
// non-empty input; an empty document yields nil.
func Parse(src []byte) (root *vmtree.Node, err error) {
	defer xdefer.Errorf(&err, "failed to parse outline")

	doc := markdown.Parser().Parse(text.NewReader(src))

	root = &vmtree.Node{}
	// stack[i] is the node new content at heading level > levels[i]
	// attaches to. The root sits at level 0 so h1s nest under it.
	stack := []*vmtree.Node{root}
	levels := []int{0}

	for b := doc.FirstChild(); b != nil; b = b.NextSibling() {
		switch block := b.(type) {
		case *ast.Heading:
			title, err := renderInline(src, block)
			if err != nil {
				return nil, err
			}
			for len(stack) > 1 && levels[len(levels)-1] >= block.Level {
				stack = stack[:len(stack)-1]
				levels = levels[:len(levels)-1]
			}
			n := &vmtree.Node{Title: title}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			levels = append(levels, block.Level)
		case *ast.List:
			children, err := parseList(src, block)
			if err != nil {
				return nil, err
			}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, children...)
		default:
			if err := appendDescription(src, stack[len(stack)-1], b); err != nil {
				return nil, err
			}
		}
	}

	// A document that is a single heading plus its content reads as a tree
	// rooted at that heading; keep the synthetic root only when needed.
	if root.Title == "" && root.Description == "" && len(root.Children) == 1 {
		root = root.Children[0]
	}
	if root.Title == "" && root.Description == "" && len(root.Children) == 0 {
		return nil, nil
	}
	return root, nil
}

// parseList converts the items of one list into sibling nodes. An item's
// leading paragraph is its title, a nested list its children, and any other
// block its description.
func parseList(src []byte, list *ast.List) ([]*vmtree.Node, error) {
	var nodes []*vmtree.Node
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		n := &vmtree.Node{}
		for b := item.FirstChild(); b != nil; b = b.NextSibling() {
			switch block := b.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				if n.Title == "" {
					title, err := renderInline(src, b)
					if err != nil {
						return nil, err
					}
					n.Title = title
					continue
				}
				if err := appendDescription(src, n, b); err != nil {
					return nil, err
				}
			case *ast.List:
				children, err := parseList(src, block)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, children...)
			default:
				if err := appendDescription(src, n, b); err != nil {
					return nil, err
				}
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// appendDescription renders one block to HTML and appends it to n's
// description fragment.
func appendDescription(src []byte, n *vmtree.Node, block ast.Node) error {
	var buf bytes.Buffer
	if err := markdown.Renderer().Render(&buf, src, block); err != nil {
		return err
	}
	html := strings.TrimSpace(buf.String())
	if html == "" {
		return nil
	}
	if n.Description != "" {
		n.Description += "\n"
	}
	n.Description += html
	return nil
}

// renderInline renders a block's inline children to HTML, without the
// block's own wrapper element.
func renderInline(src []byte, block ast.Node) (string, error) {
	var buf bytes.Buffer
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		if err := markdown.Renderer().Render(&buf, src, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
