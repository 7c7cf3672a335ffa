// Package vmprep is the identity and measurement pass. It takes a raw
// content tree and annotates every node with a depth-first index, measured
// content extents, and an identity key, producing the input the layout
// engine consumes. Folded subtrees are measured too: they may be revealed
// by a toggle without another measurement pass.
package vmprep

import (
	"context"

	"oss.terrastruct.com/util-go/xdefer"

	"cdr.dev/slog"

	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/lib/log"
	"github.com/vinemap/vinemap/lib/xmath"
	"github.com/vinemap/vinemap/vmtree"
)

// Measurer reports the rendered pixel extents of an HTML fragment. It is
// invoked synchronously many times per render and must return stable,
// non-negative dimensions. A measurement failure is fatal for the render;
// there are no retries.
type Measurer interface {
	Measure(markup string) (geo.Size, error)
}

// TransformHook is invoked once per render with every content fragment
// about to be measured, in visit order (title, then description, per
// node). The hook may rewrite fragments in place; dimensions are read
// after it runs.
type TransformHook func(fragments []*string) error

type Options struct {
	// MinNodeHeight is the floor for a node's title height, so rows with
	// empty or whitespace titles never collapse the layout.
	MinNodeHeight int
	Hook          TransformHook
}

// Prepare annotates root in place. The effects are the annotations; the
// tree structure is untouched apart from re-cloned children slices.
func Prepare(ctx context.Context, root *vmtree.Node, st *vmtree.State, m Measurer, opts Options) (err error) {
	defer xdefer.Errorf(&err, "failed to prepare content tree")

	if root == nil {
		return nil
	}

	root.CloneChildren()

	index := 0
	var fragments []*string
	vmtree.Walk(root, func(n, parent *vmtree.Node) {
		index++
		n.Index = index
		if parent == nil {
			n.Depth = 0
			n.ParentIndex = 0
		} else {
			n.Depth = parent.Depth + 1
			n.ParentIndex = parent.Index
		}
		fragments = append(fragments, &n.Title)
		if n.HasDescription() {
			fragments = append(fragments, &n.Description)
		}
	})

	if opts.Hook != nil {
		if err := opts.Hook(fragments); err != nil {
			return err
		}
	}

	var merr error
	vmtree.Walk(root, func(n, _ *vmtree.Node) {
		if merr != nil {
			return
		}
		size, err := m.Measure(n.Title)
		if err != nil {
			merr = err
			return
		}
		size.Height = xmath.Max(size.Height, opts.MinNodeHeight)
		n.TitleSize = size

		n.DescSize = geo.Size{}
		if n.HasDescription() {
			size, err := m.Measure(n.Description)
			if err != nil {
				merr = err
				return
			}
			n.DescSize = size
		}
	})
	if merr != nil {
		return merr
	}

	// Keys need every index assigned first, hence the second walk.
	vmtree.Walk(root, func(n, _ *vmtree.Node) {
		n.Key = vmtree.IdentityKey(n.ParentIndex, n.Index, n.Title)
		st.SeedDescHidden(n.Key, !n.HasDescription())
	})

	log.Debug(ctx, "prepared content tree",
		slog.F("nodes", index),
		slog.F("fragments", len(fragments)),
	)
	return nil
}
