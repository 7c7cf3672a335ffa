package vmprep_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinemap/vinemap/lib/geo"
	"github.com/vinemap/vinemap/vmprep"
	"github.com/vinemap/vinemap/vmtree"
)

// charMeasurer sizes fragments by character count, one row per fragment.
type charMeasurer struct {
	calls int
}

func (m *charMeasurer) Measure(markup string) (geo.Size, error) {
	m.calls++
	if strings.TrimSpace(markup) == "" {
		return geo.Size{}, nil
	}
	return geo.NewSize(len(markup)*7, 20), nil
}

type failMeasurer struct{}

func (failMeasurer) Measure(string) (geo.Size, error) {
	return geo.Size{}, errors.New("detached container")
}

func sample() *vmtree.Node {
	return &vmtree.Node{
		Title: "root",
		Children: []*vmtree.Node{
			{Title: "A", Description: "<p>about A</p>", Children: []*vmtree.Node{{Title: "A1"}}},
			{Title: "B"},
		},
	}
}

func TestPrepareIndexesAndDepths(t *testing.T) {
	root := sample()
	err := vmprep.Prepare(context.Background(), root, vmtree.NewState(), &charMeasurer{}, vmprep.Options{MinNodeHeight: 16})
	assert.NoError(t, err)

	var indexes []int
	vmtree.Walk(root, func(n, parent *vmtree.Node) {
		indexes = append(indexes, n.Index)
		if parent == nil {
			assert.Equal(t, 0, n.Depth)
		} else {
			assert.Equal(t, parent.Depth+1, n.Depth)
			assert.Equal(t, parent.Index, n.ParentIndex)
		}
	})
	assert.Equal(t, []int{1, 2, 3, 4}, indexes)
}

func TestPrepareKeys(t *testing.T) {
	root := sample()
	st := vmtree.NewState()
	err := vmprep.Prepare(context.Background(), root, st, &charMeasurer{}, vmprep.Options{})
	assert.NoError(t, err)

	a := root.Children[0]
	a1 := a.Children[0]
	assert.Equal(t, vmtree.IdentityKey(0, 1, "root"), root.Key)
	// a child's key embeds its parent's index, its own index, and its title
	assert.Contains(t, a1.Key, "A1")
	assert.Equal(t, vmtree.IdentityKey(a.Index, a1.Index, "A1"), a1.Key)

	// keys are unique among rendered nodes
	seen := map[string]bool{}
	vmtree.Walk(root, func(n, _ *vmtree.Node) {
		assert.False(t, seen[n.Key], "duplicate key %q", n.Key)
		seen[n.Key] = true
	})
}

func TestPrepareMeasures(t *testing.T) {
	root := sample()
	m := &charMeasurer{}
	err := vmprep.Prepare(context.Background(), root, vmtree.NewState(), m, vmprep.Options{MinNodeHeight: 16})
	assert.NoError(t, err)

	a := root.Children[0]
	assert.Positive(t, a.TitleSize.Width)
	assert.Positive(t, a.DescSize.Width)

	b := root.Children[1]
	assert.True(t, b.DescSize.IsZero())

	// title + description for A, title-only for the rest
	assert.Equal(t, 5, m.calls)
}

func TestPrepareMinHeightFloor(t *testing.T) {
	root := &vmtree.Node{Title: "   "}
	err := vmprep.Prepare(context.Background(), root, vmtree.NewState(), &charMeasurer{}, vmprep.Options{MinNodeHeight: 16})
	assert.NoError(t, err)
	assert.Equal(t, 16, root.TitleSize.Height)
}

func TestPrepareDescHiddenDefaults(t *testing.T) {
	root := sample()
	st := vmtree.NewState()
	err := vmprep.Prepare(context.Background(), root, st, &charMeasurer{}, vmprep.Options{})
	assert.NoError(t, err)

	a := root.Children[0]
	b := root.Children[1]
	assert.False(t, st.Get(a.Key).DescHidden)
	assert.True(t, st.Get(b.Key).DescHidden)
}

func TestPrepareHookRunsBeforeMeasure(t *testing.T) {
	root := &vmtree.Node{Title: "x"}
	hook := func(fragments []*string) error {
		for _, f := range fragments {
			*f = *f + *f // double every fragment
		}
		return nil
	}
	err := vmprep.Prepare(context.Background(), root, vmtree.NewState(), &charMeasurer{}, vmprep.Options{Hook: hook})
	assert.NoError(t, err)
	// dimensions reflect the transformed markup
	assert.Equal(t, 14, root.TitleSize.Width)
}

func TestPrepareMeasureFailureIsFatal(t *testing.T) {
	err := vmprep.Prepare(context.Background(), sample(), vmtree.NewState(), failMeasurer{}, vmprep.Options{})
	assert.Error(t, err)
}

func TestPrepareNilRoot(t *testing.T) {
	assert.NoError(t, vmprep.Prepare(context.Background(), nil, vmtree.NewState(), failMeasurer{}, vmprep.Options{}))
}
