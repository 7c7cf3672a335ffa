package vmtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() *Node {
	return &Node{
		Title: "root",
		Children: []*Node{
			{Title: "A", Children: []*Node{{Title: "A1"}}},
			{Title: "B"},
		},
	}
}

func TestWalkOrder(t *testing.T) {
	var titles []string
	Walk(sample(), func(n, parent *Node) {
		titles = append(titles, n.Title)
	})
	assert.Equal(t, []string{"root", "A", "A1", "B"}, titles)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 4, sample().Count())
	assert.Equal(t, 0, (*Node)(nil).Count())
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, ".1.root", IdentityKey(0, 1, "root"))
	assert.Equal(t, "2.3.A1", IdentityKey(2, 3, "A1"))
}

func TestCloneChildren(t *testing.T) {
	root := sample()
	a := root.Children[0]
	prevSlice := root.Children

	root.CloneChildren()
	assert.NotSame(t, &prevSlice[0], &root.Children[0])
	// nodes themselves are shared, only the slices are fresh
	assert.Same(t, a, root.Children[0])
}

func TestState(t *testing.T) {
	s := NewState()
	assert.False(t, s.Get("k").Folded)

	st := s.ToggleFold("k")
	assert.True(t, st.Folded)
	assert.True(t, s.Get("k").Folded)
	assert.False(t, s.Get("k").DescHidden)

	s.ToggleDescHidden("k")
	assert.True(t, s.Get("k").DescHidden)
	// fold state survives the description toggle
	assert.True(t, s.Get("k").Folded)
}

func TestSeedDescHidden(t *testing.T) {
	s := NewState()
	s.SeedDescHidden("k", true)
	assert.True(t, s.Get("k").DescHidden)

	// seeding never overwrites an explicit toggle
	s.ToggleDescHidden("k")
	s.SeedDescHidden("k", true)
	assert.False(t, s.Get("k").DescHidden)
}
