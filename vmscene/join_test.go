package vmscene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	prev := map[string]int{"a": 1, "b": 2, "c": 3}
	next := []string{"b", "d", "a"}

	j := NewJoin(prev, next, func(s string) string { return s })

	assert.Equal(t, []string{"d"}, j.Enter)
	assert.Len(t, j.Update, 2)
	assert.Equal(t, "b", j.Update[0].Data)
	assert.Equal(t, 2, j.Update[0].El)
	assert.Equal(t, "a", j.Update[1].Data)
	assert.Equal(t, map[string]int{"c": 3}, j.Exit)

	// prev is untouched
	assert.Len(t, prev, 3)
}

func TestJoinEmptyPrev(t *testing.T) {
	j := NewJoin(map[string]int(nil), []string{"a"}, func(s string) string { return s })
	assert.Equal(t, []string{"a"}, j.Enter)
	assert.Empty(t, j.Update)
	assert.Empty(t, j.Exit)
}

func TestJoinIdentical(t *testing.T) {
	prev := map[string]int{"a": 1, "b": 2}
	j := NewJoin(prev, []string{"a", "b"}, func(s string) string { return s })
	assert.Empty(t, j.Enter)
	assert.Empty(t, j.Exit)
	assert.Len(t, j.Update, 2)
}
