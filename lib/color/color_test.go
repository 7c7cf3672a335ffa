package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOfIndexStable(t *testing.T) {
	for i := 0; i < 30; i++ {
		assert.Equal(t, OfIndex(i), OfIndex(i))
	}
	assert.Equal(t, OfIndex(0), OfIndex(len(Category)))
}

func TestParse(t *testing.T) {
	hex, err := Parse("rebeccapurple")
	assert.NoError(t, err)
	assert.Equal(t, "#663399", hex)

	_, err = Parse("not-a-color")
	assert.Error(t, err)
}

func TestDarken(t *testing.T) {
	darker, err := Darken("#808080")
	assert.NoError(t, err)
	assert.NotEqual(t, "#808080", darker)
}
