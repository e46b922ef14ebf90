package complexity

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeToComplexity(t *testing.T) {
	assert.Equal(t, Complexity(0), SizeToComplexity(0))
	assert.Equal(t, Complexity(1), SizeToComplexity(1))
	assert.Equal(t, Complexity(2), SizeToComplexity(2))
	assert.Equal(t, Complexity(2), SizeToComplexity(3))
	assert.Equal(t, Complexity(3), SizeToComplexity(4))
}

func TestUniformFloat64Bounds(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 1000; i++ {
		v := UniformFloat64(r, 2.0, 5.0)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 5.0)
	}
	assert.Equal(t, 3.0, UniformFloat64(r, 3.0, 3.0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, Complexity(1), Clamp(0, 1, 5))
	assert.Equal(t, Complexity(5), Clamp(9, 1, 5))
	assert.Equal(t, Complexity(3), Clamp(3, 1, 5))
}
