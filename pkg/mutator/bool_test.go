package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolOrderedArbitraryExhaustsAfterTwo(t *testing.T) {
	m := Bool{}
	step := m.DefaultArbitraryStep()
	seen := map[bool]bool{}
	for i := 0; i < 2; i++ {
		v, cplx, ok := m.OrderedArbitrary(&step, 10)
		assert.True(t, ok)
		assert.Equal(t, boolComplexity, cplx)
		seen[v] = true
	}
	assert.Len(t, seen, 2)
	_, _, ok := m.OrderedArbitrary(&step, 10)
	assert.False(t, ok)
}

func TestBoolRoundTrip(t *testing.T) {
	m := Bool{}
	v := false
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	step := m.DefaultMutationStep(v, c)
	token, _, ok := m.OrderedMutate(&v, &c, &step, nil, 10)
	assert.True(t, ok)
	assert.True(t, v)
	m.Unmutate(&v, &c, token)
	assert.False(t, v)
}
