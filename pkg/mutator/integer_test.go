package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerOrderedMutateVisitsEveryValueExactlyOnce(t *testing.T) {
	m := Integer{Lo: -128, Hi: 127}
	v := int64(0)
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	step := m.DefaultMutationStep(v, c)

	seen := map[int64]bool{}
	for {
		token, _, ok := m.OrderedMutate(&v, &c, &step, nil, m.MaxComplexity())
		if !ok {
			break
		}
		assert.False(t, seen[v], "value %d revisited", v)
		seen[v] = true
		_ = token
	}
	assert.Len(t, seen, 256)
}

func TestIntegerRoundTrip(t *testing.T) {
	m := Integer{Lo: -10, Hi: 10}
	v := int64(3)
	c, _ := m.ValidateValue(v)
	step := m.DefaultMutationStep(v, c)
	before := v
	token, _, ok := m.OrderedMutate(&v, &c, &step, nil, m.MaxComplexity())
	assert.True(t, ok)
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestBinarySearchEnumerateCoversRange(t *testing.T) {
	seen := map[int64]bool{}
	for k := int64(0); ; k++ {
		v, ok := binarySearchEnumerate(-5, 5, k)
		if !ok {
			break
		}
		seen[v] = true
	}
	assert.Len(t, seen, 11)
}
