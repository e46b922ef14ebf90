package vector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
)

func intMutator() Mutator[int64] {
	return Mutator[int64]{
		Elem:   mutator.Integer{Lo: 0, Hi: 1000},
		MinLen: 0,
		MaxLen: 20,
	}
}

func TestValidateValueRejectsOutOfRangeLength(t *testing.T) {
	m := Mutator[int64]{Elem: mutator.Integer{Lo: 0, Hi: 10}, MinLen: 2, MaxLen: 4}
	_, ok := m.ValidateValue([]int64{1})
	assert.False(t, ok)
	_, ok = m.ValidateValue([]int64{1, 2, 3, 4, 5})
	assert.False(t, ok)
	_, ok = m.ValidateValue([]int64{1, 2, 3})
	assert.True(t, ok)
}

func TestComplexityIsSizePlusElementSum(t *testing.T) {
	m := intMutator()
	v := []int64{1, 2, 3}
	c, ok := m.ValidateValue(v)
	require.True(t, ok)
	got := m.Complexity(v, c)
	assert.Greater(t, got, float64(len(v)))
}

func TestRandomArbitraryRespectsLengthBounds(t *testing.T) {
	m := Mutator[int64]{Elem: mutator.Integer{Lo: 0, Hi: 10}, MinLen: 2, MaxLen: 5}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 30; i++ {
		v, _ := m.RandomArbitrary(r, m.MaxComplexity())
		assert.GreaterOrEqual(t, len(v), 2)
		assert.LessOrEqual(t, len(v), 5)
	}
}

func TestRandomMutateRoundTrip(t *testing.T) {
	m := intMutator()
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		v, _ := m.RandomArbitrary(r, m.MaxComplexity())
		c, ok := m.ValidateValue(v)
		require.True(t, ok)
		before := append([]int64{}, v...)
		var cAny mutator.Cache = c
		token, _ := m.RandomMutate(r, &v, &cAny, m.MaxComplexity())
		m.Unmutate(&v, &cAny, token)
		assert.Equal(t, before, v)
	}
}

func TestOrderedMutateEventuallyExhausts(t *testing.T) {
	m := intMutator()
	v := []int64{1, 2, 3}
	c, ok := m.ValidateValue(v)
	require.True(t, ok)
	var cAny mutator.Cache = c
	step := m.DefaultMutationStep(v, cAny)
	var stepAny mutator.MutationStep = step
	exhausted := false
	for i := 0; i < 10; i++ {
		_, _, ok := m.OrderedMutate(&v, &cAny, &stepAny, nil, m.MaxComplexity())
		if !ok {
			exhausted = true
			break
		}
	}
	assert.True(t, exhausted)
}

func TestSwapPreservesLengthAndMultiset(t *testing.T) {
	m := intMutator()
	v := []int64{10, 20, 30, 40}
	c, ok := m.ValidateValue(v)
	require.True(t, ok)
	var cAny mutator.Cache = c
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		before := append([]int64{}, v...)
		token, _, ok := m.opSwapElements(r, &v, cAny.(*Cache[mutator.Cache]))
		if !ok {
			continue
		}
		assert.Len(t, v, len(before))
		assert.ElementsMatch(t, before, v)
		m.Unmutate(&v, &cAny, token)
		assert.Equal(t, before, v)
	}
}
