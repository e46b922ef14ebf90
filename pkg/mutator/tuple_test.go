package mutator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTuple2RoundTrip(t *testing.T) {
	m := Tuple2[bool, int64]{A: Bool{}, B: Integer{Lo: -5, Hi: 5}}
	v := Pair[bool, int64]{First: false, Second: 2}
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	step := m.DefaultMutationStep(v, c)

	before := v
	token, _, ok := m.OrderedMutate(&v, &c, &step, nil, m.MaxComplexity())
	assert.True(t, ok)
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestTuple2ComplexityIsSumOfFields(t *testing.T) {
	m := Tuple2[bool, int64]{A: Bool{}, B: Integer{Lo: 0, Hi: 255}}
	v := Pair[bool, int64]{First: true, Second: 10}
	c, _ := m.ValidateValue(v)
	assert.Equal(t, m.A.MaxComplexity()+m.B.MaxComplexity(), m.Complexity(v, c))
}
