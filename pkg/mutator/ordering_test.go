package mutator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderingMutatorArbitraryProducesAllThreeVariants(t *testing.T) {
	m := NewOrderingMutator()
	step := m.DefaultArbitraryStep()
	seen := map[Ordering]bool{}
	for i := 0; i < 3; i++ {
		v, _, ok := m.OrderedArbitrary(&step, m.MaxComplexity())
		assert.True(t, ok)
		seen[v] = true
	}
	assert.True(t, seen[Less])
	assert.True(t, seen[Equal])
	assert.True(t, seen[Greater])
}

// Every variant is a unit mutator, so ordered (in-variant) mutation never
// has anything to do; the only way a value changes is Alternation's
// weighted variant switch, exercised here via RandomMutate instead.
func TestOrderingMutatorRandomMutateRoundTrip(t *testing.T) {
	m := NewOrderingMutator()
	r := rand.New(rand.NewSource(1))
	v := Greater
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	before := v
	token, _ := m.RandomMutate(r, &v, &c, m.MaxComplexity())
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestOrderingMutatorClone(t *testing.T) {
	m := NewOrderingMutator()
	assert.Equal(t, Less, m.Clone(Less))
	assert.Equal(t, Equal, m.Clone(Equal))
	assert.Equal(t, Greater, m.Clone(Greater))
}
