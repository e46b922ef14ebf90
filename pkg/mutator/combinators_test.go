package mutator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxRoundTrip(t *testing.T) {
	m := Box[int64]{Inner: Integer{Lo: 0, Hi: 100}}
	v := int64(5)
	pv := &v
	c, ok := m.ValidateValue(pv)
	assert.True(t, ok)
	step := m.DefaultMutationStep(pv, c)
	before := *pv
	token, _, ok := m.OrderedMutate(&pv, &c, &step, nil, m.MaxComplexity())
	assert.True(t, ok)
	m.Unmutate(&pv, &c, token)
	assert.Equal(t, before, *pv)
}

func TestOptionMutatorArbitraryProducesBothVariants(t *testing.T) {
	m := OptionMutator[int64]{Inner: Integer{Lo: 0, Hi: 10}}
	step := m.DefaultArbitraryStep()
	sawNone, sawSome := false, false
	for i := 0; i < 4; i++ {
		v, _, ok := m.OrderedArbitrary(&step, m.MaxComplexity())
		if !ok {
			break
		}
		if v.HasValue {
			sawSome = true
		} else {
			sawNone = true
		}
	}
	assert.True(t, sawNone)
	assert.True(t, sawSome)
}

func TestOptionMutatorRoundTrip(t *testing.T) {
	m := OptionMutator[int64]{Inner: Integer{Lo: 0, Hi: 10}}
	v := Optional[int64]{HasValue: true, Value: 3}
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	step := m.DefaultMutationStep(v, c)
	before := v
	token, _, ok := m.OrderedMutate(&v, &c, &step, nil, m.MaxComplexity())
	assert.True(t, ok)
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestAlternationRoundTrip(t *testing.T) {
	m := NewAlternation[int64]([]Mutator[int64]{
		Integer{Lo: 0, Hi: 10},
		Integer{Lo: 100, Hi: 110},
	}, []float64{1, 1})
	v := int64(5)
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	r := rand.New(rand.NewSource(1))
	before := v
	token, _ := m.RandomMutate(r, &v, &c, m.MaxComplexity())
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestMapMutatorRoundTrip(t *testing.T) {
	m := Map[int64, string]{
		Base: Integer{Lo: 0, Hi: 9},
		Parse: func(s string) (int64, bool) {
			if len(s) != 1 || s[0] < '0' || s[0] > '9' {
				return 0, false
			}
			return int64(s[0] - '0'), true
		},
		Build: func(n int64) string { return string(rune('0' + n)) },
	}
	v := "3"
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	step := m.DefaultMutationStep(v, c)
	before := v
	token, _, ok := m.OrderedMutate(&v, &c, &step, nil, m.MaxComplexity())
	assert.True(t, ok)
	m.Unmutate(&v, &c, token)
	assert.Equal(t, before, v)
}

func TestFilterRejectsInvalidValues(t *testing.T) {
	m := Filter[int64]{
		Base:      Integer{Lo: 0, Hi: 100},
		Predicate: func(v int64) bool { return v%2 == 0 },
	}
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		v, _ := m.RandomArbitrary(r, m.MaxComplexity())
		assert.Equal(t, int64(0), v%2)
	}
}

func TestDictionaryEmitsEntriesFirst(t *testing.T) {
	m := Dictionary[int64]{
		Base:    Integer{Lo: 0, Hi: 1000},
		Entries: []int64{42, 7},
	}
	step := m.DefaultArbitraryStep()
	v1, _, ok := m.OrderedArbitrary(&step, m.MaxComplexity())
	assert.True(t, ok)
	assert.Equal(t, int64(42), v1)
	v2, _, ok := m.OrderedArbitrary(&step, m.MaxComplexity())
	assert.True(t, ok)
	assert.Equal(t, int64(7), v2)
}

func TestRecursiveMaxComplexityOfRecurIsInfinite(t *testing.T) {
	type node struct {
		leaf     bool
		children []node
	}
	r := NewRecursive[node](func(self Mutator[node]) Mutator[node] {
		_ = self
		return nil // the actual grammar mutator is built in pkg/mutator/grammar
	})
	handle := &RecurToMutator[node]{root: r}
	assert.True(t, handle.MaxComplexity() > 1e300)
}
