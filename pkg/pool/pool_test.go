package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageAdmitsSimplestWitness(t *testing.T) {
	p := NewCoverage[string]()

	d1 := p.Process("aaaa", CounterObservations{{Index: 1, RawCount: 1}}, 4)
	require.NotNil(t, d1.Add)

	d2 := p.Process("a", CounterObservations{{Index: 1, RawCount: 1}}, 1)
	require.NotNil(t, d2.Add)
	assert.Contains(t, d2.Remove, d1.Add.Index)

	v, ok := p.Get(d2.Add.Index)
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestCoverageIdempotentReprocessing(t *testing.T) {
	p := NewCoverage[string]()
	obs := CounterObservations{{Index: 1, RawCount: 1}}
	d1 := p.Process("x", obs, 1)
	require.NotNil(t, d1.Add)
	d2 := p.Process("x", obs, 1)
	assert.True(t, d2.IsEmpty())
}

func TestUniquePoolGrowsWithDistinctValuesOnly(t *testing.T) {
	p := NewUnique[int, int]()
	for i := 0; i < 5; i++ {
		d := p.Process(i, []int{i}, float64(i))
		require.NotNil(t, d.Add)
	}
	d := p.Process(999, []int{0}, 100)
	assert.True(t, d.IsEmpty())
}

func TestMaximiseKeepsGreatest(t *testing.T) {
	p := NewMaximise[int, int](func(a, b int) bool { return a < b })
	p.Process(1, 5, 1)
	d := p.Process(2, 3, 1)
	assert.True(t, d.IsEmpty())
	d = p.Process(3, 10, 1)
	require.NotNil(t, d.Add)
	idx, ok := p.GetRandomIndex()
	require.True(t, ok)
	v, _ := p.Get(idx)
	assert.Equal(t, 3, v)
}

func TestTestFailureCapsPerID(t *testing.T) {
	p := NewTestFailure[int]()
	for i := 0; i < maxPerFailureID+2; i++ {
		p.Process(i, &TestFailureObservation{ID: "panic@foo.go:10"}, float64(maxPerFailureID+2-i))
	}
	assert.LessOrEqual(t, len(p.byID["panic@foo.go:10"]), maxPerFailureID)
}

func TestUnitPoolAlwaysReturnsSameIndex(t *testing.T) {
	p := NewUnit(42)
	idx1, ok := p.GetRandomIndex()
	require.True(t, ok)
	p.Process(43, nil, 1)
	idx2, ok := p.GetRandomIndex()
	require.True(t, ok)
	assert.Equal(t, idx1, idx2)
	v, _ := p.Get(idx2)
	assert.Equal(t, 43, v)
}

func TestAndFallsBackWhenOneSideEmpty(t *testing.T) {
	cov := NewCoverage[string]()
	fail := NewTestFailure[string]()
	a := NewAnd[string](cov, fail, 255)

	_, ok := a.GetRandomIndex()
	assert.False(t, ok)

	cov.Process("seed", CounterObservations{{Index: 0, RawCount: 1}}, 1)
	idx, ok := a.GetRandomIndex()
	require.True(t, ok)
	assert.True(t, idx.FromFirst)
}
