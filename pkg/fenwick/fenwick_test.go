package fenwick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixSum(t *testing.T) {
	var tr Tree[int]
	for _, w := range []int{1, 2, 3, 4, 5} {
		tr.Add(w)
	}
	assert.Equal(t, 1, tr.PrefixSum(0))
	assert.Equal(t, 3, tr.PrefixSum(1))
	assert.Equal(t, 15, tr.PrefixSum(4))
	assert.Equal(t, 15, tr.Total())
}

func TestUpdateAndFindPrefix(t *testing.T) {
	var tr Tree[int]
	for _, w := range []int{1, 1, 1, 1} {
		tr.Add(w)
	}
	tr.Update(2, 10) // weights become 1,1,11,1
	assert.Equal(t, 13, tr.PrefixSum(2))

	assert.Equal(t, 0, tr.FindPrefix(0)) // first index whose prefix sum > 0
	assert.Equal(t, 1, tr.FindPrefix(1)) // prefixSum(0)=1, prefixSum(1)=2, so first >1 is index 1
	assert.Equal(t, 4, tr.FindPrefix(1000))
}

func TestSet(t *testing.T) {
	var tr Tree[float64]
	tr.Add(1.0)
	tr.Add(2.0)
	tr.Add(3.0)
	tr.Set(1, 20.0)
	assert.InDelta(t, 20.0, tr.Weight(1), 1e-9)
	assert.InDelta(t, 24.0, tr.Total(), 1e-9)
}
