package valias

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleMatchesWeights(t *testing.T) {
	weights := []float64{1, 2, 3, 4}
	tbl := New(weights)
	r := rand.New(rand.NewSource(1))

	counts := make([]int, len(weights))
	const n = 200000
	for i := 0; i < n; i++ {
		counts[tbl.Sample(r)]++
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		got := float64(counts[i]) / float64(n)
		want := w / total
		assert.InDelta(t, want, got, 0.02)
	}
}

func TestSingleOutcome(t *testing.T) {
	tbl := New([]float64{5})
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, tbl.Sample(r))
	}
}

func TestPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
	assert.Panics(t, func() { New([]float64{0, 0}) })
}
