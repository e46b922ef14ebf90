package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertThenContains(t *testing.T) {
	f := New(1000, 0.01)
	inserted := make([][]byte, 0, 500)
	for i := 0; i < 500; i++ {
		v := []byte(fmt.Sprintf("value-%d", i))
		f.Insert(v)
		inserted = append(inserted, v)
	}
	for _, v := range inserted {
		assert.True(t, f.MaybeContains(v))
	}
}

func TestFalsePositiveRateIsBounded(t *testing.T) {
	const size = 2000
	f := New(size, 0.01)
	for i := 0; i < size; i++ {
		f.Insert([]byte(fmt.Sprintf("member-%d", i)))
	}

	falsePositives := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		v := []byte(fmt.Sprintf("absent-%d", i))
		if f.MaybeContains(v) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(trials)
	assert.Less(t, rate, 0.05, "observed false-positive rate %f far exceeds configured 0.01", rate)
}

func TestNeverInsertedIsUsuallyAbsent(t *testing.T) {
	f := New(100, 0.001)
	assert.False(t, f.MaybeContains([]byte("never seen")))
}
