package hibitset

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAndTest(t *testing.T) {
	s := New()
	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(1000)

	assert.True(t, s.Test(0))
	assert.True(t, s.Test(63))
	assert.True(t, s.Test(64))
	assert.True(t, s.Test(1000))
	assert.False(t, s.Test(1))
	assert.False(t, s.Test(999))
}

func TestDrainYieldsAllSetBitsSortedThenClears(t *testing.T) {
	s := New()
	want := []uint64{0, 5, 63, 64, 127, 200, 4096, 70000}
	for _, w := range want {
		s.Set(int(w))
	}

	var got []uint64
	s.Drain(func(e uint64) {
		got = append(got, e)
	})
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, want, got)

	var secondDrain []uint64
	s.Drain(func(e uint64) { secondDrain = append(secondDrain, e) })
	assert.Empty(t, secondDrain)
}

func TestEmptySetDrainsNothing(t *testing.T) {
	s := New()
	called := false
	s.Drain(func(uint64) { called = true })
	assert.False(t, called)
}
