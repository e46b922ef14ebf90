package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertGetRemove(t *testing.T) {
	a := New[string]()
	k1 := a.Insert("one")
	k2 := a.Insert("two")

	v, ok := a.Get(k1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	v, ok = a.Get(k2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Remove(k1))
	assert.Equal(t, 1, a.Len())

	_, ok = a.Get(k1)
	assert.False(t, ok)
}

func TestStaleKeyAfterReuse(t *testing.T) {
	a := New[int]()
	k1 := a.Insert(1)
	a.Remove(k1)
	k2 := a.Insert(2)

	assert.Equal(t, k1.index, k2.index)
	assert.NotEqual(t, k1.generation, k2.generation)

	_, ok := a.Get(k1)
	assert.False(t, ok, "stale key must not resolve to the reused slot")

	v, ok := a.Get(k2)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSetRejectsStaleKey(t *testing.T) {
	a := New[int]()
	k := a.Insert(10)
	a.Remove(k)
	assert.False(t, a.Set(k, 99))
}

func TestFindStepMatchesBinarySearch(t *testing.T) {
	sorted := []int{1, 3, 3, 7, 10, 10, 15, 20}
	for needle := -1; needle <= 21; needle++ {
		want := binarySearchFirstGreater(sorted, needle)
		for _, hint := range []int{0, 3, 7} {
			got := FindStep(sorted, needle, hint)
			assert.Equal(t, want, got, "needle=%d hint=%d", needle, hint)
		}
	}
}

func TestFindStepEmptySlice(t *testing.T) {
	assert.Equal(t, 0, FindStep([]int{}, 5, 0))
}
