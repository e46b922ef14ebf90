package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayOfCountersOnlyRecordsWhileRecording(t *testing.T) {
	s := NewArrayOfCounters(4)
	s.Hit(1)
	var seen []int
	s.IterateOverObservations(func(i int, c uint64) { seen = append(seen, i) })
	assert.Empty(t, seen)

	s.StartRecording()
	s.Hit(1)
	s.Hit(1)
	s.Hit(3)
	s.StopRecording()
	seen = nil
	counts := map[int]uint64{}
	s.IterateOverObservations(func(i int, c uint64) {
		seen = append(seen, i)
		counts[i] = c
	})
	assert.ElementsMatch(t, []int{1, 3}, seen)
	assert.Equal(t, uint64(2), counts[1])
	assert.Equal(t, uint64(1), counts[3])
}

func TestArrayOfCountersResetsOnStartRecording(t *testing.T) {
	s := NewArrayOfCounters(2)
	s.StartRecording()
	s.Hit(0)
	s.StopRecording()
	s.StartRecording()
	var seen []int
	s.IterateOverObservations(func(i int, c uint64) { seen = append(seen, i) })
	assert.Empty(t, seen)
}

func TestStaticValueRecordsOnlyWhileRecording(t *testing.T) {
	s := NewStaticValue[int]()
	s.Observe(1, 42)
	s.StartRecording()
	s.Observe(1, 42)
	s.Observe(2, 7)
	s.StopRecording()
	s.Observe(3, 9)

	var tags []uint64
	s.IterateOverObservations(func(tag uint64, v int) { tags = append(tags, tag) })
	assert.ElementsMatch(t, []uint64{1, 2}, tags)
}

func TestTestFailureReportAndDrain(t *testing.T) {
	s := NewTestFailure()
	_, ok := s.Failure()
	assert.False(t, ok)

	s.StartRecording()
	s.Report("boom")
	msg, ok := s.Failure()
	assert.True(t, ok)
	assert.Equal(t, "boom", msg)

	s.StartRecording()
	_, ok = s.Failure()
	assert.False(t, ok)
}

func TestMergedStartsAndStopsBoth(t *testing.T) {
	a := NewArrayOfCounters(1)
	b := NewStaticValue[int]()
	m := Merged[*ArrayOfCounters, *StaticValue[int]]{A: a, B: b}
	m.StartRecording()
	a.Hit(0)
	b.Observe(1, 1)
	m.StopRecording()

	var aSeen, bSeen int
	a.IterateOverObservations(func(int, uint64) { aSeen++ })
	b.IterateOverObservations(func(uint64, int) { bSeen++ })
	assert.Equal(t, 1, aSeen)
	assert.Equal(t, 1, bSeen)
}
