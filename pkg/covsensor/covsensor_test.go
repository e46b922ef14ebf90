package covsensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 40} {
		buf := AppendUvarint(nil, v)
		got, n := ReadUvarint(buf)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestCounterDeltaRoundTrip(t *testing.T) {
	hits := []Hit{{Index: 3, Count: 1}, {Index: 10, Count: 5}, {Index: 11, Count: 2}}
	buf := EncodeCounterDeltas(hits)
	got := DecodeCounterDeltas(buf)
	assert.Equal(t, hits, got)
}

func TestSensorReportsOnlyMovedCounters(t *testing.T) {
	src := NewMemorySource(4)
	s := New(src)
	s.StartRecording()
	src.Hit(1)
	src.Hit(1)
	src.Hit(3)
	s.StopRecording()

	obs := s.Observations()
	assert.Len(t, obs, 2)
}

func TestSensorResetsBetweenRuns(t *testing.T) {
	src := NewMemorySource(2)
	s := New(src)
	s.StartRecording()
	src.Hit(0)
	s.StopRecording()

	s.StartRecording()
	s.StopRecording()
	assert.Empty(t, s.Observations())
}
