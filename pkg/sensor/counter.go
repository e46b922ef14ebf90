// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package sensor

// ArrayOfCounters is a CounterSensor backed by a fixed-size slice of
// counters (one per coverage edge), like the counter array pkg/covsensor
// reads through its Source interface (§4.9). Exposed directly so
// components under test in-process (as opposed to spawned as a
// subprocess) can still be exercised through the same Sensor contract.
type ArrayOfCounters struct {
	counters  []uint64
	recording bool
}

func NewArrayOfCounters(size int) *ArrayOfCounters {
	return &ArrayOfCounters{counters: make([]uint64, size)}
}

func (s *ArrayOfCounters) StartRecording() {
	s.recording = true
	for i := range s.counters {
		s.counters[i] = 0
	}
}

func (s *ArrayOfCounters) StopRecording() {
	s.recording = false
}

// Hit increments the counter for a coverage edge. No-op outside a
// recording window, matching the instrumentation-disabled behavior of
// the LLVM coverage counters pkg/covsensor reads.
func (s *ArrayOfCounters) Hit(index int) {
	if !s.recording || index < 0 || index >= len(s.counters) {
		return
	}
	s.counters[index]++
}

func (s *ArrayOfCounters) IterateOverObservations(handler func(index int, counter uint64)) {
	for i, c := range s.counters {
		if c != 0 {
			handler(i, c)
		}
	}
}
