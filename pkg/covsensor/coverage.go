// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package covsensor

import (
	"github.com/loiclec/fuzzcheck-go/pkg/hibitset"
	"github.com/loiclec/fuzzcheck-go/pkg/pool"
)

// Source abstracts the process-wide counter region: in the compiled-in
// case it reads directly from the instrumentation section the compiler
// embedded; in the substitute case (§9) it wraps a user-maintained
// counter array updated explicitly by the harness. Either way it
// produces the raw per-counter array snapshot covsensor diffs between
// recording windows.
type Source interface {
	// Snapshot returns the current counter values, indexed by counter id.
	Snapshot() []uint64
	// Reset zeroes every counter the source tracks.
	Reset()
}

// MemorySource is a Source backed by a plain in-process slice, the
// substitute path §9 calls for when the target has no compiler-emitted
// counter section (e.g. a pure-Go function under test with no cgo/sancov
// instrumentation).
type MemorySource struct {
	counters []uint64
	dirty    *hibitset.Set
}

func NewMemorySource(size int) *MemorySource {
	return &MemorySource{counters: make([]uint64, size), dirty: hibitset.New()}
}

func (s *MemorySource) Hit(index int) {
	if index >= 0 && index < len(s.counters) {
		s.counters[index]++
		s.dirty.Set(index)
	}
}

func (s *MemorySource) Snapshot() []uint64 {
	out := make([]uint64, len(s.counters))
	copy(out, s.counters)
	return out
}

func (s *MemorySource) Reset() {
	for i := range s.counters {
		s.counters[i] = 0
	}
	s.dirty.Drain(func(uint64) {})
}

// DrainDirty reports every counter index Hit since the last Reset, in
// ascending order, and forgets them. Sensor uses this instead of scanning
// the whole counter array when the source supports it.
func (s *MemorySource) DrainDirty(f func(index int)) {
	s.dirty.Drain(func(e uint64) { f(int(e)) })
}

// dirtyDrainer is implemented by sources that can report which indices
// moved since the last Reset, so IterateOverObservations doesn't need to
// scan the whole counter array.
type dirtyDrainer interface {
	DrainDirty(f func(index int))
}

// Sensor is the process-wide coverage sensor: it resets Source at
// StartRecording and snapshots it at StopRecording, so
// IterateOverObservations reports only counters that moved during the
// just-finished run, matching pkg/sensor.CounterSensor's contract.
type Sensor struct {
	source      Source
	before      []uint64
	after       []uint64
	dirtyBefore []int
	recording   bool
}

func New(source Source) *Sensor {
	return &Sensor{source: source}
}

func (s *Sensor) StartRecording() {
	s.recording = true
	s.source.Reset()
	s.before = s.source.Snapshot()
}

func (s *Sensor) StopRecording() {
	s.recording = false
	s.after = s.source.Snapshot()
	s.dirtyBefore = nil
	if d, ok := s.source.(dirtyDrainer); ok {
		d.DrainDirty(func(index int) { s.dirtyBefore = append(s.dirtyBefore, index) })
	}
}

func (s *Sensor) IterateOverObservations(handler func(index int, counter uint64)) {
	if s.dirtyBefore != nil {
		for _, i := range s.dirtyBefore {
			if i >= 0 && i < len(s.after) && s.after[i] != 0 {
				handler(i, s.after[i])
			}
		}
		return
	}
	for i, c := range s.after {
		if c != 0 {
			handler(i, c)
		}
	}
}

// Observations adapts the sensor's current hit set into the shape
// pkg/pool.Coverage.Process expects.
func (s *Sensor) Observations() pool.CounterObservations {
	var obs pool.CounterObservations
	s.IterateOverObservations(func(index int, counter uint64) {
		obs = append(obs, pool.CounterHit{Index: index, RawCount: counter})
	})
	return obs
}
