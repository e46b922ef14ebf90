// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package pool implements the Pool protocol (§4.4): the corpus-shaped
// memory of the scheduler, storing interesting inputs and exposing
// weighted selection over them across the seven concrete pool variants
// (§4.4.1-§4.4.7).
package pool

import (
	"github.com/loiclec/fuzzcheck-go/pkg/slab"
)

// Index is the opaque handle a Pool hands back from GetRandomIndex and
// receives in Process/MarkTestCaseAsDeadEnd; it is a generation-checked
// slab.Key so a stale index (from an input that has since been replaced)
// is detected rather than silently misused.
type Index = slab.Key

// AddedEntry is the "add" half of a CorpusDelta: the value admitted plus
// the index it was stored under.
type AddedEntry[T any] struct {
	Value T
	Index Index
}

// CorpusDelta reports what a Process/Minify call changed in the pool, so
// the scheduler can mirror it onto the on-disk corpus and the event log
// (§6.2).
type CorpusDelta[T any] struct {
	Add    *AddedEntry[T]
	Remove []Index
}

// IsEmpty reports whether the delta changed nothing, the common case when
// Process sees a rerun of already-witnessed observations (§4.4.1's
// idempotent-reprocessing requirement).
func (d CorpusDelta[T]) IsEmpty() bool {
	return d.Add == nil && len(d.Remove) == 0
}

// Pool is implemented by every concrete pool variant in this package. T is
// the test-case value type stored in the pool; Process receives the
// observations produced by a Sensor, already adapted to whatever shape
// this pool variant expects (a CounterSensor's (index, count) stream for
// the coverage pool, a scalar for maximise-single-value, and so on) —
// adaptation happens at the call site: sensor-to-pool wiring is the
// scheduler's job, not the pool's.
type Pool[T any, Obs any] interface {
	Stats() string
	GetRandomIndex() (Index, bool)
	Get(idx Index) (T, bool)
	Process(value T, observations Obs, complexity float64) CorpusDelta[T]
	MarkTestCaseAsDeadEnd(idx Index)
	SaveToStatsFolder() []StatsFile
}

// StatsFile is one (relative path, contents) pair a pool wants written
// under the stats directory (§6.2).
type StatsFile struct {
	Path  string
	Bytes []byte
}

// Scored is implemented by pool variants that can rank their own entries
// by usefulness, enabling corpus minification (§4.5's *minify-corpus*:
// "repeatedly picking and removing the least-useful entry"). Coverage and
// Unique both expose it via the shared featurePool engine; Maximise, Unit
// and TestFailure don't, since shrinking them has no comparable notion of
// "least useful" (each either holds exactly one entry or a capped handful
// keyed by distinct failure id).
type Scored interface {
	Score(idx Index) float64
	AllIndices() []Index
	RemoveIndex(idx Index)
}
