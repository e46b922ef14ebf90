// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

// CounterFeature is the (counter_index, bucket) key the coverage pool
// treats as one witnessable feature (§4.4.1). Bucket quantizes the raw hit
// count (e.g. via a log2 bucketing) so that "hit once" and "hit a
// thousand times" are distinguishable features without one per count.
type CounterFeature struct {
	CounterIndex int
	Bucket       uint8
}

// Bucket maps a raw counter value to one of AFL-style log2 buckets: 1, 2,
// 3, 4-7, 8-15, 16-31, 32-127, 128+.
func Bucket(count uint64) uint8 {
	switch {
	case count == 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count == 3:
		return 3
	case count <= 7:
		return 4
	case count <= 15:
		return 5
	case count <= 31:
		return 6
	case count <= 127:
		return 7
	default:
		return 8
	}
}

// Coverage is the primary, simplest-to-activate-counter pool (§4.4.1): the
// scheduler's root pool for the coverage sensor's (index, count)
// observation stream.
type Coverage[T any] struct {
	engine *featurePool[T, CounterFeature]
}

func NewCoverage[T any]() *Coverage[T] {
	return &Coverage[T]{engine: newFeaturePool[T, CounterFeature]()}
}

func (p *Coverage[T]) Stats() string                      { return p.engine.Stats() }
func (p *Coverage[T]) GetRandomIndex() (Index, bool)      { return p.engine.GetRandomIndex() }
func (p *Coverage[T]) Get(idx Index) (T, bool)            { return p.engine.Get(idx) }
func (p *Coverage[T]) MarkTestCaseAsDeadEnd(idx Index)    { p.engine.MarkTestCaseAsDeadEnd(idx) }
func (p *Coverage[T]) SaveToStatsFolder() []StatsFile     { return p.engine.SaveToStatsFolder() }

func (p *Coverage[T]) Score(idx Index) float64    { return p.engine.scoreOf(idx) }
func (p *Coverage[T]) AllIndices() []Index        { return p.engine.indices() }
func (p *Coverage[T]) RemoveIndex(idx Index)      { p.engine.removeIndex(idx) }

// CounterObservations is the adapted shape a CounterSensor's iteration
// produces: one (index, rawCount) per hit counter.
type CounterObservations []CounterHit

type CounterHit struct {
	Index     int
	RawCount  uint64
}

func (p *Coverage[T]) Process(value T, observations CounterObservations, complexity float64) CorpusDelta[T] {
	features := make([]CounterFeature, len(observations))
	for i, o := range observations {
		features[i] = CounterFeature{CounterIndex: o.Index, Bucket: Bucket(o.RawCount)}
	}
	return p.engine.process(value, complexity, features)
}
