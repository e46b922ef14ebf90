// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

// Unique is the unique-values pool (§4.4.2): for each distinct value V
// appearing in the observation stream, keep the simplest input producing
// it. Shares the feature-pool admission/selection algorithm with Coverage;
// V plays the role of the feature key directly instead of being bucketed.
type Unique[T any, V comparable] struct {
	engine *featurePool[T, V]
}

func NewUnique[T any, V comparable]() *Unique[T, V] {
	return &Unique[T, V]{engine: newFeaturePool[T, V]()}
}

func (p *Unique[T, V]) Stats() string                   { return p.engine.Stats() }
func (p *Unique[T, V]) GetRandomIndex() (Index, bool)   { return p.engine.GetRandomIndex() }
func (p *Unique[T, V]) Get(idx Index) (T, bool)         { return p.engine.Get(idx) }
func (p *Unique[T, V]) MarkTestCaseAsDeadEnd(idx Index)  { p.engine.MarkTestCaseAsDeadEnd(idx) }
func (p *Unique[T, V]) SaveToStatsFolder() []StatsFile  { return p.engine.SaveToStatsFolder() }

func (p *Unique[T, V]) Score(idx Index) float64 { return p.engine.scoreOf(idx) }
func (p *Unique[T, V]) AllIndices() []Index     { return p.engine.indices() }
func (p *Unique[T, V]) RemoveIndex(idx Index)   { p.engine.removeIndex(idx) }

func (p *Unique[T, V]) Process(value T, observations []V, complexity float64) CorpusDelta[T] {
	return p.engine.process(value, complexity, observations)
}
