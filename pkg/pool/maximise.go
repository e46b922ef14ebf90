// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

import "github.com/loiclec/fuzzcheck-go/pkg/slab"

// Maximise keeps exactly one entry: the one whose observation compares
// greatest under Less, ties broken by lower complexity. §4.4.3 describes
// the scalar ("maximise-single-value") specialization and §4.4.4 the
// general "observations are comparable as a whole" case; both reduce to
// the same algorithm parameterized by a comparator, so one type serves
// both.
type Maximise[T any, O any] struct {
	Less func(a, b O) bool

	arena    *slab.Arena[T]
	hasEntry bool
	obs      O
	cplx     float64
	idx      Index
}

func NewMaximise[T any, O any](less func(a, b O) bool) *Maximise[T, O] {
	return &Maximise[T, O]{Less: less, arena: slab.New[T]()}
}

func (p *Maximise[T, O]) Stats() string {
	if !p.hasEntry {
		return "empty"
	}
	return "holds 1 entry"
}

func (p *Maximise[T, O]) GetRandomIndex() (Index, bool) {
	if !p.hasEntry {
		return Index{}, false
	}
	return p.idx, true
}

func (p *Maximise[T, O]) Get(idx Index) (T, bool) {
	return p.arena.Get(idx)
}

func (p *Maximise[T, O]) MarkTestCaseAsDeadEnd(idx Index) {}

func (p *Maximise[T, O]) SaveToStatsFolder() []StatsFile { return nil }

// Process replaces the held entry if observation beats the current one
// (strictly greater, or equal-and-lower-complexity), and is a no-op
// otherwise.
func (p *Maximise[T, O]) Process(value T, observation O, complexity float64) CorpusDelta[T] {
	if p.hasEntry {
		if p.Less(observation, p.obs) {
			return CorpusDelta[T]{}
		}
		if !p.Less(p.obs, observation) && complexity >= p.cplx {
			return CorpusDelta[T]{}
		}
	}
	var removed []Index
	if p.hasEntry {
		removed = []Index{p.idx}
		p.arena.Remove(p.idx)
	}
	p.idx = p.arena.Insert(value)
	p.obs = observation
	p.cplx = complexity
	p.hasEntry = true
	return CorpusDelta[T]{Add: &AddedEntry[T]{Value: value, Index: p.idx}, Remove: removed}
}
