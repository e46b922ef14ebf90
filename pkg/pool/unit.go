// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

import "github.com/loiclec/fuzzcheck-go/pkg/slab"

// Unit contains a single fixed value and returns its index from every
// GetRandomIndex (§4.4.6), for runs that repeat one value without
// coverage feedback.
type Unit[T any] struct {
	arena *slab.Arena[T]
	idx   Index
}

func NewUnit[T any](value T) *Unit[T] {
	arena := slab.New[T]()
	idx := arena.Insert(value)
	return &Unit[T]{arena: arena, idx: idx}
}

func (p *Unit[T]) Stats() string { return "unit" }

func (p *Unit[T]) GetRandomIndex() (Index, bool) { return p.idx, true }

func (p *Unit[T]) Get(idx Index) (T, bool) { return p.arena.Get(idx) }

func (p *Unit[T]) MarkTestCaseAsDeadEnd(idx Index) {}

func (p *Unit[T]) SaveToStatsFolder() []StatsFile { return nil }

// Process replaces the held value unconditionally, ignoring observations
// and complexity, and always returns an empty delta.
func (p *Unit[T]) Process(value T, observations any, complexity float64) CorpusDelta[T] {
	p.arena.Set(p.idx, value)
	return CorpusDelta[T]{}
}
