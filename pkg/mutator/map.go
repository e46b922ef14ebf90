// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

type mapCache[From any] struct {
	from      From
	fromCache Cache
}

// Map pairs a base Mutator[From] with Parse/Build so that a To value can be
// mutated by mutating its From representation and rebuilding. Grounded on
// fuzzcheck-rs's mutators/map.rs; the From form lives in the cache so it
// doesn't need to be re-derived from To on every mutation.
type Map[From, To any] struct {
	Base  Mutator[From]
	Parse func(To) (From, bool)
	Build func(From) To
}

func (m Map[From, To]) DefaultArbitraryStep() ArbitraryStep {
	return m.Base.DefaultArbitraryStep()
}

func (m Map[From, To]) ValidateValue(v To) (Cache, bool) {
	from, ok := m.Parse(v)
	if !ok {
		return nil, false
	}
	fc, ok := m.Base.ValidateValue(from)
	if !ok {
		return nil, false
	}
	return &mapCache[From]{from: from, fromCache: fc}, true
}

func (m Map[From, To]) DefaultMutationStep(v To, c Cache) MutationStep {
	mc := c.(*mapCache[From])
	return m.Base.DefaultMutationStep(mc.from, mc.fromCache)
}

func (m Map[From, To]) MaxComplexity() complexity.Complexity { return m.Base.MaxComplexity() }
func (m Map[From, To]) MinComplexity() complexity.Complexity { return m.Base.MinComplexity() }
func (m Map[From, To]) Complexity(v To, c Cache) complexity.Complexity {
	mc := c.(*mapCache[From])
	return m.Base.Complexity(mc.from, mc.fromCache)
}

func (m Map[From, To]) Clone(v To) To {
	from, ok := m.Parse(v)
	if !ok {
		return v
	}
	return m.Build(m.Base.Clone(from))
}

func (m Map[From, To]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (To, complexity.Complexity, bool) {
	var zero To
	from, cplx, ok := m.Base.OrderedArbitrary(step, maxCplx)
	if !ok {
		return zero, 0, false
	}
	return m.Build(from), cplx, true
}

func (m Map[From, To]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (To, complexity.Complexity) {
	from, cplx := m.Base.RandomArbitrary(r, maxCplx)
	return m.Build(from), cplx
}

func (m Map[From, To]) OrderedMutate(v *To, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	mc := (*c).(*mapCache[From])
	token, cplx, ok := m.Base.OrderedMutate(&mc.from, &mc.fromCache, step, provider, maxCplx)
	if !ok {
		return nil, 0, false
	}
	*v = m.Build(mc.from)
	return token, cplx, true
}

func (m Map[From, To]) RandomMutate(r *rand.Rand, v *To, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	mc := (*c).(*mapCache[From])
	token, cplx := m.Base.RandomMutate(r, &mc.from, &mc.fromCache, maxCplx)
	*v = m.Build(mc.from)
	return token, cplx
}

func (m Map[From, To]) Unmutate(v *To, c *Cache, token UnmutateToken) {
	mc := (*c).(*mapCache[From])
	m.Base.Unmutate(&mc.from, &mc.fromCache, token)
	*v = m.Build(mc.from)
}

func (m Map[From, To]) VisitSubvalues(v To, c Cache, visit VisitFunc) {
	mc := c.(*mapCache[From])
	m.Base.VisitSubvalues(mc.from, mc.fromCache, visit)
}
