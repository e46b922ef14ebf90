// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

type dictionaryArbitraryStep struct {
	dictIndex int
	inner     ArbitraryStep
}

const dictionaryReplaceProbability = 0.05

// Dictionary prepends a fixed list of user-supplied values to the base
// mutator's arbitrary enumeration, and occasionally (≈5%) replaces the
// value with a dictionary entry during mutation (§4.1.2). Grounded on
// fuzzcheck-rs's mutators/dictionary.rs.
type Dictionary[T any] struct {
	Base    Mutator[T]
	Entries []T
}

func (m Dictionary[T]) DefaultArbitraryStep() ArbitraryStep {
	return &dictionaryArbitraryStep{inner: m.Base.DefaultArbitraryStep()}
}

func (m Dictionary[T]) ValidateValue(v T) (Cache, bool) {
	return m.Base.ValidateValue(v)
}

func (m Dictionary[T]) DefaultMutationStep(v T, c Cache) MutationStep {
	return m.Base.DefaultMutationStep(v, c)
}

func (m Dictionary[T]) MaxComplexity() complexity.Complexity { return m.Base.MaxComplexity() }
func (m Dictionary[T]) MinComplexity() complexity.Complexity { return m.Base.MinComplexity() }
func (m Dictionary[T]) Complexity(v T, c Cache) complexity.Complexity {
	return m.Base.Complexity(v, c)
}

func (m Dictionary[T]) Clone(v T) T { return m.Base.Clone(v) }

func (m Dictionary[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (T, complexity.Complexity, bool) {
	s := (*step).(*dictionaryArbitraryStep)
	if s.dictIndex < len(m.Entries) {
		v := m.Entries[s.dictIndex]
		s.dictIndex++
		if c, ok := m.Base.ValidateValue(v); ok {
			return v, m.Base.Complexity(v, c), true
		}
	}
	return m.Base.OrderedArbitrary(&s.inner, maxCplx)
}

func (m Dictionary[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (T, complexity.Complexity) {
	if len(m.Entries) > 0 && r.Float64() < dictionaryReplaceProbability {
		v := m.Entries[r.Intn(len(m.Entries))]
		if c, ok := m.Base.ValidateValue(v); ok {
			return v, m.Base.Complexity(v, c)
		}
	}
	return m.Base.RandomArbitrary(r, maxCplx)
}

func (m Dictionary[T]) OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return m.Base.OrderedMutate(v, c, step, provider, maxCplx)
}

func (m Dictionary[T]) RandomMutate(r *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	if len(m.Entries) > 0 && r.Float64() < dictionaryReplaceProbability {
		entry := m.Entries[r.Intn(len(m.Entries))]
		if newCache, ok := m.Base.ValidateValue(entry); ok {
			old := *v
			oldCache := *c
			*v = entry
			*c = newCache
			return dictionaryToken[T]{prevValue: old, prevCache: oldCache}, m.Base.Complexity(entry, newCache)
		}
	}
	return m.Base.RandomMutate(r, v, c, maxCplx)
}

type dictionaryToken[T any] struct {
	prevValue T
	prevCache Cache
}

func (m Dictionary[T]) Unmutate(v *T, c *Cache, token UnmutateToken) {
	if t, ok := token.(dictionaryToken[T]); ok {
		*v = t.prevValue
		*c = t.prevCache
		return
	}
	m.Base.Unmutate(v, c, token)
}

func (m Dictionary[T]) VisitSubvalues(v T, c Cache, visit VisitFunc) {
	m.Base.VisitSubvalues(v, c, visit)
}
