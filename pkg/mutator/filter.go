// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Filter refuses values failing Predicate: ordered/random mutate loop the
// base mutator until the predicate holds, unmutateing rejected attempts in
// between (§4.1.2). maxRejectionAttempts bounds the loop so a predicate
// that's nearly always false doesn't spin indefinitely within one call.
type Filter[T any] struct {
	Base      Mutator[T]
	Predicate func(T) bool
}

const maxRejectionAttempts = 100

func (m Filter[T]) DefaultArbitraryStep() ArbitraryStep {
	return m.Base.DefaultArbitraryStep()
}

func (m Filter[T]) ValidateValue(v T) (Cache, bool) {
	if !m.Predicate(v) {
		return nil, false
	}
	return m.Base.ValidateValue(v)
}

func (m Filter[T]) DefaultMutationStep(v T, c Cache) MutationStep {
	return m.Base.DefaultMutationStep(v, c)
}

func (m Filter[T]) MaxComplexity() complexity.Complexity { return m.Base.MaxComplexity() }
func (m Filter[T]) MinComplexity() complexity.Complexity { return m.Base.MinComplexity() }
func (m Filter[T]) Complexity(v T, c Cache) complexity.Complexity {
	return m.Base.Complexity(v, c)
}

func (m Filter[T]) Clone(v T) T { return m.Base.Clone(v) }

func (m Filter[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (T, complexity.Complexity, bool) {
	var zero T
	for i := 0; i < maxRejectionAttempts; i++ {
		v, cplx, ok := m.Base.OrderedArbitrary(step, maxCplx)
		if !ok {
			return zero, 0, false
		}
		if m.Predicate(v) {
			return v, cplx, true
		}
	}
	return zero, 0, false
}

func (m Filter[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (T, complexity.Complexity) {
	for i := 0; i < maxRejectionAttempts; i++ {
		v, cplx := m.Base.RandomArbitrary(r, maxCplx)
		if m.Predicate(v) {
			return v, cplx
		}
	}
	return m.Base.RandomArbitrary(r, maxCplx)
}

func (m Filter[T]) OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	for i := 0; i < maxRejectionAttempts; i++ {
		token, cplx, ok := m.Base.OrderedMutate(v, c, step, provider, maxCplx)
		if !ok {
			return nil, 0, false
		}
		if m.Predicate(*v) {
			return token, cplx, true
		}
		m.Base.Unmutate(v, c, token)
	}
	return nil, 0, false
}

func (m Filter[T]) RandomMutate(r *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	for i := 0; i < maxRejectionAttempts; i++ {
		token, cplx := m.Base.RandomMutate(r, v, c, maxCplx)
		if m.Predicate(*v) {
			return token, cplx
		}
		m.Base.Unmutate(v, c, token)
	}
	return m.Base.RandomMutate(r, v, c, maxCplx)
}

func (m Filter[T]) Unmutate(v *T, c *Cache, token UnmutateToken) {
	m.Base.Unmutate(v, c, token)
}

func (m Filter[T]) VisitSubvalues(v T, c Cache, visit VisitFunc) {
	m.Base.VisitSubvalues(v, c, visit)
}
