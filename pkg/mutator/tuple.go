// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/fenwick"
)

// Pair is the product type driven by Tuple2: two sub-mutators, each mutation
// picks one field (weighted by its complexity share) and delegates
// (§4.1.2). Structs and multi-field enums reduce to nested Pairs the same
// way fuzzcheck-rs's derive macro reduces a struct to tuple-of-fields.
type Pair[A, B any] struct {
	First  A
	Second B
}

type tupleCache struct {
	cacheA, cacheB Cache
	cplxA, cplxB   complexity.Complexity
}

type tupleStep struct {
	arbitraryA, arbitraryB ArbitraryStep
	mutationA, mutationB   MutationStep
	weights                fenwick.Tree[float64]
}

type tupleToken struct {
	field int // 0 = first, 1 = second
	inner UnmutateToken
}

// Tuple2 is the product mutator over Pair[A, B].
type Tuple2[A, B any] struct {
	A Mutator[A]
	B Mutator[B]
}

func (m Tuple2[A, B]) DefaultArbitraryStep() ArbitraryStep {
	return &tupleStep{
		arbitraryA: m.A.DefaultArbitraryStep(),
		arbitraryB: m.B.DefaultArbitraryStep(),
	}
}

func (m Tuple2[A, B]) ValidateValue(v Pair[A, B]) (Cache, bool) {
	ca, ok := m.A.ValidateValue(v.First)
	if !ok {
		return nil, false
	}
	cb, ok := m.B.ValidateValue(v.Second)
	if !ok {
		return nil, false
	}
	return &tupleCache{
		cacheA: ca, cacheB: cb,
		cplxA: m.A.Complexity(v.First, ca),
		cplxB: m.B.Complexity(v.Second, cb),
	}, true
}

func (m Tuple2[A, B]) DefaultMutationStep(v Pair[A, B], c Cache) MutationStep {
	tc := c.(*tupleCache)
	var w fenwick.Tree[float64]
	w.Add(tc.cplxA + 1)
	w.Add(tc.cplxB + 1)
	return &tupleStep{
		mutationA: m.A.DefaultMutationStep(v.First, tc.cacheA),
		mutationB: m.B.DefaultMutationStep(v.Second, tc.cacheB),
		weights:   w,
	}
}

func (m Tuple2[A, B]) MaxComplexity() complexity.Complexity {
	return m.A.MaxComplexity() + m.B.MaxComplexity()
}

func (m Tuple2[A, B]) MinComplexity() complexity.Complexity {
	return m.A.MinComplexity() + m.B.MinComplexity()
}

func (m Tuple2[A, B]) Complexity(v Pair[A, B], c Cache) complexity.Complexity {
	tc := c.(*tupleCache)
	return tc.cplxA + tc.cplxB
}

func (m Tuple2[A, B]) Clone(v Pair[A, B]) Pair[A, B] {
	return Pair[A, B]{First: m.A.Clone(v.First), Second: m.B.Clone(v.Second)}
}

func (m Tuple2[A, B]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (Pair[A, B], complexity.Complexity, bool) {
	s := (*step).(*tupleStep)
	a, cplxA, ok := m.A.OrderedArbitrary(&s.arbitraryA, maxCplx-m.B.MinComplexity())
	if !ok {
		return Pair[A, B]{}, 0, false
	}
	b, cplxB, ok := m.B.OrderedArbitrary(&s.arbitraryB, maxCplx-cplxA)
	if !ok {
		return Pair[A, B]{}, 0, false
	}
	return Pair[A, B]{First: a, Second: b}, cplxA + cplxB, true
}

func (m Tuple2[A, B]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (Pair[A, B], complexity.Complexity) {
	a, cplxA := m.A.RandomArbitrary(r, maxCplx-m.B.MinComplexity())
	b, cplxB := m.B.RandomArbitrary(r, maxCplx-cplxA)
	return Pair[A, B]{First: a, Second: b}, cplxA + cplxB
}

func (m Tuple2[A, B]) OrderedMutate(v *Pair[A, B], c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	tc := (*c).(*tupleCache)
	s := (*step).(*tupleStep)

	tryField := func(field int) (UnmutateToken, complexity.Complexity, bool) {
		switch field {
		case 0:
			budget := maxCplx - tc.cplxB
			token, cplx, ok := m.A.OrderedMutate(&v.First, &tc.cacheA, &s.mutationA, provider, budget)
			if !ok {
				return nil, 0, false
			}
			tc.cplxA = cplx
			return tupleToken{field: 0, inner: token}, cplx + tc.cplxB, true
		default:
			budget := maxCplx - tc.cplxA
			token, cplx, ok := m.B.OrderedMutate(&v.Second, &tc.cacheB, &s.mutationB, provider, budget)
			if !ok {
				return nil, 0, false
			}
			tc.cplxB = cplx
			return tupleToken{field: 1, inner: token}, tc.cplxA + cplx, true
		}
	}

	// Ordered enumeration must be deterministic, so fields are tried in a
	// fixed order (First, then Second) rather than the weighted sampling
	// RandomMutate uses; once First's step is exhausted, each call falls
	// through to Second instead of stalling enumeration.
	for attempt := 0; attempt < 2; attempt++ {
		field := attempt
		token, cplx, ok := tryField(field)
		if ok {
			return token, cplx, true
		}
	}
	return nil, 0, false
}

// pickWeightedField samples a field index weighted by each field's current
// complexity share via the Fenwick tree in s.weights (RandomMutate's
// selection rule from §4.1.2).
func (s *tupleStep) pickWeightedField(r *rand.Rand) int {
	total := s.weights.Total()
	if total <= 0 {
		return r.Intn(s.weights.Len())
	}
	return s.weights.FindPrefix(r.Float64() * total)
}

func (m Tuple2[A, B]) RandomMutate(r *rand.Rand, v *Pair[A, B], c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	tc := (*c).(*tupleCache)
	s := &tupleStep{weights: fenwick.Tree[float64]{}}
	s.weights.Add(tc.cplxA + 1)
	s.weights.Add(tc.cplxB + 1)

	if s.pickWeightedField(r) == 0 {
		token, cplx := m.A.RandomMutate(r, &v.First, &tc.cacheA, maxCplx-tc.cplxB)
		tc.cplxA = cplx
		return tupleToken{field: 0, inner: token}, cplx + tc.cplxB
	}
	token, cplx := m.B.RandomMutate(r, &v.Second, &tc.cacheB, maxCplx-tc.cplxA)
	tc.cplxB = cplx
	return tupleToken{field: 1, inner: token}, tc.cplxA + cplx
}

func (m Tuple2[A, B]) Unmutate(v *Pair[A, B], c *Cache, token UnmutateToken) {
	tc := (*c).(*tupleCache)
	t := token.(tupleToken)
	if t.field == 0 {
		m.A.Unmutate(&v.First, &tc.cacheA, t.inner)
		tc.cplxA = m.A.Complexity(v.First, tc.cacheA)
	} else {
		m.B.Unmutate(&v.Second, &tc.cacheB, t.inner)
		tc.cplxB = m.B.Complexity(v.Second, tc.cacheB)
	}
}

func (m Tuple2[A, B]) VisitSubvalues(v Pair[A, B], c Cache, visit VisitFunc) {
	tc := c.(*tupleCache)
	visit(v.First, tc.cplxA)
	m.A.VisitSubvalues(v.First, tc.cacheA, visit)
	visit(v.Second, tc.cplxB)
	m.B.VisitSubvalues(v.Second, tc.cacheB, visit)
}
