// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/valias"
)

// AlternationValue tags which variant mutator produced the contained value
// — the reduction target for a Rust enum, per §4.1.2's "alternation" entry.
type AlternationValue struct {
	Variant int
	Value   any
}

type alternationCache struct {
	inner Cache
	cplx  complexity.Complexity
}

type alternationStep struct {
	arbitraryVariant int
	variantArbitrary []ArbitraryStep
	mutationStep     MutationStep
}

type alternationToken struct {
	replaced     bool
	prevVariant  int
	prevValue    any
	prevCache    Cache
	innerToken   UnmutateToken
}

// Alternation is the union of sub-mutators that can all produce T: ordered
// enumeration interleaves the children round-robin; random mutation picks
// a variant weighted by the caller-declared fixed probabilities (via a Vose
// alias table, since those weights don't change at runtime) and either
// mutates within the current variant or switches, emitting a replace token.
type Alternation[T any] struct {
	Variants []Mutator[T]
	weights  *valias.Table
}

// NewAlternation builds an Alternation with declared per-variant weights
// for variant selection on switch.
func NewAlternation[T any](variants []Mutator[T], weights []float64) Alternation[T] {
	return Alternation[T]{Variants: variants, weights: valias.New(weights)}
}

func (m Alternation[T]) DefaultArbitraryStep() ArbitraryStep {
	steps := make([]ArbitraryStep, len(m.Variants))
	for i, v := range m.Variants {
		steps[i] = v.DefaultArbitraryStep()
	}
	return &alternationStep{variantArbitrary: steps}
}

func (m Alternation[T]) ValidateValue(v T) (Cache, bool) {
	for i, variant := range m.Variants {
		if c, ok := variant.ValidateValue(v); ok {
			return &alternationCache{inner: &taggedCache{variant: i, cache: c}, cplx: variant.Complexity(v, c) + 1}, true
		}
	}
	return nil, false
}

type taggedCache struct {
	variant int
	cache   Cache
}

func (m Alternation[T]) DefaultMutationStep(v T, c Cache) MutationStep {
	ac := c.(*alternationCache)
	tc := ac.inner.(*taggedCache)
	return &alternationStep{
		mutationStep: m.Variants[tc.variant].DefaultMutationStep(v, tc.cache),
	}
}

func (m Alternation[T]) MaxComplexity() complexity.Complexity {
	var maxC complexity.Complexity
	for _, v := range m.Variants {
		if c := v.MaxComplexity(); c > maxC {
			maxC = c
		}
	}
	return maxC + 1
}

func (m Alternation[T]) MinComplexity() complexity.Complexity {
	if len(m.Variants) == 0 {
		return 0
	}
	minC := m.Variants[0].MinComplexity()
	for _, v := range m.Variants[1:] {
		if c := v.MinComplexity(); c < minC {
			minC = c
		}
	}
	return minC + 1
}

func (m Alternation[T]) Complexity(v T, c Cache) complexity.Complexity {
	return c.(*alternationCache).cplx
}

// Clone has no cache to read the active variant from (the interface
// doesn't carry one), so it rediscovers it the same way ValidateValue
// does: the first variant that accepts v is the one that produced it.
func (m Alternation[T]) Clone(v T) T {
	for _, variant := range m.Variants {
		if _, ok := variant.ValidateValue(v); ok {
			return variant.Clone(v)
		}
	}
	return v
}

func (m Alternation[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (T, complexity.Complexity, bool) {
	var zero T
	s := (*step).(*alternationStep)
	n := len(m.Variants)
	for tries := 0; tries < n; tries++ {
		variant := s.arbitraryVariant % n
		s.arbitraryVariant++
		var as ArbitraryStep = s.variantArbitrary[variant]
		v, cplx, ok := m.Variants[variant].OrderedArbitrary(&as, maxCplx-1)
		s.variantArbitrary[variant] = as
		if ok {
			return v, cplx + 1, true
		}
	}
	return zero, 0, false
}

func (m Alternation[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (T, complexity.Complexity) {
	variant := r.Intn(len(m.Variants))
	v, cplx := m.Variants[variant].RandomArbitrary(r, maxCplx-1)
	return v, cplx + 1
}

func (m Alternation[T]) OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	ac := (*c).(*alternationCache)
	tc := ac.inner.(*taggedCache)
	s := (*step).(*alternationStep)
	token, cplx, ok := m.Variants[tc.variant].OrderedMutate(v, &tc.cache, &s.mutationStep, provider, maxCplx-1)
	if !ok {
		return nil, 0, false
	}
	ac.cplx = cplx + 1
	return alternationToken{innerToken: token}, ac.cplx, true
}

func (m Alternation[T]) RandomMutate(r *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	ac := (*c).(*alternationCache)
	tc := ac.inner.(*taggedCache)

	if m.weights != nil && r.Float64() < 0.15 {
		newVariant := m.weights.Sample(r)
		if newVariant != tc.variant {
			prevValue := *v
			prevVariant := tc.variant
			prevCache := tc.cache
			nv, cplx := m.Variants[newVariant].RandomArbitrary(r, maxCplx-1)
			*v = nv
			tc.variant = newVariant
			tc.cache, _ = m.Variants[newVariant].ValidateValue(nv)
			ac.cplx = cplx + 1
			return alternationToken{
				replaced:    true,
				prevVariant: prevVariant,
				prevValue:   prevValue,
				prevCache:   prevCache,
			}, ac.cplx
		}
	}
	token, cplx := m.Variants[tc.variant].RandomMutate(r, v, &tc.cache, maxCplx-1)
	ac.cplx = cplx + 1
	return alternationToken{innerToken: token}, ac.cplx
}

func (m Alternation[T]) Unmutate(v *T, c *Cache, token UnmutateToken) {
	ac := (*c).(*alternationCache)
	tc := ac.inner.(*taggedCache)
	t := token.(alternationToken)
	if t.replaced {
		*v = t.prevValue.(T)
		tc.variant = t.prevVariant
		tc.cache = t.prevCache
		ac.cplx = m.Variants[tc.variant].Complexity(*v, tc.cache) + 1
		return
	}
	m.Variants[tc.variant].Unmutate(v, &tc.cache, t.innerToken)
	ac.cplx = m.Variants[tc.variant].Complexity(*v, tc.cache) + 1
}

func (m Alternation[T]) VisitSubvalues(v T, c Cache, visit VisitFunc) {
	ac := c.(*alternationCache)
	tc := ac.inner.(*taggedCache)
	m.Variants[tc.variant].VisitSubvalues(v, tc.cache, visit)
}
