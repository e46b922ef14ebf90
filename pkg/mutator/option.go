// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Optional is Rust's Option<T> ported as a discriminated struct rather than
// a nilable pointer, so the None/Some cache (the inner mutator's Cache for
// Some) has somewhere to live between mutations even while the variant is
// None.
type Optional[T any] struct {
	HasValue bool
	Value    T
}

const noneComplexity complexity.Complexity = 1.0

type optionStep struct {
	arbitraryNoneDone bool
	innerArbitrary    ArbitraryStep
	innerMutation     MutationStep
	mutatingInner      bool
}

type optionToken struct {
	wasNone      bool
	prevValue    any
	innerToken   UnmutateToken
}

// OptionMutator is the sum mutator over {None, Some(inner)}: the step
// alternates emitting None, then delegates into the inner mutator for Some
// (§4.1.2).
type OptionMutator[T any] struct {
	Inner Mutator[T]
}

func (m OptionMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return &optionStep{innerArbitrary: m.Inner.DefaultArbitraryStep()}
}

func (m OptionMutator[T]) ValidateValue(v Optional[T]) (Cache, bool) {
	if !v.HasValue {
		return nil, true
	}
	return m.Inner.ValidateValue(v.Value)
}

func (m OptionMutator[T]) DefaultMutationStep(v Optional[T], c Cache) MutationStep {
	s := &optionStep{innerArbitrary: m.Inner.DefaultArbitraryStep()}
	if v.HasValue {
		s.mutatingInner = true
		s.innerMutation = m.Inner.DefaultMutationStep(v.Value, c)
	}
	return s
}

func (m OptionMutator[T]) MaxComplexity() complexity.Complexity {
	return noneComplexity + m.Inner.MaxComplexity()
}

func (m OptionMutator[T]) MinComplexity() complexity.Complexity {
	return noneComplexity
}

func (m OptionMutator[T]) Complexity(v Optional[T], c Cache) complexity.Complexity {
	if !v.HasValue {
		return noneComplexity
	}
	return noneComplexity + m.Inner.Complexity(v.Value, c)
}

func (m OptionMutator[T]) Clone(v Optional[T]) Optional[T] {
	if !v.HasValue {
		return Optional[T]{}
	}
	return Optional[T]{HasValue: true, Value: m.Inner.Clone(v.Value)}
}

func (m OptionMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (Optional[T], complexity.Complexity, bool) {
	s := (*step).(*optionStep)
	if !s.arbitraryNoneDone {
		s.arbitraryNoneDone = true
		return Optional[T]{}, noneComplexity, true
	}
	var inner ArbitraryStep = s.innerArbitrary
	v, cplx, ok := m.Inner.OrderedArbitrary(&inner, maxCplx-noneComplexity)
	s.innerArbitrary = inner
	if !ok {
		return Optional[T]{}, 0, false
	}
	return Optional[T]{HasValue: true, Value: v}, noneComplexity + cplx, true
}

func (m OptionMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (Optional[T], complexity.Complexity) {
	if r.Float64() < 0.2 || maxCplx <= noneComplexity {
		return Optional[T]{}, noneComplexity
	}
	v, cplx := m.Inner.RandomArbitrary(r, maxCplx-noneComplexity)
	return Optional[T]{HasValue: true, Value: v}, noneComplexity + cplx
}

func (m OptionMutator[T]) OrderedMutate(v *Optional[T], c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	s := (*step).(*optionStep)
	if !v.HasValue {
		// Only transition available: switch to Some via arbitrary.
		var inner ArbitraryStep = s.innerArbitrary
		nv, cplx, ok := m.Inner.OrderedArbitrary(&inner, maxCplx-noneComplexity)
		s.innerArbitrary = inner
		if !ok {
			return nil, 0, false
		}
		token := optionToken{wasNone: true}
		v.HasValue = true
		v.Value = nv
		*c, _ = m.Inner.ValidateValue(nv)
		s.mutatingInner = true
		s.innerMutation = m.Inner.DefaultMutationStep(nv, *c)
		return token, noneComplexity + cplx, true
	}
	innerCache, _ := (*c).(Cache)
	innerStep := s.innerMutation
	token, cplx, ok := m.Inner.OrderedMutate(&v.Value, &innerCache, &innerStep, provider, maxCplx-noneComplexity)
	s.innerMutation = innerStep
	*c = innerCache
	if !ok {
		return nil, 0, false
	}
	return optionToken{innerToken: token}, noneComplexity + cplx, true
}

func (m OptionMutator[T]) RandomMutate(r *rand.Rand, v *Optional[T], c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	if !v.HasValue || r.Float64() < 0.1 {
		prevHasValue := v.HasValue
		prevValue := v.Value
		if v.HasValue {
			token := optionToken{wasNone: false, prevValue: prevValue}
			v.HasValue = false
			_ = prevHasValue
			return token, noneComplexity
		}
		nv, cplx := m.Inner.RandomArbitrary(r, maxCplx-noneComplexity)
		v.HasValue = true
		v.Value = nv
		*c, _ = m.Inner.ValidateValue(nv)
		return optionToken{wasNone: true}, noneComplexity + cplx
	}
	innerCache, _ := (*c).(Cache)
	token, cplx := m.Inner.RandomMutate(r, &v.Value, &innerCache, maxCplx-noneComplexity)
	*c = innerCache
	return optionToken{innerToken: token}, noneComplexity + cplx
}

func (m OptionMutator[T]) Unmutate(v *Optional[T], c *Cache, token UnmutateToken) {
	t := token.(optionToken)
	switch {
	case t.innerToken != nil:
		innerCache, _ := (*c).(Cache)
		m.Inner.Unmutate(&v.Value, &innerCache, t.innerToken)
		*c = innerCache
	case t.wasNone:
		v.HasValue = false
		var zero T
		v.Value = zero
		*c = nil
	default:
		v.HasValue = true
		v.Value = t.prevValue.(T)
	}
}

func (m OptionMutator[T]) VisitSubvalues(v Optional[T], c Cache, visit VisitFunc) {
	if !v.HasValue {
		return
	}
	visit(v.Value, m.Inner.Complexity(v.Value, c))
	m.Inner.VisitSubvalues(v.Value, c, visit)
}
