// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Shared stands in for Rust's `Rc<T>`/`Arc<T>`: a handle to a value that may
// be replaced wholesale by crossover. Go's garbage collector makes the
// refcount itself unobservable, so only the Generation counter is modeled —
// it increments every time Replace installs a new pointee, letting any
// cached data keyed off the old pointer detect staleness.
type Shared[T any] struct {
	Value      *T
	Generation uint32
}

// sharedReplaceToken is the UnmutateToken produced when crossover replaces
// the whole pointee; unmutateing restores the previous pointer and
// generation instead of delegating to the inner mutator.
type sharedReplaceToken[T any] struct {
	prevValue      *T
	prevGeneration uint32
}

// SharedMutator mutates a Shared[T] by forwarding to an inner Mutator[T]
// most of the time, but with ~10% probability in RandomMutateWithProvider,
// draws a same-typed candidate from the crossover provider and replaces the
// pointee outright (the "shared-value probe" from §4.1.2).
type SharedMutator[T any] struct {
	Inner Mutator[T]
}

const sharedCrossoverProbability = 0.10

func (m SharedMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return m.Inner.DefaultArbitraryStep()
}

func (m SharedMutator[T]) ValidateValue(v *Shared[T]) (Cache, bool) {
	if v == nil || v.Value == nil {
		return nil, false
	}
	return m.Inner.ValidateValue(*v.Value)
}

func (m SharedMutator[T]) DefaultMutationStep(v *Shared[T], c Cache) MutationStep {
	return m.Inner.DefaultMutationStep(*v.Value, c)
}

func (m SharedMutator[T]) MaxComplexity() complexity.Complexity { return m.Inner.MaxComplexity() }
func (m SharedMutator[T]) MinComplexity() complexity.Complexity { return m.Inner.MinComplexity() }
func (m SharedMutator[T]) Complexity(v *Shared[T], c Cache) complexity.Complexity {
	return m.Inner.Complexity(*v.Value, c)
}

// Clone copies the pointee rather than the handle: RandomMutate writes
// through v.Value in place, so a pool entry holding the same *T as the
// in-flight value would see it revert out from under it the moment
// Unmutate (or the next mutation) runs.
func (m SharedMutator[T]) Clone(v *Shared[T]) *Shared[T] {
	if v == nil || v.Value == nil {
		return v
	}
	cloned := m.Inner.Clone(*v.Value)
	return &Shared[T]{Value: &cloned, Generation: v.Generation}
}

func (m SharedMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (*Shared[T], complexity.Complexity, bool) {
	v, cplx, ok := m.Inner.OrderedArbitrary(step, maxCplx)
	if !ok {
		return nil, 0, false
	}
	return &Shared[T]{Value: &v}, cplx, true
}

func (m SharedMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (*Shared[T], complexity.Complexity) {
	v, cplx := m.Inner.RandomArbitrary(r, maxCplx)
	return &Shared[T]{Value: &v}, cplx
}

func (m SharedMutator[T]) OrderedMutate(v *Shared[T], c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return m.Inner.OrderedMutate(v.Value, c, step, provider, maxCplx)
}

// RandomMutate never has crossover material of its own (the Mutator
// interface doesn't thread a provider through this verb); it always
// forwards to the inner mutator. Use RandomMutateWithProvider when a
// crossover source is available.
func (m SharedMutator[T]) RandomMutate(r *rand.Rand, v *Shared[T], c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	return m.Inner.RandomMutate(r, v.Value, c, maxCplx)
}

// RandomMutateWithProvider is the crossover-aware variant of RandomMutate
// for callers that hold a provider: with ~10% probability it draws a
// same-typed candidate from provider and replaces the pointee, recording a
// sharedReplaceToken; otherwise it forwards to the inner mutator.
func (m SharedMutator[T]) RandomMutateWithProvider(r *rand.Rand, v *Shared[T], c *Cache, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	if provider != nil && r.Float64() < sharedCrossoverProbability {
		if token, cplx, ok := m.tryCrossoverReplace(provider, v, maxCplx); ok {
			if newCache, valid := m.Inner.ValidateValue(*v.Value); valid {
				*c = newCache
			}
			return token, cplx
		}
	}
	return m.Inner.RandomMutate(r, v.Value, c, maxCplx)
}

func (m SharedMutator[T]) tryCrossoverReplace(provider crossover.SubValueProvider, v *Shared[T], maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	var zero T
	cursor := &crossover.Cursor{}
	for {
		candidate, ok := provider.GetSubvalue(typeOf(zero), maxCplx, cursor)
		if !ok {
			return nil, 0, false
		}
		typed, ok := candidate.(T)
		if !ok {
			continue
		}
		if _, valid := m.Inner.ValidateValue(typed); !valid {
			continue
		}
		token := sharedReplaceToken[T]{prevValue: v.Value, prevGeneration: v.Generation}
		v.Value = &typed
		v.Generation++
		return token, m.Inner.Complexity(typed, nil), true
	}
}

func (m SharedMutator[T]) Unmutate(v *Shared[T], c *Cache, token UnmutateToken) {
	if replace, ok := token.(sharedReplaceToken[T]); ok {
		v.Value = replace.prevValue
		v.Generation = replace.prevGeneration
		return
	}
	m.Inner.Unmutate(v.Value, c, token)
}

func (m SharedMutator[T]) VisitSubvalues(v *Shared[T], c Cache, visit VisitFunc) {
	visit(*v.Value, m.Inner.Complexity(*v.Value, c))
	m.Inner.VisitSubvalues(*v.Value, c, visit)
}
