// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Box mutates *T by transparent forwarding to an inner Mutator[T], standing
// in for Rust's owned `Box<T>` (see design notes on Rc/Arc/Box): exclusive
// ownership, no sharing, so unmutate never needs to rebuild anything beyond
// the pointee itself.
type Box[T any] struct {
	Inner Mutator[T]
}

func (b Box[T]) DefaultArbitraryStep() ArbitraryStep {
	return b.Inner.DefaultArbitraryStep()
}

func (b Box[T]) ValidateValue(v *T) (Cache, bool) {
	if v == nil {
		return nil, false
	}
	return b.Inner.ValidateValue(*v)
}

func (b Box[T]) DefaultMutationStep(v *T, c Cache) MutationStep {
	return b.Inner.DefaultMutationStep(*v, c)
}

func (b Box[T]) MaxComplexity() complexity.Complexity { return b.Inner.MaxComplexity() }
func (b Box[T]) MinComplexity() complexity.Complexity { return b.Inner.MinComplexity() }
func (b Box[T]) Complexity(v *T, c Cache) complexity.Complexity {
	return b.Inner.Complexity(*v, c)
}

// Clone allocates a new pointee: Box owns *v exclusively, so sharing the
// pointer across a pool entry and the in-flight value would let either
// side's later in-place mutation corrupt the other.
func (b Box[T]) Clone(v *T) *T {
	if v == nil {
		return nil
	}
	cloned := b.Inner.Clone(*v)
	return &cloned
}

func (b Box[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (*T, complexity.Complexity, bool) {
	v, cplx, ok := b.Inner.OrderedArbitrary(step, maxCplx)
	if !ok {
		return nil, 0, false
	}
	return &v, cplx, true
}

func (b Box[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (*T, complexity.Complexity) {
	v, cplx := b.Inner.RandomArbitrary(r, maxCplx)
	return &v, cplx
}

func (b Box[T]) OrderedMutate(v **T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return b.Inner.OrderedMutate(*v, c, step, provider, maxCplx)
}

func (b Box[T]) RandomMutate(r *rand.Rand, v **T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	return b.Inner.RandomMutate(r, *v, c, maxCplx)
}

func (b Box[T]) Unmutate(v **T, c *Cache, token UnmutateToken) {
	b.Inner.Unmutate(*v, c, token)
}

func (b Box[T]) VisitSubvalues(v *T, c Cache, visit VisitFunc) {
	visit(*v, b.Inner.Complexity(*v, c))
	b.Inner.VisitSubvalues(*v, c, visit)
}
