// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math"
	"math/rand"
	"sync"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Recursive closes the loop for a self-referential value space (e.g. a
// grammar AST) by holding the composite mutator behind a thunk memoized on
// first call, rather than Rust's Rc+Weak pair: the builder receives a
// RecurToMutator that forwards into the same Recursive
// once it has been built, so children can recurse into the top without the
// builder needing the finished mutator up front.
type Recursive[T any] struct {
	once    sync.Once
	built   Mutator[T]
	builder func(self Mutator[T]) Mutator[T]
}

// NewRecursive builds a Recursive[T] from a constructor that receives a
// handle back to the not-yet-built composite mutator.
func NewRecursive[T any](builder func(self Mutator[T]) Mutator[T]) *Recursive[T] {
	r := &Recursive[T]{builder: builder}
	return r
}

func (r *Recursive[T]) inner() Mutator[T] {
	r.once.Do(func() {
		r.built = r.builder(&RecurToMutator[T]{root: r})
	})
	return r.built
}

func (r *Recursive[T]) DefaultArbitraryStep() ArbitraryStep { return r.inner().DefaultArbitraryStep() }
func (r *Recursive[T]) ValidateValue(v T) (Cache, bool)     { return r.inner().ValidateValue(v) }
func (r *Recursive[T]) DefaultMutationStep(v T, c Cache) MutationStep {
	return r.inner().DefaultMutationStep(v, c)
}
func (r *Recursive[T]) MaxComplexity() complexity.Complexity { return r.inner().MaxComplexity() }
func (r *Recursive[T]) MinComplexity() complexity.Complexity { return r.inner().MinComplexity() }
func (r *Recursive[T]) Complexity(v T, c Cache) complexity.Complexity {
	return r.inner().Complexity(v, c)
}
func (r *Recursive[T]) Clone(v T) T { return r.inner().Clone(v) }
func (r *Recursive[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (T, complexity.Complexity, bool) {
	return r.inner().OrderedArbitrary(step, maxCplx)
}
func (r *Recursive[T]) RandomArbitrary(rnd *rand.Rand, maxCplx complexity.Complexity) (T, complexity.Complexity) {
	return r.inner().RandomArbitrary(rnd, maxCplx)
}
func (r *Recursive[T]) OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return r.inner().OrderedMutate(v, c, step, provider, maxCplx)
}
func (r *Recursive[T]) RandomMutate(rnd *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	return r.inner().RandomMutate(rnd, v, c, maxCplx)
}
func (r *Recursive[T]) Unmutate(v *T, c *Cache, token UnmutateToken) { r.inner().Unmutate(v, c, token) }
func (r *Recursive[T]) VisitSubvalues(v T, c Cache, visit VisitFunc) {
	r.inner().VisitSubvalues(v, c, visit)
}

// RecurToMutator is the non-owning handle passed to a Recursive builder: it
// forwards every verb to the enclosing Recursive except MaxComplexity,
// which returns +Inf so that bounds computations over a recursive
// definition terminate instead of unrolling forever (per the design notes'
// "RecurToMutator::max_complexity must not recurse" requirement).
type RecurToMutator[T any] struct {
	root *Recursive[T]
}

func (r *RecurToMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return r.root.DefaultArbitraryStep()
}
func (r *RecurToMutator[T]) ValidateValue(v T) (Cache, bool) { return r.root.ValidateValue(v) }
func (r *RecurToMutator[T]) DefaultMutationStep(v T, c Cache) MutationStep {
	return r.root.DefaultMutationStep(v, c)
}
func (r *RecurToMutator[T]) MaxComplexity() complexity.Complexity { return complexity.Complexity(math.Inf(1)) }
func (r *RecurToMutator[T]) MinComplexity() complexity.Complexity {
	return r.root.MinComplexity()
}
func (r *RecurToMutator[T]) Complexity(v T, c Cache) complexity.Complexity {
	return r.root.Complexity(v, c)
}
func (r *RecurToMutator[T]) Clone(v T) T { return r.root.Clone(v) }
func (r *RecurToMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (T, complexity.Complexity, bool) {
	return r.root.OrderedArbitrary(step, maxCplx)
}
func (r *RecurToMutator[T]) RandomArbitrary(rnd *rand.Rand, maxCplx complexity.Complexity) (T, complexity.Complexity) {
	return r.root.RandomArbitrary(rnd, maxCplx)
}
func (r *RecurToMutator[T]) OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return r.root.OrderedMutate(v, c, step, provider, maxCplx)
}
func (r *RecurToMutator[T]) RandomMutate(rnd *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	return r.root.RandomMutate(rnd, v, c, maxCplx)
}
func (r *RecurToMutator[T]) Unmutate(v *T, c *Cache, token UnmutateToken) {
	r.root.Unmutate(v, c, token)
}
func (r *RecurToMutator[T]) VisitSubvalues(v T, c Cache, visit VisitFunc) {
	r.root.VisitSubvalues(v, c, visit)
}
