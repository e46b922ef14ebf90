// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package mutator defines the Mutator[T] contract and the primitive
// mutators and combinators built on top of it.
//
// Grounded on fuzzcheck-rs's mutators/mutator.rs (the Mutator trait) and
// the various files under mutators/ for the individual combinators. Rust
// expresses Cache/MutationStep/ArbitraryStep/UnmutateToken as associated
// types of the Mutator trait; Go generics have no equivalent of associated
// types on an interface parameterized only by T, so each is carried here as
// an opaque `any` populated and consumed solely by the owning Mutator
// implementation — the same pattern fuzzcheck-rs itself falls back to
// internally whenever it needs a `dyn Mutator` (boxed, type-erased) value.
package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// ArbitraryStep is the monotonic counter describing which from-scratch
// values a mutator has already emitted via OrderedArbitrary.
type ArbitraryStep = any

// Cache is memoized data derived from a value, authoritative once produced
// by ValidateValue, and kept in sync with the value across mutations.
type Cache = any

// MutationStep is the dense counter of which ordered mutations of one
// specific value have already been tried.
type MutationStep = any

// UnmutateToken carries enough information to exactly reverse one mutation.
// Tokens are single-use: Unmutate consumes one and the caller must discard
// it afterwards.
type UnmutateToken = any

// VisitFunc is called once per reachable child value during VisitSubvalues.
type VisitFunc func(value any, cplx complexity.Complexity)

// Mutator is the full value-space descriptor plus the verbs to produce,
// mutate, and reverse-mutate values of type T. Every method below is a
// complete behavioral contract, not just a signature: each must satisfy
// round-trip (Mutate then Unmutate restores v and c exactly),
// complexity monotonicity under budget, and finite ordered enumeration.
type Mutator[T any] interface {
	DefaultArbitraryStep() ArbitraryStep
	ValidateValue(v T) (Cache, bool)
	DefaultMutationStep(v T, c Cache) MutationStep

	MaxComplexity() complexity.Complexity
	MinComplexity() complexity.Complexity
	Complexity(v T, c Cache) complexity.Complexity

	// Clone returns a value independent of v: mutating the result, or a
	// later in-place mutation of v itself, must never be observable
	// through the other. Go has no T: Clone bound to lean on, so every
	// mutator owns this explicitly; for a mutator whose T never aliases
	// shared backing storage (value types, persistent trees), returning
	// v unchanged already satisfies the contract.
	Clone(v T) T

	// OrderedArbitrary returns the next from-scratch value within maxCplx,
	// advancing step. ok is false once enumeration is exhausted or
	// maxCplx is below MinComplexity().
	OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (value T, cplx complexity.Complexity, ok bool)

	// RandomArbitrary always produces a value respecting maxCplx.
	RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (value T, cplx complexity.Complexity)

	// OrderedMutate applies the next ordered mutation in place, advancing
	// step. ok is false once this value's mutation space is exhausted.
	OrderedMutate(v *T, c *Cache, step *MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (token UnmutateToken, cplx complexity.Complexity, ok bool)

	// RandomMutate always applies some mutation in place.
	RandomMutate(r *rand.Rand, v *T, c *Cache, maxCplx complexity.Complexity) (token UnmutateToken, cplx complexity.Complexity)

	// Unmutate reverses exactly one mutation described by token.
	Unmutate(v *T, c *Cache, token UnmutateToken)

	// VisitSubvalues enumerates child values reachable from v, each with
	// its own complexity, for the crossover engine to extract.
	VisitSubvalues(v T, c Cache, visit VisitFunc)
}
