// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Struct{} plays the role of Rust's PhantomData/unit type: a single
// constant value of zero complexity. Grounded on fuzzcheck-rs's
// mutators/unit.rs.
type Unit struct{}

func (Unit) DefaultArbitraryStep() ArbitraryStep        { return boolStepNever }
func (Unit) ValidateValue(struct{}) (Cache, bool)       { return nil, true }
func (Unit) DefaultMutationStep(struct{}, Cache) MutationStep { return false }
func (Unit) MaxComplexity() complexity.Complexity       { return 0 }
func (Unit) MinComplexity() complexity.Complexity       { return 0 }
func (Unit) Complexity(struct{}, Cache) complexity.Complexity { return 0 }
func (Unit) Clone(struct{}) struct{}                           { return struct{}{} }

func (Unit) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (struct{}, complexity.Complexity, bool) {
	s := (*step).(boolArbitraryStep)
	if s != boolStepNever {
		return struct{}{}, 0, false
	}
	*step = boolStepOnce
	return struct{}{}, 0, true
}

func (Unit) RandomArbitrary(*rand.Rand, complexity.Complexity) (struct{}, complexity.Complexity) {
	return struct{}{}, 0
}

func (Unit) OrderedMutate(v *struct{}, c *Cache, step *MutationStep, _ crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	return nil, 0, false
}

func (Unit) RandomMutate(*rand.Rand, *struct{}, *Cache, complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	return nil, 0
}

func (Unit) Unmutate(*struct{}, *Cache, UnmutateToken) {}

func (Unit) VisitSubvalues(struct{}, Cache, VisitFunc) {}
