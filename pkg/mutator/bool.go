// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

const boolComplexity complexity.Complexity = 1.0

type boolArbitraryStep int

const (
	boolStepNever boolArbitraryStep = iota
	boolStepOnce
	boolStepTwice
)

// Bool is the default mutator for bool: three arbitrary states
// (never -> false -> true -> exhausted), and a single-use mutation that
// flips the value once per step cycle.
type Bool struct{}

func (Bool) DefaultArbitraryStep() ArbitraryStep {
	return boolStepNever
}

func (Bool) ValidateValue(bool) (Cache, bool) {
	return nil, true
}

func (Bool) DefaultMutationStep(bool, Cache) MutationStep {
	return false
}

func (Bool) MaxComplexity() complexity.Complexity { return boolComplexity }
func (Bool) MinComplexity() complexity.Complexity { return boolComplexity }
func (Bool) Complexity(bool, Cache) complexity.Complexity {
	return boolComplexity
}

func (Bool) Clone(v bool) bool { return v }

func (b Bool) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (bool, complexity.Complexity, bool) {
	if maxCplx < b.MinComplexity() {
		return false, 0, false
	}
	s := (*step).(boolArbitraryStep)
	switch s {
	case boolStepNever:
		*step = boolStepOnce
		return false, boolComplexity, true
	case boolStepOnce:
		*step = boolStepTwice
		return true, boolComplexity, true
	default:
		return false, 0, false
	}
}

func (Bool) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (bool, complexity.Complexity) {
	return r.Intn(2) == 1, boolComplexity
}

func (b Bool) OrderedMutate(v *bool, c *Cache, step *MutationStep, _ crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	if maxCplx < b.MinComplexity() {
		return nil, 0, false
	}
	done := (*step).(bool)
	if done {
		return nil, 0, false
	}
	*step = true
	old := *v
	*v = !*v
	return old, boolComplexity, true
}

func (Bool) RandomMutate(r *rand.Rand, v *bool, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	old := *v
	*v = !*v
	return old, boolComplexity
}

func (Bool) Unmutate(v *bool, c *Cache, token UnmutateToken) {
	*v = token.(bool)
}

func (Bool) VisitSubvalues(bool, Cache, VisitFunc) {}
