// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

// Integer is a mutator over a closed range [Lo, Hi] of int64, grounded on
// fuzzcheck-rs's range.rs and the binary-search enumeration scheme
// described for integer-in-range mutators: ordered enumeration emits the
// midpoint of the range first, then the midpoints of the left and right
// halves, and so on, so the first few steps cover the whole range coarsely
// before refining — this matters because a fuzzing budget that never
// reaches exhaustion should still have sampled every part of the range.
// The bounds Lo and Hi themselves come last, at the deepest level.
type Integer struct {
	Lo, Hi int64
}

// integerStep is a breadth-first index into the binary-search enumeration
// order: step 0 is the midpoint, steps 1-2 are the two children, etc.
type integerStep struct {
	visited int64
}

func (m Integer) MaxComplexity() complexity.Complexity {
	return complexity.BitWidth(m.Lo, m.Hi)
}

func (m Integer) MinComplexity() complexity.Complexity {
	return m.MaxComplexity()
}

func (m Integer) Complexity(int64, Cache) complexity.Complexity {
	return m.MaxComplexity()
}

func (m Integer) Clone(v int64) int64 { return v }

func (m Integer) DefaultArbitraryStep() ArbitraryStep {
	return &integerStep{}
}

func (m Integer) ValidateValue(v int64) (Cache, bool) {
	if v < m.Lo || v > m.Hi {
		return nil, false
	}
	return nil, true
}

func (m Integer) DefaultMutationStep(int64, Cache) MutationStep {
	return &integerStep{}
}

// binarySearchEnumerate returns the k-th value (0-indexed, breadth-first)
// of the binary-search enumeration of [lo, hi], and false once k reaches
// the count of distinct values in the range.
func binarySearchEnumerate(lo, hi int64, k int64) (int64, bool) {
	count := hi - lo + 1
	if k >= count {
		return 0, false
	}
	type segment struct{ lo, hi int64 }
	queue := []segment{{lo, hi}}
	idx := int64(0)
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if s.lo > s.hi {
			continue
		}
		mid := s.lo + (s.hi-s.lo)/2
		if idx == k {
			return mid, true
		}
		idx++
		if mid-1 >= s.lo {
			queue = append(queue, segment{s.lo, mid - 1})
		}
		if mid+1 <= s.hi {
			queue = append(queue, segment{mid + 1, s.hi})
		}
	}
	return 0, false
}

func (m Integer) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (int64, complexity.Complexity, bool) {
	if maxCplx < m.MinComplexity() {
		return 0, 0, false
	}
	s := (*step).(*integerStep)
	v, ok := binarySearchEnumerate(m.Lo, m.Hi, s.visited)
	if !ok {
		return 0, 0, false
	}
	s.visited++
	return v, m.MaxComplexity(), true
}

func (m Integer) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (int64, complexity.Complexity) {
	span := m.Hi - m.Lo
	if span < 0 {
		return m.Lo, m.MaxComplexity()
	}
	v := m.Lo + r.Int63n(span+1)
	return v, m.MaxComplexity()
}

func (m Integer) OrderedMutate(v *int64, c *Cache, step *MutationStep, _ crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}
	s := (*step).(*integerStep)
	next, ok := binarySearchEnumerate(m.Lo, m.Hi, s.visited)
	if !ok {
		return nil, 0, false
	}
	s.visited++
	old := *v
	*v = next
	return old, m.MaxComplexity(), true
}

func (m Integer) RandomMutate(r *rand.Rand, v *int64, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	old := *v
	nv, cplx := m.RandomArbitrary(r, maxCplx)
	*v = nv
	return old, cplx
}

func (m Integer) Unmutate(v *int64, c *Cache, token UnmutateToken) {
	*v = token.(int64)
}

func (m Integer) VisitSubvalues(int64, Cache, VisitFunc) {}
