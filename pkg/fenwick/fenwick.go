// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package fenwick implements a generic Fenwick tree (binary indexed tree)
// supporting O(log N) prefix sums, point updates, and "find the index whose
// prefix sum first exceeds X" queries.
//
// This is promoted out of pkg/learning's private fenwickTree so that both
// the vector mutator's weighted operation sampler and the coverage pool's
// score/times_chosen selection can share one implementation instead of
// hand-rolling their own.
package fenwick

import "math"

// Number is the set of types a Tree can accumulate.
type Number interface {
	~int | ~int64 | ~float64
}

// Tree is a Fenwick tree over a dynamically growing slice of weights.
// The zero value is ready to use.
type Tree[T Number] struct {
	elements []T
}

// Len returns the number of weights currently tracked.
func (f *Tree[T]) Len() int {
	return len(f.elements)
}

// Add appends a new weight at the end of the tree.
func (f *Tree[T]) Add(value T) {
	size := len(f.elements) + 1
	for pow2 := 1; pow2 < size; pow2 *= 2 {
		prev := size - pow2
		if prev+(prev&(-prev)) == size {
			value += f.elements[prev-1]
		}
	}
	f.elements = append(f.elements, value)
}

// Update adds delta to the weight at index i.
func (f *Tree[T]) Update(i int, delta T) {
	i++
	for i <= len(f.elements) {
		f.elements[i-1] += delta
		i += i & (-i)
	}
}

// Set replaces the weight at index i, computing the necessary delta from
// the current prefix sums.
func (f *Tree[T]) Set(i int, value T) {
	cur := f.PrefixSum(i) - f.PrefixSum(i-1)
	f.Update(i, value-cur)
}

// PrefixSum returns the sum of weights at indices [0, untilIndex].
func (f *Tree[T]) PrefixSum(untilIndex int) T {
	var sum T
	i := untilIndex + 1
	for i > 0 {
		sum += f.elements[i-1]
		i -= i & (-i)
	}
	return sum
}

// Total returns the sum of all weights.
func (f *Tree[T]) Total() T {
	if len(f.elements) == 0 {
		var zero T
		return zero
	}
	return f.PrefixSum(len(f.elements) - 1)
}

// FindPrefix returns the first index i for which PrefixSum(i) > sum.
// If there is no such index, it returns Len().
func (f *Tree[T]) FindPrefix(sum T) int {
	size := len(f.elements)
	if size == 0 {
		return 0
	}
	log2 := int(math.Log2(float64(size))) + 1
	ret := 0
	for pow2 := 1 << log2; pow2 > 0; pow2 /= 2 {
		testPos := ret + pow2
		if testPos > size {
			continue
		}
		if f.elements[testPos-1] <= sum {
			ret += pow2
			sum -= f.elements[testPos-1]
		}
	}
	return ret
}

// Scale multiplies every weight by factor, used to renormalize after
// exponentially growing updates (mirrors the MAB rebalance step).
func (f *Tree[T]) Scale(factor T) {
	for i := range f.elements {
		f.elements[i] *= factor
	}
}

// Weight returns the standalone weight of index i (not a prefix sum).
func (f *Tree[T]) Weight(i int) T {
	return f.PrefixSum(i) - f.PrefixSum(i-1)
}
