// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package complexity collects the small arithmetic helpers every mutator
// needs to reason about how "large" a value is and how to sample within a
// complexity budget.
package complexity

import (
	"math"
	"math/rand"
)

// Complexity is a non-negative real number characterizing the size of a
// value, used throughout the engine as the fuzzing budget.
type Complexity = float64

// SizeToComplexity maps a container length to the number of bits needed to
// represent a choice of length in [0, N]: ceil(log2(N+1)).
//
// An N-element container contributes this many bits to its complexity,
// before the complexity of its elements is added in.
func SizeToComplexity(size int) Complexity {
	if size <= 0 {
		return 0
	}
	return math.Ceil(math.Log2(float64(size) + 1))
}

// BitWidth returns the number of bits needed to represent every value in
// [lo, hi], used as the complexity of integer-in-range mutators.
func BitWidth(lo, hi int64) Complexity {
	span := uint64(hi - lo)
	if span == 0 {
		return 0
	}
	return math.Ceil(math.Log2(float64(span) + 1))
}

// UniformFloat64 returns a uniformly distributed float64 in [lo, hi).
// It panics if hi < lo rather than silently clamping.
func UniformFloat64(r *rand.Rand, lo, hi float64) float64 {
	if hi < lo {
		panic("complexity.UniformFloat64: hi < lo")
	}
	if hi == lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// Clamp bounds a complexity value to [min, max].
func Clamp(c, lo, hi Complexity) Complexity {
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}
