// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package valias implements the Vose alias method for O(1) sampling from a
// fixed discrete probability distribution.
//
// Unlike pkg/fenwick, which supports distributions whose weights mutate over
// time at the cost of an O(log N) sample, a Table here is built once from a
// snapshot of weights and samples in O(1); rebuilding is O(N). It is the
// right tool for Dictionary's fixed replacement-probability draw and for
// Alternation when the caller declares fixed, non-adaptive variant weights
// up front (ported from fuzzcheck-rs's mutators/vose_alias.rs).
package valias

import "math/rand"

// Table is a Vose alias table over n outcomes.
type Table struct {
	prob  []float64
	alias []int
}

// New builds an alias table from a slice of non-negative weights. It panics
// if weights is empty or all weights are zero.
func New(weights []float64) *Table {
	n := len(weights)
	if n == 0 {
		panic("valias.New: empty weights")
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("valias.New: weights sum to zero")
	}

	scaled := make([]float64, n)
	for i, w := range weights {
		scaled[i] = w * float64(n) / total
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, p := range scaled {
		if p < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	prob := make([]float64, n)
	alias := make([]int, n)

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]
		large = large[:len(large)-1]

		prob[l] = scaled[l]
		alias[l] = g

		scaled[g] = scaled[g] + scaled[l] - 1.0
		if scaled[g] < 1.0 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}
	for len(large) > 0 {
		g := large[len(large)-1]
		large = large[:len(large)-1]
		prob[g] = 1.0
	}
	for len(small) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		prob[l] = 1.0
	}

	return &Table{prob: prob, alias: alias}
}

// Len returns the number of outcomes.
func (t *Table) Len() int {
	return len(t.prob)
}

// Sample draws an outcome index in O(1).
func (t *Table) Sample(r *rand.Rand) int {
	i := r.Intn(len(t.prob))
	if r.Float64() < t.prob[i] {
		return i
	}
	return t.alias[i]
}
