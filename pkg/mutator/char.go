// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

import (
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

const (
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
)

// Char is the integer-in-range mutator specialized over Unicode code
// points, skipping the UTF-16 surrogate gap (grounded on fuzzcheck-rs's
// mutators/char.rs). It reuses Integer's binary-search enumeration over a
// code-point index space that excludes the gap.
type Char struct {
	Lo, Hi rune
}

func (m Char) codePointCount() int64 {
	n := int64(m.Hi) - int64(m.Lo) + 1
	if m.Lo <= surrogateLo && m.Hi >= surrogateHi {
		n -= surrogateHi - surrogateLo + 1
	}
	return n
}

func (m Char) indexToRune(idx int64) rune {
	r := int64(m.Lo) + idx
	if m.Lo <= surrogateLo && r >= surrogateLo {
		r += surrogateHi - surrogateLo + 1
	}
	return rune(r)
}

func (m Char) MaxComplexity() complexity.Complexity {
	return complexity.SizeToComplexity(int(m.codePointCount()))
}

func (m Char) MinComplexity() complexity.Complexity {
	return m.MaxComplexity()
}

func (m Char) Complexity(rune, Cache) complexity.Complexity {
	return m.MaxComplexity()
}

func (m Char) Clone(v rune) rune { return v }

func (m Char) DefaultArbitraryStep() ArbitraryStep {
	return &integerStep{}
}

func (m Char) ValidateValue(v rune) (Cache, bool) {
	if v < m.Lo || v > m.Hi || (v >= surrogateLo && v <= surrogateHi) {
		return nil, false
	}
	return nil, true
}

func (m Char) DefaultMutationStep(rune, Cache) MutationStep {
	return &integerStep{}
}

func (m Char) OrderedArbitrary(step *ArbitraryStep, maxCplx complexity.Complexity) (rune, complexity.Complexity, bool) {
	if maxCplx < m.MinComplexity() {
		return 0, 0, false
	}
	s := (*step).(*integerStep)
	idx, ok := binarySearchEnumerate(0, m.codePointCount()-1, s.visited)
	if !ok {
		return 0, 0, false
	}
	s.visited++
	return m.indexToRune(idx), m.MaxComplexity(), true
}

func (m Char) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (rune, complexity.Complexity) {
	idx := r.Int63n(m.codePointCount())
	return m.indexToRune(idx), m.MaxComplexity()
}

func (m Char) OrderedMutate(v *rune, c *Cache, step *MutationStep, _ crossover.SubValueProvider, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}
	s := (*step).(*integerStep)
	idx, ok := binarySearchEnumerate(0, m.codePointCount()-1, s.visited)
	if !ok {
		return nil, 0, false
	}
	s.visited++
	old := *v
	*v = m.indexToRune(idx)
	return old, m.MaxComplexity(), true
}

func (m Char) RandomMutate(r *rand.Rand, v *rune, c *Cache, maxCplx complexity.Complexity) (UnmutateToken, complexity.Complexity) {
	old := *v
	nv, cplx := m.RandomArbitrary(r, maxCplx)
	*v = nv
	return old, cplx
}

func (m Char) Unmutate(v *rune, c *Cache, token UnmutateToken) {
	*v = token.(rune)
}

func (m Char) VisitSubvalues(rune, Cache, VisitFunc) {}
