// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package vector implements the mutator for slices: a child mutator for T
// plus a permitted length range, composed from eleven independently
// stepped operations aggregated behind a Fenwick-weighted sampler so that
// rarely-successful operations keep their share of attempts instead of
// starving (§4.2).
//
// Grounded on fuzzcheck-rs's mutators/vector/ (the authoritative
// production path, not its vector2/ alternate weight-update scheme,
// which this port does not implement).
package vector

import (
	"math/rand"
	"reflect"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/fenwick"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
)

// operation identifies one of the eleven vector mutation operations.
type operation int

const (
	opMutateElement operation = iota
	opInsertElement
	opInsertMany
	opRemoveElement
	opSwapElements
	opCopyElement
	opRemoveAndInsert
	opCrossoverReplaceElement
	opCrossoverInsertSlice
	opArbitrary
	opOnlyChooseLength
	numOperations
)

type elementCache[C any] struct {
	cache C
	cplx  complexity.Complexity
}

// Cache holds per-element child caches, their complexity sum, and the
// Fenwick tree of operation weights (score / times_chosen) that survives
// across mutations of the same value.
type Cache[C any] struct {
	elements      []elementCache[C]
	sumCplx       complexity.Complexity
	opWeights     fenwick.Tree[float64]
	opTimesChosen []int64
}

type lengthOnlyStep struct {
	visited int64
}

// MutationStep carries the operation-specific state for whichever
// operation is currently active; most operations are stateless beyond an
// insertion index cursor, kept here as a simple round-robin position.
type MutationStep struct {
	nextIndex int
}

// unmutateToken dispatches Unmutate by operation.
type unmutateToken[T any, C any] struct {
	op operation

	// opMutateElement / opCrossoverReplaceElement
	index        int
	prevElement  T
	prevCache    C
	innerToken   mutator.UnmutateToken

	// opInsertElement / opInsertMany / opCrossoverInsertSlice
	insertedAt    int
	insertedCount int

	// opRemoveElement / opRemoveAndInsert
	removedElement T
	removedCache   C

	// opSwapElements
	otherIndex int

	// opArbitrary (whole-vector replace)
	prevSlice      []T
	prevElemCaches []C
	prevSumCplx    complexity.Complexity
}

// Mutator is the slice mutator over []T.
type Mutator[T any] struct {
	Elem   mutator.Mutator[T]
	MinLen int
	MaxLen int
}

func (m Mutator[T]) onlyChooseLength() bool {
	return m.Elem.MaxComplexity() == 0
}

func (m Mutator[T]) DefaultArbitraryStep() mutator.ArbitraryStep {
	return &lengthOnlyStep{}
}

func (m Mutator[T]) ValidateValue(v []T) (mutator.Cache, bool) {
	if len(v) < m.MinLen || (m.MaxLen >= 0 && len(v) > m.MaxLen) {
		return nil, false
	}
	elements := make([]elementCache[mutator.Cache], len(v))
	var sum complexity.Complexity
	for i, e := range v {
		c, ok := m.Elem.ValidateValue(e)
		if !ok {
			return nil, false
		}
		cplx := m.Elem.Complexity(e, c)
		elements[i] = elementCache[mutator.Cache]{cache: c, cplx: cplx}
		sum += cplx
	}
	return newCache(elements, sum), true
}

func newCache[C any](elements []elementCache[C], sum complexity.Complexity) *Cache[C] {
	c := &Cache[C]{elements: elements, sumCplx: sum}
	c.opTimesChosen = make([]int64, numOperations)
	for i := operation(0); i < numOperations; i++ {
		c.opWeights.Add(1)
		c.opTimesChosen[i] = 1
	}
	return c
}

func (m Mutator[T]) DefaultMutationStep([]T, mutator.Cache) mutator.MutationStep {
	return &MutationStep{}
}

func (m Mutator[T]) MaxComplexity() complexity.Complexity {
	if m.MaxLen < 0 {
		return complexity.Complexity(1e18)
	}
	return complexity.SizeToComplexity(m.MaxLen) + complexity.Complexity(m.MaxLen)*m.Elem.MaxComplexity()
}

func (m Mutator[T]) MinComplexity() complexity.Complexity {
	return complexity.SizeToComplexity(m.MinLen) + complexity.Complexity(m.MinLen)*m.Elem.MinComplexity()
}

func (m Mutator[T]) Complexity(v []T, c mutator.Cache) complexity.Complexity {
	cache := c.(*Cache[mutator.Cache])
	return complexity.SizeToComplexity(len(v)) + cache.sumCplx
}

// Clone copies the backing array and every element: several operations
// here (opMutateElement, opSwapElements, opCopyElement, opRemoveElement,
// ...) mutate elements or the slice header in place without reallocating,
// so a shallow copy would still alias v's backing array.
func (m Mutator[T]) Clone(v []T) []T {
	if v == nil {
		return nil
	}
	out := make([]T, len(v))
	for i, e := range v {
		out[i] = m.Elem.Clone(e)
	}
	return out
}

func (m Mutator[T]) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx complexity.Complexity) ([]T, complexity.Complexity, bool) {
	s := (*step).(*lengthOnlyStep)
	length := m.MinLen + int(s.visited)
	if length > m.MaxLen && m.MaxLen >= 0 {
		return nil, 0, false
	}
	s.visited++
	r := rand.New(rand.NewSource(int64(length) + 1))
	v, cplx := m.randomOfLength(r, length, maxCplx)
	return v, cplx, true
}

func (m Mutator[T]) randomOfLength(r *rand.Rand, length int, maxCplx complexity.Complexity) ([]T, complexity.Complexity) {
	v := make([]T, length)
	var sum complexity.Complexity
	remaining := maxCplx - complexity.SizeToComplexity(length)
	for i := range v {
		budget := remaining
		if n := length - i; n > 1 {
			budget = remaining / complexity.Complexity(n)
		}
		e, cplx := m.Elem.RandomArbitrary(r, budget)
		v[i] = e
		sum += cplx
		remaining -= cplx
	}
	return v, complexity.SizeToComplexity(length) + sum
}

func (m Mutator[T]) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) ([]T, complexity.Complexity) {
	hi := m.MaxLen
	if hi < 0 || complexity.Complexity(hi) > maxCplx {
		hi = int(maxCplx)
	}
	lo := m.MinLen
	if hi < lo {
		hi = lo
	}
	length := lo
	if hi > lo {
		length = lo + r.Intn(hi-lo+1)
	}
	return m.randomOfLength(r, length, maxCplx)
}

// pickOperation samples an operation via the Fenwick-weighted sampler,
// retrying with another operation if the chosen one isn't applicable to
// the current value (e.g. insert when already at MaxLen).
func (m Mutator[T]) pickOperation(r *rand.Rand, cache *Cache[mutator.Cache], length int) operation {
	applicable := func(op operation) bool {
		switch op {
		case opInsertElement, opInsertMany:
			return m.MaxLen < 0 || length < m.MaxLen
		case opRemoveElement, opRemoveAndInsert:
			return length > m.MinLen
		case opSwapElements, opCopyElement:
			return length >= 2
		case opMutateElement, opCrossoverReplaceElement:
			return length >= 1
		case opOnlyChooseLength:
			return m.onlyChooseLength()
		default:
			return true
		}
	}
	for attempt := 0; attempt < int(numOperations)*2; attempt++ {
		total := cache.opWeights.Total()
		var op operation
		if total <= 0 {
			op = operation(r.Intn(int(numOperations)))
		} else {
			op = operation(cache.opWeights.FindPrefix(r.Float64() * total))
		}
		if applicable(op) {
			return op
		}
	}
	return opArbitrary
}

func (m Mutator[T]) recordOutcome(cache *Cache[mutator.Cache], op operation, success bool) {
	cache.opTimesChosen[op]++
	reward := 0.0
	if success {
		reward = 1.0
	}
	current := reward / float64(cache.opTimesChosen[op])
	cache.opWeights.Set(int(op), current)
}

func (m Mutator[T]) RandomMutate(r *rand.Rand, v *[]T, c *mutator.Cache, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity) {
	return m.randomMutateWithProvider(r, v, c, nil, maxCplx)
}

// RandomMutateWithProvider is the crossover-aware variant of RandomMutate
// for callers that hold a provider: opCrossoverReplaceElement and opCrossoverInsertSlice need a
// SubValueProvider to draw material from another pool entry.
func (m Mutator[T]) RandomMutateWithProvider(r *rand.Rand, v *[]T, c *mutator.Cache, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity) {
	return m.randomMutateWithProvider(r, v, c, provider, maxCplx)
}

func (m Mutator[T]) randomMutateWithProvider(r *rand.Rand, v *[]T, c *mutator.Cache, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity) {
	cache := (*c).(*Cache[mutator.Cache])
	op := m.pickOperation(r, cache, len(*v))
	token, cplx, ok := m.applyOperation(r, v, cache, op, provider, maxCplx)
	m.recordOutcome(cache, op, ok)
	if !ok {
		// Fall back to the one operation that always succeeds.
		token, cplx, _ = m.applyOperation(r, v, cache, opArbitrary, provider, maxCplx)
	}
	return token, cplx
}

func (m Mutator[T]) applyOperation(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], op operation, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	switch op {
	case opMutateElement:
		return m.opMutateElement(r, v, cache, maxCplx)
	case opInsertElement:
		return m.opInsertElement(r, v, cache, maxCplx)
	case opInsertMany:
		return m.opInsertMany(r, v, cache, maxCplx)
	case opRemoveElement:
		return m.opRemoveElement(r, v, cache)
	case opSwapElements:
		return m.opSwapElements(r, v, cache)
	case opCopyElement:
		return m.opCopyElement(r, v, cache, maxCplx)
	case opRemoveAndInsert:
		return m.opRemoveAndInsert(r, v, cache, maxCplx)
	case opCrossoverReplaceElement:
		return m.opCrossoverReplaceElement(r, v, cache, provider, maxCplx)
	case opCrossoverInsertSlice:
		return m.opCrossoverInsertSlice(r, v, cache, provider, maxCplx)
	case opOnlyChooseLength:
		return m.opOnlyChooseLength(r, v, cache, maxCplx)
	default:
		return m.opArbitrary(r, v, cache, maxCplx)
	}
}

func (m Mutator[T]) opMutateElement(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if len(*v) == 0 {
		return nil, 0, false
	}
	idx := r.Intn(len(*v))
	ec := &cache.elements[idx]
	budget := maxCplx - cache.sumCplx + ec.cplx
	prevElem := (*v)[idx]
	prevCache := ec.cache
	token, cplx := m.Elem.RandomMutate(r, &(*v)[idx], &ec.cache, budget)
	cache.sumCplx += cplx - ec.cplx
	ec.cplx = cplx
	return unmutateToken[T, mutator.Cache]{op: opMutateElement, index: idx, prevElement: prevElem, prevCache: prevCache, innerToken: token}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opInsertElement(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if m.MaxLen >= 0 && len(*v) >= m.MaxLen {
		return nil, 0, false
	}
	spare := maxCplx - m.Complexity(*v, cache)
	if spare < m.Elem.MinComplexity() {
		return nil, 0, false
	}
	idx := r.Intn(len(*v) + 1)
	e, cplx := m.Elem.RandomArbitrary(r, spare)
	ec, _ := m.Elem.ValidateValue(e)

	*v = append(*v, e)
	copy((*v)[idx+1:], (*v)[idx:len(*v)-1])
	(*v)[idx] = e

	cache.elements = append(cache.elements, elementCache[mutator.Cache]{})
	copy(cache.elements[idx+1:], cache.elements[idx:len(cache.elements)-1])
	cache.elements[idx] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
	cache.sumCplx += cplx

	return unmutateToken[T, mutator.Cache]{op: opInsertElement, insertedAt: idx, insertedCount: 1}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opInsertMany(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if m.MaxLen >= 0 && len(*v) >= m.MaxLen {
		return nil, 0, false
	}
	maxK := 8
	if m.MaxLen >= 0 && m.MaxLen-len(*v) < maxK {
		maxK = m.MaxLen - len(*v)
	}
	if maxK < 1 {
		return nil, 0, false
	}
	k := 1 + r.Intn(maxK)
	idx := r.Intn(len(*v) + 1)
	spare := maxCplx - m.Complexity(*v, cache)

	newElems := make([]T, k)
	newCaches := make([]elementCache[mutator.Cache], k)
	var addedCplx complexity.Complexity
	for i := 0; i < k; i++ {
		budget := spare / complexity.Complexity(k-i)
		e, cplx := m.Elem.RandomArbitrary(r, budget)
		ec, _ := m.Elem.ValidateValue(e)
		newElems[i] = e
		newCaches[i] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
		addedCplx += cplx
		spare -= cplx
	}

	tail := append([]T{}, (*v)[idx:]...)
	*v = append((*v)[:idx], append(newElems, tail...)...)
	tailCaches := append([]elementCache[mutator.Cache]{}, cache.elements[idx:]...)
	cache.elements = append(cache.elements[:idx], append(newCaches, tailCaches...)...)
	cache.sumCplx += addedCplx

	return unmutateToken[T, mutator.Cache]{op: opInsertMany, insertedAt: idx, insertedCount: k}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opRemoveElement(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache]) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if len(*v) <= m.MinLen {
		return nil, 0, false
	}
	idx := r.Intn(len(*v))
	removed := (*v)[idx]
	removedCache := cache.elements[idx].cache
	cache.sumCplx -= cache.elements[idx].cplx

	*v = append((*v)[:idx], (*v)[idx+1:]...)
	cache.elements = append(cache.elements[:idx], cache.elements[idx+1:]...)

	return unmutateToken[T, mutator.Cache]{op: opRemoveElement, insertedAt: idx, removedElement: removed, removedCache: removedCache}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opSwapElements(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache]) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if len(*v) < 2 {
		return nil, 0, false
	}
	i := r.Intn(len(*v))
	j := r.Intn(len(*v) - 1)
	if j >= i {
		j++
	}
	(*v)[i], (*v)[j] = (*v)[j], (*v)[i]
	cache.elements[i], cache.elements[j] = cache.elements[j], cache.elements[i]
	return unmutateToken[T, mutator.Cache]{op: opSwapElements, index: i, otherIndex: j}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opCopyElement(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if len(*v) < 2 {
		return nil, 0, false
	}
	src := r.Intn(len(*v))
	dst := r.Intn(len(*v))
	for dst == src {
		dst = r.Intn(len(*v))
	}
	prevElem := (*v)[dst]
	prevCache := cache.elements[dst].cache
	cache.sumCplx += cache.elements[src].cplx - cache.elements[dst].cplx
	(*v)[dst] = (*v)[src]
	cache.elements[dst] = cache.elements[src]
	return unmutateToken[T, mutator.Cache]{op: opCopyElement, index: dst, prevElement: prevElem, prevCache: prevCache}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opRemoveAndInsert(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if len(*v) == 0 {
		return nil, 0, false
	}
	idx := r.Intn(len(*v))
	removed := (*v)[idx]
	removedCache := cache.elements[idx].cache
	spare := maxCplx - m.Complexity(*v, cache) + cache.elements[idx].cplx
	e, cplx := m.Elem.RandomArbitrary(r, spare)
	ec, _ := m.Elem.ValidateValue(e)
	cache.sumCplx += cplx - cache.elements[idx].cplx
	(*v)[idx] = e
	cache.elements[idx] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
	return unmutateToken[T, mutator.Cache]{op: opRemoveAndInsert, index: idx, removedElement: removed, removedCache: removedCache}, m.Complexity(*v, cache), true
}

func (m Mutator[T]) opCrossoverReplaceElement(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if provider == nil || len(*v) == 0 {
		return nil, 0, false
	}
	var zero T
	typ := reflect.TypeOf(&zero).Elem()
	idx := r.Intn(len(*v))
	spare := maxCplx - m.Complexity(*v, cache) + cache.elements[idx].cplx
	cursor := &crossover.Cursor{}
	for {
		candidate, ok := provider.GetSubvalue(typ, spare, cursor)
		if !ok {
			return nil, 0, false
		}
		e, ok := candidate.(T)
		if !ok {
			continue
		}
		ec, ok := m.Elem.ValidateValue(e)
		if !ok {
			continue
		}
		prevElem := (*v)[idx]
		prevCache := cache.elements[idx].cache
		cplx := m.Elem.Complexity(e, ec)
		cache.sumCplx += cplx - cache.elements[idx].cplx
		(*v)[idx] = e
		cache.elements[idx] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
		return unmutateToken[T, mutator.Cache]{op: opCrossoverReplaceElement, index: idx, prevElement: prevElem, prevCache: prevCache}, m.Complexity(*v, cache), true
	}
}

func (m Mutator[T]) opCrossoverInsertSlice(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if provider == nil {
		return nil, 0, false
	}
	if m.MaxLen >= 0 && len(*v) >= m.MaxLen {
		return nil, 0, false
	}
	var zeroSlice []T
	typ := reflect.TypeOf(&zeroSlice).Elem()
	spare := maxCplx - m.Complexity(*v, cache)
	cursor := &crossover.Cursor{}
	for {
		candidate, ok := provider.GetSubvalue(typ, spare, cursor)
		if !ok {
			return nil, 0, false
		}
		slice, ok := candidate.([]T)
		if !ok || len(slice) == 0 {
			continue
		}
		k := len(slice)
		if m.MaxLen >= 0 && len(*v)+k > m.MaxLen {
			k = m.MaxLen - len(*v)
		}
		if k <= 0 {
			continue
		}
		slice = slice[:k]
		idx := r.Intn(len(*v) + 1)

		newCaches := make([]elementCache[mutator.Cache], k)
		var addedCplx complexity.Complexity
		ok = true
		for i, e := range slice {
			ec, valid := m.Elem.ValidateValue(e)
			if !valid {
				ok = false
				break
			}
			cplx := m.Elem.Complexity(e, ec)
			newCaches[i] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
			addedCplx += cplx
		}
		if !ok {
			continue
		}

		tail := append([]T{}, (*v)[idx:]...)
		*v = append((*v)[:idx], append(append([]T{}, slice...), tail...)...)
		tailCaches := append([]elementCache[mutator.Cache]{}, cache.elements[idx:]...)
		cache.elements = append(cache.elements[:idx], append(newCaches, tailCaches...)...)
		cache.sumCplx += addedCplx

		return unmutateToken[T, mutator.Cache]{op: opCrossoverInsertSlice, insertedAt: idx, insertedCount: k}, m.Complexity(*v, cache), true
	}
}

func (m Mutator[T]) opArbitrary(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	prevSlice := append([]T{}, (*v)...)
	prevCaches := append([]elementCache[mutator.Cache]{}, cache.elements...)
	prevSum := cache.sumCplx

	nv, _ := m.RandomArbitrary(r, maxCplx)
	*v = nv
	newElements := make([]elementCache[mutator.Cache], len(nv))
	var sum complexity.Complexity
	for i, e := range nv {
		ec, _ := m.Elem.ValidateValue(e)
		cplx := m.Elem.Complexity(e, ec)
		newElements[i] = elementCache[mutator.Cache]{cache: ec, cplx: cplx}
		sum += cplx
	}
	cache.elements = newElements
	cache.sumCplx = sum

	return unmutateToken[T, mutator.Cache]{op: opArbitrary, prevSlice: prevSlice, prevElemCaches: cachesOf(prevCaches), prevSumCplx: prevSum}, m.Complexity(*v, cache), true
}

func cachesOf(elems []elementCache[mutator.Cache]) []mutator.Cache {
	out := make([]mutator.Cache, len(elems))
	for i, e := range elems {
		out[i] = e.cache
	}
	return out
}

func (m Mutator[T]) opOnlyChooseLength(r *rand.Rand, v *[]T, cache *Cache[mutator.Cache], maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	if !m.onlyChooseLength() {
		return nil, 0, false
	}
	return m.opArbitrary(r, v, cache, maxCplx)
}

func (m Mutator[T]) Unmutate(v *[]T, c *mutator.Cache, token mutator.UnmutateToken) {
	cache := (*c).(*Cache[mutator.Cache])
	t := token.(unmutateToken[T, mutator.Cache])
	switch t.op {
	case opMutateElement, opCrossoverReplaceElement:
		cache.sumCplx += cache.elements[t.index].cplx * -1
		(*v)[t.index] = t.prevElement
		if t.innerToken != nil {
			m.Elem.Unmutate(&(*v)[t.index], &t.prevCache, t.innerToken)
			cache.elements[t.index].cache = t.prevCache
			cache.elements[t.index].cplx = m.Elem.Complexity((*v)[t.index], t.prevCache)
		} else {
			cache.elements[t.index] = elementCache[mutator.Cache]{cache: t.prevCache, cplx: m.Elem.Complexity(t.prevElement, t.prevCache)}
		}
		cache.sumCplx += cache.elements[t.index].cplx
	case opInsertElement, opInsertMany:
		idx := t.insertedAt
		*v = append((*v)[:idx], (*v)[idx+t.insertedCount:]...)
		for i := 0; i < t.insertedCount; i++ {
			cache.sumCplx -= cache.elements[idx+i].cplx
		}
		cache.elements = append(cache.elements[:idx], cache.elements[idx+t.insertedCount:]...)
	case opRemoveElement:
		idx := t.insertedAt
		ec := elementCache[mutator.Cache]{cache: t.removedCache, cplx: m.Elem.Complexity(t.removedElement, t.removedCache)}
		*v = append(*v, t.removedElement)
		copy((*v)[idx+1:], (*v)[idx:len(*v)-1])
		(*v)[idx] = t.removedElement
		cache.elements = append(cache.elements, elementCache[mutator.Cache]{})
		copy(cache.elements[idx+1:], cache.elements[idx:len(cache.elements)-1])
		cache.elements[idx] = ec
		cache.sumCplx += ec.cplx
	case opSwapElements:
		i, j := t.index, t.otherIndex
		(*v)[i], (*v)[j] = (*v)[j], (*v)[i]
		cache.elements[i], cache.elements[j] = cache.elements[j], cache.elements[i]
	case opCopyElement:
		cache.sumCplx += m.Elem.Complexity(t.prevElement, t.prevCache) - cache.elements[t.index].cplx
		(*v)[t.index] = t.prevElement
		cache.elements[t.index] = elementCache[mutator.Cache]{cache: t.prevCache, cplx: m.Elem.Complexity(t.prevElement, t.prevCache)}
	case opRemoveAndInsert:
		cache.sumCplx += m.Elem.Complexity(t.removedElement, t.removedCache) - cache.elements[t.index].cplx
		(*v)[t.index] = t.removedElement
		cache.elements[t.index] = elementCache[mutator.Cache]{cache: t.removedCache, cplx: m.Elem.Complexity(t.removedElement, t.removedCache)}
	case opCrossoverInsertSlice:
		idx := t.insertedAt
		for i := 0; i < t.insertedCount; i++ {
			cache.sumCplx -= cache.elements[idx+i].cplx
		}
		*v = append((*v)[:idx], (*v)[idx+t.insertedCount:]...)
		cache.elements = append(cache.elements[:idx], cache.elements[idx+t.insertedCount:]...)
	case opArbitrary, opOnlyChooseLength:
		*v = t.prevSlice
		elems := make([]elementCache[mutator.Cache], len(t.prevElemCaches))
		for i, c := range t.prevElemCaches {
			elems[i] = elementCache[mutator.Cache]{cache: c, cplx: m.Elem.Complexity((*v)[i], c)}
		}
		cache.elements = elems
		cache.sumCplx = t.prevSumCplx
	}
}

func (m Mutator[T]) VisitSubvalues(v []T, c mutator.Cache, visit mutator.VisitFunc) {
	cache := c.(*Cache[mutator.Cache])
	visit(v, m.Complexity(v, c))
	for i, e := range v {
		visit(e, cache.elements[i].cplx)
		m.Elem.VisitSubvalues(e, cache.elements[i].cache, visit)
	}
}

func (m Mutator[T]) OrderedMutate(v *[]T, c *mutator.Cache, step *mutator.MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	cache := (*c).(*Cache[mutator.Cache])
	s := (*step).(*MutationStep)

	if s.nextIndex < len(*v) {
		idx := s.nextIndex
		s.nextIndex++
		ec := &cache.elements[idx]
		budget := maxCplx - cache.sumCplx + ec.cplx
		innerStep := m.Elem.DefaultMutationStep((*v)[idx], ec.cache)
		var innerStepAny mutator.MutationStep = innerStep
		prevElem := (*v)[idx]
		prevCache := ec.cache
		token, cplx, ok := m.Elem.OrderedMutate(&(*v)[idx], &ec.cache, &innerStepAny, provider, budget)
		if ok {
			cache.sumCplx += cplx - ec.cplx
			ec.cplx = cplx
			return unmutateToken[T, mutator.Cache]{op: opMutateElement, index: idx, prevElement: prevElem, prevCache: prevCache, innerToken: token}, m.Complexity(*v, cache), true
		}
	}

	// Each element gets one ordered mutation per step, from a fresh inner
	// step; once the cursor has passed the last element, or the element
	// under it had no ordered mutation, this step is exhausted. The caller is expected to pick
	// a fresh DefaultMutationStep to sweep elements again, matching the
	// contract documented on Mutator.OrderedMutate.
	return nil, 0, false
}
