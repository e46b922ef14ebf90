// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package fuzzer

import (
	"math/rand"
	"time"

	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
	"github.com/loiclec/fuzzcheck-go/pkg/pool"
)

// scoreToPriority maps a non-negative featurePool score onto the
// priorityQueue's uint priority space, scaled so the fractional part of
// typical scores (len(features)/timesChosen) still orders sensibly.
func scoreToPriority(score float64) priority {
	const scale = 1 << 20
	v := score * scale
	if v < 0 {
		v = 0
	}
	const maxU = float64(^uint32(0))
	if v > maxU {
		v = maxU
	}
	return priority(uint(v))
}

// MinifyCorpus implements the *minify-corpus* command (§4.5): it keeps the
// target highest-scoring entries of p and removes the rest, returning the
// removed indices so the caller can mirror the deletions onto disk. Uses
// priorityQueue as a max-heap to pick the top-target entries without
// sorting the whole pool when target is small relative to its size.
func MinifyCorpus(p pool.Scored, target int) []pool.Index {
	indices := p.AllIndices()
	if len(indices) <= target {
		return nil
	}
	pq := makePriorityQueue[pool.Index]()
	for _, idx := range indices {
		pq.push(&priorityQueueItem[pool.Index]{value: idx, prio: scoreToPriority(p.Score(idx))})
	}
	kept := make(map[pool.Index]bool, target)
	for i := 0; i < target && pq.Len() > 0; i++ {
		kept[pq.popWait().value] = true
	}
	var removed []pool.Index
	for _, idx := range indices {
		if !kept[idx] {
			p.RemoveIndex(idx)
			removed = append(removed, idx)
		}
	}
	return removed
}

// MinifyInput implements the *minify-input* command (§4.5): starting from
// a known-failing value, repeatedly mutates within a shrinking complexity
// ceiling, keeping only mutations that are strictly smaller and still
// reproduce the failure (stillFails). Returns every successive
// improvement, in order, for the caller to write out as
// "<cplx>--<hash>.<ext>" artifacts.
func MinifyInput[T any](m mutator.Mutator[T], stillFails Predicate[T], value T, maxAttempts int) []T {
	cache, ok := m.ValidateValue(value)
	if !ok {
		return nil
	}
	cplx := m.Complexity(value, cache)
	ceiling := cplx
	step := m.DefaultMutationStep(value, cache)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var improvements []T
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := value
		candidateCache := cache
		token, newCplx, mutated := m.OrderedMutate(&candidate, &candidateCache, &step, crossover.None{}, ceiling)
		if !mutated {
			token, newCplx = m.RandomMutate(rng, &candidate, &candidateCache, ceiling)
		}
		if newCplx < cplx && stillFails(candidate) {
			value, cache, cplx = candidate, candidateCache, newCplx
			ceiling = cplx
			step = m.DefaultMutationStep(value, cache)
			improvements = append(improvements, value)
			continue
		}
		m.Unmutate(&candidate, &candidateCache, token)
	}
	return improvements
}
