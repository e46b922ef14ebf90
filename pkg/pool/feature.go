// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

import (
	"fmt"
	"math/rand"

	"github.com/loiclec/fuzzcheck-go/pkg/dedup"
	"github.com/loiclec/fuzzcheck-go/pkg/fenwick"
	"github.com/loiclec/fuzzcheck-go/pkg/slab"
)

// bloomFilterSize and bloomFilterFalsePosRate size the witness-lookup
// pre-check; a miss rate this low keeps the exact map lookup as the
// effective source of truth while still skipping it for most features.
const (
	bloomFilterSize         = 1 << 16
	bloomFilterFalsePosRate = 0.01
)

// featureEntry is one stored input in a featurePool: the value, its
// complexity, and the set of features for which it is currently the
// simplest known witness.
type featureEntry[T any, F comparable] struct {
	value    T
	cplx     float64
	features map[F]struct{}
}

// featurePool is the shared engine behind the simplest-to-activate-counter
// pool (§4.4.1) and the unique-values pool (§4.4.2): both keep, for every
// distinct feature observed, the simplest input that witnesses it, score
// each stored input by how many features it alone witnesses, and sample
// via score/times_chosen on a Fenwick tree (§9's "weighted sampling with
// decay"). The two pools differ only in what counts as a "feature" (a
// (counter_index, bucket) pair vs. a raw observed value), which each
// wrapper computes and passes to process as a feature slice.
type featurePool[T any, F comparable] struct {
	arena       *slab.Arena[featureEntry[T, F]]
	weights     fenwick.Tree[float64]
	posToIndex  map[int]Index
	timesChosen map[Index]int64
	witnesses   map[F]Index
	deadEnds    map[Index]bool
	seen        *dedup.Filter
}

func newFeaturePool[T any, F comparable]() *featurePool[T, F] {
	return &featurePool[T, F]{
		arena:       slab.New[featureEntry[T, F]](),
		posToIndex:  map[int]Index{},
		timesChosen: map[Index]int64{},
		witnesses:   map[F]Index{},
		deadEnds:    map[Index]bool{},
		seen:        dedup.New(bloomFilterSize, bloomFilterFalsePosRate),
	}
}

// featureKey gives every observed feature a byte encoding cheap enough to
// hash on every Process call; F is only ever a small comparable key type
// (CounterFeature or a raw observed value), so its %v form is stable and
// collision-free in practice.
func featureKey[F comparable](f F) []byte {
	return []byte(fmt.Sprintf("%v", f))
}

func (p *featurePool[T, F]) setWeight(idx Index, weight float64) {
	pos := idx.SlotIndex()
	for p.weights.Len() <= pos {
		p.weights.Add(0)
	}
	p.weights.Set(pos, weight)
	p.posToIndex[pos] = idx
}

func (p *featurePool[T, F]) scoreOf(idx Index) float64 {
	times := p.timesChosen[idx]
	if times < 1 {
		times = 1
	}
	entry, ok := p.arena.Get(idx)
	if !ok {
		return 0
	}
	if p.deadEnds[idx] {
		return 0
	}
	return float64(len(entry.features)) / float64(times)
}

func (p *featurePool[T, F]) Stats() string {
	return "features=" + itoa(len(p.witnesses)) + " inputs=" + itoa(p.arena.Len())
}

func (p *featurePool[T, F]) GetRandomIndex() (Index, bool) {
	total := p.weights.Total()
	if total <= 0 {
		return Index{}, false
	}
	pos := p.weights.FindPrefix(rand.Float64() * total)
	for n := 0; n < p.weights.Len(); n++ {
		candidate := (pos + n) % p.weights.Len()
		idx, ok := p.posToIndex[candidate]
		if !ok {
			continue
		}
		if _, ok := p.arena.Get(idx); !ok {
			continue
		}
		if p.deadEnds[idx] {
			continue
		}
		p.timesChosen[idx]++
		p.setWeight(idx, p.scoreOf(idx))
		return idx, true
	}
	return Index{}, false
}

func (p *featurePool[T, F]) Get(idx Index) (T, bool) {
	e, ok := p.arena.Get(idx)
	var zero T
	if !ok {
		return zero, false
	}
	return e.value, true
}

func (p *featurePool[T, F]) MarkTestCaseAsDeadEnd(idx Index) {
	p.deadEnds[idx] = true
	p.setWeight(idx, 0)
}

func (p *featurePool[T, F]) SaveToStatsFolder() []StatsFile { return nil }

// indices lists every live entry, for callers that need to scan the whole
// pool (e.g. corpus minification).
func (p *featurePool[T, F]) indices() []Index {
	ids := make([]Index, 0, len(p.timesChosen))
	for idx := range p.timesChosen {
		ids = append(ids, idx)
	}
	return ids
}

// removeIndex unconditionally evicts idx, forgetting any feature it was
// the witness for rather than trying to find a replacement witness. Used
// by corpus minification (§4.5's *minify-corpus*), which intentionally
// discards coverage to shrink the pool.
func (p *featurePool[T, F]) removeIndex(idx Index) {
	e, ok := p.arena.Get(idx)
	if !ok {
		return
	}
	for f := range e.features {
		if p.witnesses[f] == idx {
			delete(p.witnesses, f)
		}
	}
	p.arena.Remove(idx)
	p.setWeight(idx, 0)
	delete(p.timesChosen, idx)
}

// process is the shared admission algorithm: for each observed feature,
// admit value as the new simplest witness if it beats (or there is no)
// current witness; inputs that lose all their witness responsibilities as
// a result are removed. Returns the CorpusDelta, whose Add is non-nil
// exactly when value was admitted.
func (p *featurePool[T, F]) process(value T, cplx float64, observedFeatures []F) CorpusDelta[T] {
	var gains []F
	for _, f := range observedFeatures {
		key := featureKey(f)
		if !p.seen.MaybeContains(key) {
			// definitely never witnessed before: skip the map lookup
			p.seen.Insert(key)
			gains = append(gains, f)
			continue
		}
		if cur, ok := p.witnesses[f]; ok {
			curEntry, _ := p.arena.Get(cur)
			if cplx < curEntry.cplx {
				gains = append(gains, f)
			}
		} else {
			gains = append(gains, f)
		}
	}
	if len(gains) == 0 {
		return CorpusDelta[T]{}
	}

	gainSet := make(map[F]struct{}, len(gains))
	losers := map[Index]bool{}
	for _, f := range gains {
		gainSet[f] = struct{}{}
		if cur, ok := p.witnesses[f]; ok {
			losers[cur] = true
		}
	}

	entry := featureEntry[T, F]{value: value, cplx: cplx, features: map[F]struct{}{}}
	for _, f := range gains {
		entry.features[f] = struct{}{}
	}
	idx := p.arena.Insert(entry)
	p.timesChosen[idx] = 1
	for _, f := range gains {
		p.witnesses[f] = idx
	}
	p.setWeight(idx, p.scoreOf(idx))

	var removed []Index
	for loser := range losers {
		le, ok := p.arena.Get(loser)
		if !ok {
			continue
		}
		for f := range le.features {
			if _, overtaken := gainSet[f]; overtaken {
				delete(le.features, f)
			}
		}
		p.arena.Set(loser, le)
		if len(le.features) == 0 {
			p.arena.Remove(loser)
			p.setWeight(loser, 0)
			delete(p.timesChosen, loser)
			removed = append(removed, loser)
		} else {
			p.setWeight(loser, p.scoreOf(loser))
		}
	}

	return CorpusDelta[T]{Add: &AddedEntry[T]{Value: value, Index: idx}, Remove: removed}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
