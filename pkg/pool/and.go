// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

import "math/rand"

// AndIndex tags which side of an And combinator an Index was drawn from,
// since P1 and P2 assign indices independently and a bare Index can't
// otherwise be routed back to the pool that issued it. And does not
// implement the single-Obs Pool[T,Obs] interface (its two sides can
// observe different shapes) and has no Process method: observations are
// processed on each sub-pool directly, and MergeDeltas combines the
// resulting deltas.
type AndIndex struct {
	FromFirst bool
	Inner     Index
}

// And combines two sub-pools for selection: on GetRandomIndex it picks P1
// with probability RatioFirst/255, falling back to whichever side is
// non-empty (§4.4.7). It does not dispatch Process to its sub-pools; see
// AndIndex.
type And[T any, P1 interface {
	GetRandomIndex() (Index, bool)
	Get(Index) (T, bool)
	MarkTestCaseAsDeadEnd(Index)
	Stats() string
}, P2 interface {
	GetRandomIndex() (Index, bool)
	Get(Index) (T, bool)
	MarkTestCaseAsDeadEnd(Index)
	Stats() string
}] struct {
	First      P1
	Second     P2
	RatioFirst uint8
}

func NewAnd[T any, P1 interface {
	GetRandomIndex() (Index, bool)
	Get(Index) (T, bool)
	MarkTestCaseAsDeadEnd(Index)
	Stats() string
}, P2 interface {
	GetRandomIndex() (Index, bool)
	Get(Index) (T, bool)
	MarkTestCaseAsDeadEnd(Index)
	Stats() string
}](first P1, second P2, ratioFirst uint8) *And[T, P1, P2] {
	return &And[T, P1, P2]{First: first, Second: second, RatioFirst: ratioFirst}
}

func (a *And[T, P1, P2]) Stats() string {
	return a.First.Stats() + "; " + a.Second.Stats()
}

func (a *And[T, P1, P2]) GetRandomIndex() (AndIndex, bool) {
	preferFirst := rand.Intn(255) < int(a.RatioFirst)
	tryFirst := func() (AndIndex, bool) {
		idx, ok := a.First.GetRandomIndex()
		return AndIndex{FromFirst: true, Inner: idx}, ok
	}
	trySecond := func() (AndIndex, bool) {
		idx, ok := a.Second.GetRandomIndex()
		return AndIndex{FromFirst: false, Inner: idx}, ok
	}
	if preferFirst {
		if idx, ok := tryFirst(); ok {
			return idx, true
		}
		return trySecond()
	}
	if idx, ok := trySecond(); ok {
		return idx, true
	}
	return tryFirst()
}

func (a *And[T, P1, P2]) Get(idx AndIndex) (T, bool) {
	if idx.FromFirst {
		return a.First.Get(idx.Inner)
	}
	return a.Second.Get(idx.Inner)
}

func (a *And[T, P1, P2]) MarkTestCaseAsDeadEnd(idx AndIndex) {
	if idx.FromFirst {
		a.First.MarkTestCaseAsDeadEnd(idx.Inner)
	} else {
		a.Second.MarkTestCaseAsDeadEnd(idx.Inner)
	}
}

// MergeDeltas combines the deltas of And's two sub-pools: the Remove
// lists are concatenated and a's Add is kept over b's when both are set
// (usually just one is, since most runs improve coverage xor trigger a
// failure).
func MergeDeltas[T any](a, b CorpusDelta[T]) CorpusDelta[T] {
	merged := CorpusDelta[T]{Remove: append(append([]Index{}, a.Remove...), b.Remove...)}
	if a.Add != nil {
		merged.Add = a.Add
	} else if b.Add != nil {
		merged.Add = b.Add
	}
	return merged
}
