// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package pool

import (
	"encoding/json"

	"github.com/loiclec/fuzzcheck-go/pkg/slab"
)

// maxPerFailureID is the K=8 cap from §4.4.5: at most this many inputs are
// retained per distinct failure id, the lowest-complexity ones first.
const maxPerFailureID = 8

// TestFailureObservation is the "observations are Option<TestFailure>"
// shape from §4.4.5, carried into Process after the scheduler has decided
// a run failed.
type TestFailureObservation struct {
	ID      string
	Display string
}

type failureSlot[T any] struct {
	value   T
	cplx    float64
	display string
}

// TestFailure is the test-failure pool (§4.4.5): for each distinct
// failure id, keeps up to maxPerFailureID inputs at the lowest complexity
// seen for that id. Every input is added (and reported in the delta) while
// fewer than maxPerFailureID are held for its id; after that, only an
// input simpler than the most complex one held is added, replacing it.
type TestFailure[T any] struct {
	arena   *slab.Arena[failureSlot[T]]
	byID    map[string][]Index
}

func NewTestFailure[T any]() *TestFailure[T] {
	return &TestFailure[T]{arena: slab.New[failureSlot[T]](), byID: map[string][]Index{}}
}

func (p *TestFailure[T]) Stats() string {
	return "distinct failures=" + itoa(len(p.byID))
}

func (p *TestFailure[T]) GetRandomIndex() (Index, bool) {
	if p.arena.Len() == 0 {
		return Index{}, false
	}
	for _, indices := range p.byID {
		if len(indices) > 0 {
			return indices[0], true
		}
	}
	return Index{}, false
}

func (p *TestFailure[T]) Get(idx Index) (T, bool) {
	s, ok := p.arena.Get(idx)
	var zero T
	if !ok {
		return zero, false
	}
	return s.value, true
}

func (p *TestFailure[T]) MarkTestCaseAsDeadEnd(idx Index) {}

// SaveToStatsFolder emits test_failures.json (§6.2): one {id, display}
// record per distinct failure id currently retained, using the lowest-
// complexity surviving input as the representative.
func (p *TestFailure[T]) SaveToStatsFolder() []StatsFile {
	type record struct {
		ID      string `json:"id"`
		Display string `json:"display"`
	}
	records := make([]record, 0, len(p.byID))
	for id, indices := range p.byID {
		if len(indices) == 0 {
			continue
		}
		slot, ok := p.arena.Get(indices[0])
		if !ok {
			continue
		}
		records = append(records, record{ID: id, Display: slot.display})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil
	}
	return []StatsFile{{Path: "test_failures.json", Bytes: data}}
}

func (p *TestFailure[T]) Process(value T, observation *TestFailureObservation, complexity float64) CorpusDelta[T] {
	if observation == nil {
		return CorpusDelta[T]{}
	}
	existing := p.byID[observation.ID]
	if len(existing) >= maxPerFailureID {
		worst := existing[len(existing)-1]
		worstSlot, _ := p.arena.Get(worst)
		if complexity >= worstSlot.cplx {
			return CorpusDelta[T]{}
		}
		p.arena.Remove(worst)
		existing = existing[:len(existing)-1]
	}
	idx := p.arena.Insert(failureSlot[T]{value: value, cplx: complexity, display: observation.Display})
	existing = append(existing, idx)
	sortIndicesByComplexity(p.arena, existing)
	p.byID[observation.ID] = existing
	return CorpusDelta[T]{Add: &AddedEntry[T]{Value: value, Index: idx}}
}

func sortIndicesByComplexity[T any](arena *slab.Arena[failureSlot[T]], indices []Index) {
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0; j-- {
			a, _ := arena.Get(indices[j-1])
			b, _ := arena.Get(indices[j])
			if a.cplx <= b.cplx {
				break
			}
			indices[j-1], indices[j] = indices[j], indices[j-1]
		}
	}
}
