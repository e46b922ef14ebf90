// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package slab implements a dense, generation-checked arena for corpus
// inputs, and a large-step search helper for sorted slices.
//
// fuzzcheck-rs threads an opaque PoolStorageIndex through every pool and
// sensor (see sensors_and_pools/*.rs) as the sole handle to a stored input;
// the pools never see the input's storage directly. data_structures.rs is
// the original's home for such cross-cutting helpers, but it keeps this one
// behind a crate-private allocator the retrieval pack does not include, so
// the arena below follows the standard Go generation-checked slot pattern
// (as used by e.g. slotmap-style arenas) rather than a specific pack file;
// FindStep below is grounded on weighted_index.rs's binary_search_by scan.
package slab

// Key identifies a value stored in an Arena. It stays valid only as long as
// the slot has not been reused; Arena.Get reports that with its bool return.
type Key struct {
	index      int
	generation uint32
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a dense keyed store: insertion reuses freed slots, and every key
// carries a generation counter so a stale Key into a reused slot is detected
// rather than silently returning the wrong value.
type Arena[T any] struct {
	slots []slot[T]
	free  []int
}

// New returns an empty Arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores value and returns a Key that retrieves it.
func (a *Arena[T]) Insert(value T) Key {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.occupied = true
		return Key{index: idx, generation: s.generation}
	}
	idx := len(a.slots)
	a.slots = append(a.slots, slot[T]{value: value, occupied: true})
	return Key{index: idx, generation: 0}
}

// Get returns the value stored under key, or false if it was never inserted
// or has since been removed.
func (a *Arena[T]) Get(key Key) (T, bool) {
	var zero T
	if key.index < 0 || key.index >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[key.index]
	if !s.occupied || s.generation != key.generation {
		return zero, false
	}
	return s.value, true
}

// Set overwrites the value stored under key, returning false if key is stale.
func (a *Arena[T]) Set(key Key, value T) bool {
	if key.index < 0 || key.index >= len(a.slots) {
		return false
	}
	s := &a.slots[key.index]
	if !s.occupied || s.generation != key.generation {
		return false
	}
	s.value = value
	return true
}

// Remove frees the slot held by key, invalidating it and every copy of it.
func (a *Arena[T]) Remove(key Key) bool {
	if key.index < 0 || key.index >= len(a.slots) {
		return false
	}
	s := &a.slots[key.index]
	if !s.occupied || s.generation != key.generation {
		return false
	}
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, key.index)
	return true
}

// Len returns the number of currently occupied slots.
func (a *Arena[T]) Len() int {
	return len(a.slots) - len(a.free)
}

// SlotIndex exposes the dense slot position a Key refers to, for callers
// that keep a second parallel structure (e.g. a Fenwick tree of
// selection weights) indexed the same way the arena lays out its slots.
func (k Key) SlotIndex() int { return k.index }

// Generation exposes the slot's reuse counter at the time k was minted, so
// a caller that snapshots a Key (e.g. a crossover source identifier) can
// later tell whether the slot has since been recycled.
func (k Key) Generation() uint32 { return k.generation }

// FindStep returns the index of the first element in a sorted slice whose
// cumulative weight exceeds needle, using a step size hint to favor a linear
// scan over a full binary search when the caller expects the answer to be
// close to a previous result (e.g. re-sampling after a small weight update).
// It falls back to binary search when the stepped scan doesn't land quickly.
func FindStep[T int | int64 | float64](sorted []T, needle T, fromHint int) int {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if fromHint < 0 {
		fromHint = 0
	}
	if fromHint > n-1 {
		fromHint = n - 1
	}

	const maxLinearSteps = 8
	i := fromHint
	if sorted[i] <= needle {
		for steps := 0; i < n && sorted[i] <= needle; steps++ {
			if steps >= maxLinearSteps {
				return binarySearchFirstGreater(sorted[i:], needle) + i
			}
			i++
		}
		return i
	}
	for steps := 0; i > 0 && sorted[i-1] > needle; steps++ {
		if steps >= maxLinearSteps {
			return binarySearchFirstGreater(sorted[:i], needle)
		}
		i--
	}
	return i
}

func binarySearchFirstGreater[T int | int64 | float64](sorted []T, needle T) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := (lo + hi) / 2
		if sorted[mid] <= needle {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
