// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package dedup implements a bloom filter used to cheaply reject values
// that the unique-values pool has almost certainly already recorded,
// before paying for the exact map lookup.
//
// Ported from fuzzcheck-rs's mutators/bloom_filter.rs (itself derived from
// the lupine crate), using the standard two-hash simulation of k hash
// functions (Kirsch-Mitzenmacher) over Go's maphash instead of AHasher.
package dedup

import (
	"hash/maphash"
	"math"
)

// Filter is a fixed-size bloom filter over byte-keyed values.
type Filter struct {
	k     uint64
	m     uint64
	seed1 maphash.Seed
	seed2 maphash.Seed
	bits  []uint64
}

// New returns a Filter sized for `size` expected insertions at the given
// acceptable false-positive rate (e.g. 0.01 for 1%).
func New(size int, falsePosRate float64) *Filter {
	k := optimalK(falsePosRate)
	if k < 1 {
		k = 1
	}
	m := optimalM(falsePosRate, size)
	if m < 64 {
		m = 64
	}
	return &Filter{
		k:     k,
		m:     m,
		seed1: maphash.MakeSeed(),
		seed2: maphash.MakeSeed(),
		bits:  make([]uint64, (m+63)/64),
	}
}

func optimalM(falsePosRate float64, size int) uint64 {
	ln2sqr := math.Ln2 * math.Ln2
	v := -(float64(size) * math.Log(falsePosRate)) / ln2sqr
	return uint64(math.Ceil(v))
}

func optimalK(falsePosRate float64) uint64 {
	v := -math.Log(falsePosRate) / math.Ln2
	return uint64(math.Ceil(v))
}

func (f *Filter) hash(data []byte) (uint64, uint64) {
	var h1, h2 maphash.Hash
	h1.SetSeed(f.seed1)
	h2.SetSeed(f.seed2)
	h1.Write(data)
	h2.Write(data)
	return h1.Sum64(), h2.Sum64()
}

func (f *Filter) index(i, hash1, hash2 uint64) uint64 {
	return (hash1 + i*hash2) % f.m
}

func (f *Filter) get(index uint64) bool {
	return f.bits[index/64]&(1<<(index%64)) != 0
}

func (f *Filter) set(index uint64) {
	f.bits[index/64] |= 1 << (index % 64)
}

// Insert records data as present.
func (f *Filter) Insert(data []byte) {
	hash1, hash2 := f.hash(data)
	for i := uint64(0); i < f.k; i++ {
		f.set(f.index(i, hash1, hash2))
	}
}

// MaybeContains returns false if data was definitely never inserted, and
// true if it may have been (subject to the configured false-positive rate).
func (f *Filter) MaybeContains(data []byte) bool {
	hash1, hash2 := f.hash(data)
	for i := uint64(0); i < f.k; i++ {
		if !f.get(f.index(i, hash1, hash2)) {
			return false
		}
	}
	return true
}
