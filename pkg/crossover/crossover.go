// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package crossover defines the SubValueProvider protocol: the channel
// through which one mutator pulls typed sub-values out of another value
// (typically a different pool entry) without knowing its concrete shape.
//
// Grounded on fuzzcheck-rs's subvalue_provider.rs. Rust identifies the
// requested type with `TypeId`; Go has no Rust-style `TypeId` but does have
// native runtime type identity via reflect.Type, which is the type tag the
// design notes call for.
package crossover

import (
	"reflect"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
)

// Id identifies a SubValueProvider instance plus the generation of the
// underlying storage slot it was snapshotted from, so a provider can detect
// that its source was mutated again after the snapshot was taken.
type Id struct {
	Index      int
	Generation uint32
}

// Cursor is advanced by the caller between successive GetSubvalue calls on
// the same provider so that repeated draws return different candidates.
type Cursor struct {
	pos int
}

// SubValueProvider lets a mutator draw candidate sub-values of a requested
// type from another value's tree, for use as crossover material.
type SubValueProvider interface {
	Identifier() Id
	// GetSubvalue returns the next sub-value assignable to typ whose
	// complexity is at most maxCplx, advancing cursor, or false if none
	// remain under that cursor position.
	GetSubvalue(typ reflect.Type, maxCplx complexity.Complexity, cursor *Cursor) (value any, ok bool)
}

// Subvalue is one entry recorded by a Visitor: a child value reachable from
// the root along with its own complexity.
type Subvalue struct {
	Value any
	Cplx  complexity.Complexity
}

// VisitorProvider implements SubValueProvider over a fixed, pre-collected
// list of subvalues — typically gathered once via a mutator's
// VisitSubvalues callback when a pool entry is chosen as a crossover
// source, then reused for the lifetime of one mutation attempt.
type VisitorProvider struct {
	id     Id
	values []Subvalue
}

// NewVisitorProvider wraps a snapshot of subvalues collected from a single
// source value.
func NewVisitorProvider(id Id, values []Subvalue) *VisitorProvider {
	return &VisitorProvider{id: id, values: values}
}

func (p *VisitorProvider) Identifier() Id {
	return p.id
}

func (p *VisitorProvider) GetSubvalue(typ reflect.Type, maxCplx complexity.Complexity, cursor *Cursor) (any, bool) {
	for cursor.pos < len(p.values) {
		sv := p.values[cursor.pos]
		cursor.pos++
		if sv.Cplx > maxCplx {
			continue
		}
		if reflect.TypeOf(sv.Value) == typ {
			return sv.Value, true
		}
	}
	return nil, false
}

// None is a SubValueProvider that never yields anything, used when no
// crossover source is available (e.g. an empty pool, or the minify/read
// commands which never splice).
type None struct{}

func (None) Identifier() Id { return Id{} }

func (None) GetSubvalue(reflect.Type, complexity.Complexity, *Cursor) (any, bool) {
	return nil, false
}
