// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package mutator

// Ordering mirrors Rust's std::cmp::Ordering: a three-way comparison
// result, useful as a building block for fuzzing comparator implementations.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
)

// orderingVariant builds the Map[struct{}, Ordering] for a single fixed
// Ordering value: Parse accepts only that value, Build always returns it.
// Grounded on mutators/ordering.rs's make_mutator!-derived enum, which
// reduces a fieldless variant to a unit mutator under the hood the same
// way struct/enum derive does for other fieldless cases (§4.1.2).
func orderingVariant(value Ordering) Mutator[Ordering] {
	return Map[struct{}, Ordering]{
		Base: Unit{},
		Parse: func(v Ordering) (struct{}, bool) {
			if v != value {
				return struct{}{}, false
			}
			return struct{}{}, true
		},
		Build: func(struct{}) Ordering { return value },
	}
}

// NewOrderingMutator returns an Ordering mutator, built as a three-way
// Alternation over the Less/Equal/Greater singleton variants rather than a
// bespoke type, the same reduction make_mutator! applies to any fieldless
// enum.
func NewOrderingMutator() Mutator[Ordering] {
	return NewAlternation[Ordering]([]Mutator[Ordering]{
		orderingVariant(Less),
		orderingVariant(Equal),
		orderingVariant(Greater),
	}, []float64{1, 1, 1})
}
