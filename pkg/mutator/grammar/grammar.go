// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package grammar builds a Mutator[*AST] from a context-free grammar
// description, so that a fuzz target can mutate structured text (a small
// language, a config format, a protocol) instead of raw bytes.
//
// Grounded on fuzzcheck-rs's mutators/grammar/{grammar,ast,mod}.rs. The Rust
// Grammar enum ties recursive rules together with an Rc/Weak pair because
// Rc is refcounted and a plain reference cycle would leak; Go's GC collects
// cycles on its own; recursive grammars here close over plain *Grammar
// pointers. The companion mutator-side recursion problem (a mutator that
// must refer to itself before it exists) already has a home in this module
// at mutator.Recursive/RecurToMutator; ASTMutator (mutator.go) does not use
// it and follows Recursive rules itself through resolve.
package grammar

import "math"

// Kind tags which production rule a Grammar node represents.
type Kind int

const (
	KindLiteral Kind = iota
	KindAlternation
	KindConcatenation
	KindRepetition
	KindRecursive
	KindRecurse
)

// unbounded marks a Repetition with no upper bound on repeat count.
const unbounded = math.MaxInt32

// Grammar describes a context-free production rule. Alternation and
// Concatenation hold multiple sub-rules; Repetition holds exactly one
// (Repeat) plus a repeat count range; Recursive/Recurse implement
// self-reference (see Recursive below).
type Grammar struct {
	Kind Kind

	// KindLiteral: ranges of code points this rule matches, each
	// half-open [Lo, Hi).
	Ranges []CharRange

	// KindAlternation, KindConcatenation: the sub-rules, tried/applied
	// in order.
	Children []*Grammar

	// KindRepetition.
	Repeat         *Grammar
	RepMin, RepMax int

	// KindRecursive: the rule's actual body, which may itself contain
	// Recurse nodes pointing back to this *Grammar.
	Inner *Grammar

	// KindRecurse: the Recursive node this rule recurses into.
	recurseTarget *Grammar
}

// CharRange is a half-open code point interval [Lo, Hi).
type CharRange struct {
	Lo, Hi rune
}

// Literal matches a single character equal to c.
func Literal(c rune) *Grammar {
	return &Grammar{Kind: KindLiteral, Ranges: []CharRange{{Lo: c, Hi: c + 1}}}
}

// LiteralRange matches a single character in the inclusive range [lo, hi].
func LiteralRange(lo, hi rune) *Grammar {
	return &Grammar{Kind: KindLiteral, Ranges: []CharRange{{Lo: lo, Hi: hi + 1}}}
}

// LiteralRanges matches a single character in any of the given inclusive
// ranges.
func LiteralRanges(ranges ...[2]rune) *Grammar {
	rs := make([]CharRange, len(ranges))
	for i, r := range ranges {
		rs[i] = CharRange{Lo: r[0], Hi: r[1] + 1}
	}
	return &Grammar{Kind: KindLiteral, Ranges: rs}
}

// Alternation matches whichever of gs matches.
func Alternation(gs ...*Grammar) *Grammar {
	return &Grammar{Kind: KindAlternation, Children: gs}
}

// Concatenation matches each of gs in sequence.
func Concatenation(gs ...*Grammar) *Grammar {
	return &Grammar{Kind: KindConcatenation, Children: gs}
}

// Repetition matches g repeated between min and max times (inclusive). A
// negative max means unbounded.
func Repetition(g *Grammar, min, max int) *Grammar {
	if max < 0 {
		max = unbounded
	}
	return &Grammar{Kind: KindRepetition, Repeat: g, RepMin: min, RepMax: max}
}

// Recursive builds a self-referential rule. build receives a placeholder
// standing for the rule being defined; use Recurse(self) wherever the rule
// should refer to itself.
func Recursive(build func(self *Grammar) *Grammar) *Grammar {
	self := &Grammar{Kind: KindRecurse}
	g := &Grammar{Kind: KindRecursive}
	self.recurseTarget = g
	g.Inner = build(self)
	return g
}

// Recurse returns self unchanged; it exists so call sites read the same way
// as fuzzcheck-rs's recurse(rule), e.g. Concatenation(a, Recurse(self), b).
func Recurse(self *Grammar) *Grammar { return self }

// Regex builds a grammar from a regular expression; see regex.go for the
// supported subset.
func Regex(pattern string) *Grammar {
	g, err := FromRegex(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// resolve follows Recursive/Recurse indirection down to the first node that
// actually describes a match (Literal/Alternation/Concatenation/Repetition).
func resolve(g *Grammar) *Grammar {
	for i := 0; i < 64; i++ {
		switch g.Kind {
		case KindRecursive:
			g = g.Inner
		case KindRecurse:
			g = g.recurseTarget.Inner
		default:
			return g
		}
	}
	panic("grammar: Recursive/Recurse indirection did not resolve; rule likely refers to itself with no base case")
}
