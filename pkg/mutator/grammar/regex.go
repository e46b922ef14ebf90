// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package grammar

import (
	"fmt"
	"regexp/syntax"
)

// FromRegex translates a regular expression into a Grammar covering the
// same language, for the common subset of syntax fuzz targets actually
// describe with regexes: literals, character classes, concatenation,
// alternation, grouping, and bounded/unbounded repetition.
//
// Grounded on fuzzcheck-rs's mutators/grammar/regex.rs, which walks the
// regex-syntax crate's Hir the same way this walks Go's regexp/syntax.Regexp
// — the two crates/packages parse regexes into near-identical trees. Go's
// standard library is the natural translation target here: there is no
// second-source regex-parsing package anywhere in the example corpus, and
// reimplementing one would just be a worse regexp/syntax.
//
// Anchors, word boundaries, and byte-oriented (non-UTF8) patterns have no
// sensible grammar translation and return an error, matching the
// original's panics for the same cases.
func FromRegex(pattern string) (*Grammar, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("grammar: parsing regex %q: %w", pattern, err)
	}
	re = re.Simplify()
	return fromRegexRec(re)
}

func fromRegexRec(re *syntax.Regexp) (*Grammar, error) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return Concatenation(), nil
	case syntax.OpLiteral:
		gs := make([]*Grammar, len(re.Rune))
		for i, r := range re.Rune {
			gs[i] = Literal(r)
		}
		if len(gs) == 1 {
			return gs[0], nil
		}
		return Concatenation(gs...), nil
	case syntax.OpCharClass:
		ranges := make([]CharRange, 0, len(re.Rune)/2)
		for i := 0; i+1 < len(re.Rune); i += 2 {
			ranges = append(ranges, CharRange{Lo: re.Rune[i], Hi: re.Rune[i+1] + 1})
		}
		return &Grammar{Kind: KindLiteral, Ranges: ranges}, nil
	case syntax.OpAnyCharNotNL:
		return LiteralRanges([2]rune{0, '\n' - 1}, [2]rune{'\n' + 1, 0x10FFFF}), nil
	case syntax.OpAnyChar:
		return LiteralRange(0, 0x10FFFF), nil
	case syntax.OpCapture:
		return fromRegexRec(re.Sub[0])
	case syntax.OpStar:
		g, err := fromRegexRec(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return Repetition(g, 0, -1), nil
	case syntax.OpPlus:
		g, err := fromRegexRec(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return Repetition(g, 1, -1), nil
	case syntax.OpQuest:
		g, err := fromRegexRec(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return Repetition(g, 0, 1), nil
	case syntax.OpRepeat:
		g, err := fromRegexRec(re.Sub[0])
		if err != nil {
			return nil, err
		}
		max := re.Max
		if max < 0 {
			max = -1
		}
		return Repetition(g, re.Min, max), nil
	case syntax.OpConcat:
		gs := make([]*Grammar, len(re.Sub))
		for i, sub := range re.Sub {
			g, err := fromRegexRec(sub)
			if err != nil {
				return nil, err
			}
			gs[i] = g
		}
		return Concatenation(gs...), nil
	case syntax.OpAlternate:
		gs := make([]*Grammar, len(re.Sub))
		for i, sub := range re.Sub {
			g, err := fromRegexRec(sub)
			if err != nil {
				return nil, err
			}
			gs[i] = g
		}
		return Alternation(gs...), nil
	default:
		return nil, fmt.Errorf("grammar: unsupported regex construct %v in %q", re.Op, re)
	}
}
