// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package main

import (
	"github.com/loiclec/fuzzcheck-go/pkg/covsensor"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator/grammar"
)

// Coverage counter ids hit while walking an expression's AST. They stand
// in for the edge counters a real instrumented build would emit; distinct
// ids per production keep the coverage pool able to tell "found a
// parenthesized factor" apart from "found a division", which is what
// eventually steers generation toward the division-by-zero input below.
const (
	counterAddSub = iota
	counterAdd
	counterSub
	counterMulDiv
	counterMul
	counterDiv
	counterParenFactor
	counterNumberFactor
	counterCount
)

// exprGrammar describes arithmetic expressions over small decimal integers:
//
//	expr   := term (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := digit+ | '(' expr ')'
//
// Built the same way the grammar package's own balanced-bracket example
// builds a self-referential rule: factor recurses into expr through the
// Recursive placeholder, so parentheses can nest arbitrarily deep within
// the --max-cplx budget.
func exprGrammar() *grammar.Grammar {
	digit := grammar.LiteralRange('0', '9')
	number := grammar.Repetition(digit, 1, 6)
	return grammar.Recursive(func(expr *grammar.Grammar) *grammar.Grammar {
		factor := grammar.Alternation(
			number,
			grammar.Concatenation(grammar.Literal('('), expr, grammar.Literal(')')),
		)
		term := grammar.Concatenation(
			factor,
			grammar.Repetition(grammar.Concatenation(grammar.Alternation(grammar.Literal('*'), grammar.Literal('/')), factor), 0, -1),
		)
		return grammar.Concatenation(
			term,
			grammar.Repetition(grammar.Concatenation(grammar.Alternation(grammar.Literal('+'), grammar.Literal('-')), term), 0, -1),
		)
	})
}

// evalExpr walks an AST produced by exprGrammar and computes its value,
// recording one coverage hit per production visited. Integer division by
// zero is left to panic naturally rather than being guarded against: that
// panic is the target's one deliberately unfixed bug, the thing a fuzzing
// run over this harness is expected to rediscover.
func evalExpr(ast *grammar.AST, src *covsensor.MemorySource) int64 {
	src.Hit(counterAddSub)
	v := evalTerm(ast.Seq[0], src)
	for _, pair := range ast.Seq[1].Seq {
		rhs := evalTerm(pair.Seq[1], src)
		if pair.Seq[0].Token == '+' {
			src.Hit(counterAdd)
			v += rhs
		} else {
			src.Hit(counterSub)
			v -= rhs
		}
	}
	return v
}

func evalTerm(ast *grammar.AST, src *covsensor.MemorySource) int64 {
	src.Hit(counterMulDiv)
	v := evalFactor(ast.Seq[0], src)
	for _, pair := range ast.Seq[1].Seq {
		rhs := evalFactor(pair.Seq[1], src)
		if pair.Seq[0].Token == '*' {
			src.Hit(counterMul)
			v *= rhs
		} else {
			src.Hit(counterDiv)
			v /= rhs
		}
	}
	return v
}

func evalFactor(ast *grammar.AST, src *covsensor.MemorySource) int64 {
	if ast.Seq[0].IsToken && ast.Seq[0].Token == '(' {
		src.Hit(counterParenFactor)
		return evalExpr(ast.Seq[1], src)
	}
	src.Hit(counterNumberFactor)
	var v int64
	for _, digit := range ast.Seq {
		v = v*10 + int64(digit.Token-'0')
	}
	return v
}
