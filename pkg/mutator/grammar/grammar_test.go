// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package grammar

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
)

func TestLiteralGenerateAndValidate(t *testing.T) {
	g := LiteralRange('a', 'z')
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(1))
	ast, cplx := m.RandomArbitrary(r, 10)
	assert.Equal(t, 1.0, cplx)
	s := GenerateString(ast)
	assert.Len(t, s, 1)
	assert.True(t, s[0] >= 'a' && s[0] <= 'z')

	_, ok := m.ValidateValue(ast)
	assert.True(t, ok)
	_, ok = m.ValidateValue(tokenAST('!'))
	assert.False(t, ok)
}

func TestAlternationPicksValidVariant(t *testing.T) {
	g := Alternation(Literal('a'), Literal('b'), Literal('c'))
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		ast, _ := m.RandomArbitrary(r, 10)
		s := GenerateString(ast)
		assert.Contains(t, "abc", s)
	}
}

func TestConcatenationAndRepetitionRespectBounds(t *testing.T) {
	g := Concatenation(
		Repetition(Literal('x'), 1, 5),
		Literal('!'),
	)
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		ast, cplx := m.RandomArbitrary(r, 30)
		s := GenerateString(ast)
		assert.True(t, strings.HasSuffix(s, "!"))
		xs := strings.TrimSuffix(s, "!")
		assert.True(t, len(xs) >= 1 && len(xs) <= 5, "got %q", s)
		c, ok := m.ValidateValue(ast)
		assert.True(t, ok)
		assert.Equal(t, cplx, m.Complexity(ast, c))
	}
}

func TestRecursiveGrammarMatchesBalancedBrackets(t *testing.T) {
	g := Recursive(func(self *Grammar) *Grammar {
		return Alternation(
			Concatenation(Literal('('), Recurse(self), Literal(')')),
			LiteralRange('a', 'z'),
		)
	})
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		ast, cplx := m.RandomArbitrary(r, 40)
		s := GenerateString(ast)
		assert.True(t, cplx <= 40)
		assertBalanced(t, s)
		_, ok := m.ValidateValue(ast)
		assert.True(t, ok)
	}
}

func assertBalanced(t *testing.T, s string) {
	t.Helper()
	depth := 0
	for _, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			assert.GreaterOrEqual(t, depth, 0)
		default:
			assert.True(t, c >= 'a' && c <= 'z')
		}
	}
	assert.Equal(t, 0, depth)
}

func TestFromRegexLiteralAndClass(t *testing.T) {
	g, err := FromRegex(`[a-c]x`)
	assert.NoError(t, err)
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 10; i++ {
		ast, _ := m.RandomArbitrary(r, 10)
		s := GenerateString(ast)
		assert.Len(t, s, 2)
		assert.Contains(t, "abc", string(s[0]))
		assert.Equal(t, byte('x'), s[1])
	}
}

func TestFromRegexRepetitionAndAlternation(t *testing.T) {
	g, err := FromRegex(`(foo|bar)+`)
	assert.NoError(t, err)
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(6))
	ast, _ := m.RandomArbitrary(r, 60)
	s := GenerateString(ast)
	assert.True(t, len(s) > 0)
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "foo"):
			s = s[3:]
		case strings.HasPrefix(s, "bar"):
			s = s[3:]
		default:
			t.Fatalf("unexpected remainder %q", s)
		}
	}
}

func TestFromRegexRejectsAnchors(t *testing.T) {
	_, err := FromRegex(`^abc$`)
	assert.Error(t, err)
}

func TestWithStringRendersMatchingText(t *testing.T) {
	g := Concatenation(Literal('h'), Literal('i'))
	base := NewASTMutator(g)
	wrapped := base.WithString()
	r := rand.New(rand.NewSource(7))
	v, _ := wrapped.RandomArbitrary(r, 10)
	assert.Equal(t, "hi", v.String)
	assert.Equal(t, "hi", GenerateString(v.AST))
}

func TestOrderedMutateExhaustsThenFails(t *testing.T) {
	g := Concatenation(Literal('a'), Literal('b'), Literal('c'))
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(8))
	ast, _ := m.RandomArbitrary(r, 10)
	cache, ok := m.ValidateValue(ast)
	assert.True(t, ok)

	step := m.DefaultMutationStep(ast, cache)
	v := ast
	c := cache
	count := 0
	for {
		token, _, ok := m.OrderedMutate(&v, &c, &step, crossover.None{}, 10)
		if !ok {
			break
		}
		count++
		_, valid := m.ValidateValue(v)
		assert.True(t, valid)
		m.Unmutate(&v, &c, token)
		assert.Equal(t, ast, v)
	}
	assert.Greater(t, count, 0)
}

func TestRandomMutateProducesValidValue(t *testing.T) {
	g := Repetition(LiteralRange('0', '9'), 1, 8)
	m := NewASTMutator(g)
	r := rand.New(rand.NewSource(9))
	v, _ := m.RandomArbitrary(r, 20)
	c, ok := m.ValidateValue(v)
	assert.True(t, ok)
	for i := 0; i < 20; i++ {
		token, cplx := m.RandomMutate(r, &v, &c, 20)
		_, valid := m.ValidateValue(v)
		assert.True(t, valid)
		assert.Equal(t, cplx, m.Complexity(v, c))
		m.Unmutate(&v, &c, token)
	}
}
