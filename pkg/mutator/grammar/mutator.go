// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package grammar

import (
	"math"
	"math/rand"
	"reflect"

	"github.com/loiclec/fuzzcheck-go/pkg/complexity"
	"github.com/loiclec/fuzzcheck-go/pkg/crossover"
	"github.com/loiclec/fuzzcheck-go/pkg/mutator"
)

var astType = reflect.TypeOf((*AST)(nil))

// cacheNode mirrors the shape of the AST it was validated from or
// generated alongside, one node per AST node, each carrying the grammar
// rule actually responsible for it (with Alternation already resolved to
// whichever variant matched) so a later mutation knows what to regenerate
// at that position.
type cacheNode struct {
	grammar  *Grammar
	cplx     complexity.Complexity
	children []*cacheNode
}

type unmutateToken struct {
	ast   *AST
	cache *cacheNode
}

// ASTMutator produces and mutates ASTs constrained to a Grammar. It
// implements mutator.Mutator[*AST]; wrap it with WithString to also carry
// along the generated string.
//
// Grounded on fuzzcheck-rs's grammar_based_ast_mutator (mutators/grammar's
// mod.rs/mutators.rs): that constructor isn't present in the reference
// source this port draws from, so the generation/mutation algorithm below
// is original work following the same contract as this package's other
// combinators (Alternation, vector.Mutator) rather than a line-for-line
// port. It deliberately approximates rather than exhaustively enumerates
// the mutation space — see OrderedMutate.
type ASTMutator struct {
	Root *Grammar

	minMemo      map[*Grammar]complexity.Complexity
	minComputing map[*Grammar]bool
}

// NewASTMutator builds a mutator that generates and mutates ASTs matching
// root.
func NewASTMutator(root *Grammar) *ASTMutator {
	return &ASTMutator{
		Root:         root,
		minMemo:      map[*Grammar]complexity.Complexity{},
		minComputing: map[*Grammar]bool{},
	}
}

// WithString pairs the generated AST with its rendered string, so the
// predicate under test can consume a string directly while the engine
// still mutates the structured AST underneath. Unlike fuzzcheck-rs's
// ASTMutator::with_string, which overrides the pair's complexity to
// 1.0 + len(string)*8, this keeps the AST's own grammar-derived
// complexity: it already reflects the tree's shape and is what the rest
// of this mutator's budgeting logic (minComplexity, OrderedMutate) is
// computed against, so overriding it here would make the two disagree.
type WithString struct {
	AST    *AST
	String string
}

func (m *ASTMutator) WithString() mutator.Mutator[WithString] {
	return mutator.Map[*AST, WithString]{
		Base: m,
		Parse: func(v WithString) (*AST, bool) {
			if v.AST == nil {
				return nil, false
			}
			return v.AST, true
		},
		Build: func(ast *AST) WithString {
			return WithString{AST: ast, String: GenerateString(ast)}
		},
	}
}

func (m *ASTMutator) DefaultArbitraryStep() mutator.ArbitraryStep {
	step := 0
	return &step
}

func (m *ASTMutator) ValidateValue(v *AST) (mutator.Cache, bool) {
	if v == nil {
		return nil, false
	}
	return m.validate(m.Root, v)
}

func (m *ASTMutator) DefaultMutationStep(*AST, mutator.Cache) mutator.MutationStep {
	step := 0
	return &step
}

func (m *ASTMutator) MaxComplexity() complexity.Complexity {
	// Grammars routinely describe infinite languages (unbounded
	// repetition, genuine recursion); there is no finite upper bound to
	// report, the same reasoning RecurToMutator.MaxComplexity uses.
	return complexity.Complexity(math.Inf(1))
}

func (m *ASTMutator) MinComplexity() complexity.Complexity {
	return m.minComplexity(m.Root)
}

func (m *ASTMutator) Complexity(_ *AST, c mutator.Cache) complexity.Complexity {
	return c.(*cacheNode).cplx
}

// Clone returns v unchanged: replaceAt never writes through an existing
// *AST, it only builds new nodes and shares untouched subtrees by
// pointer (the same persistent-tree discipline Unmutate relies on), so
// no admitted tree is ever at risk of being mutated in place.
func (m *ASTMutator) Clone(v *AST) *AST { return v }

func (m *ASTMutator) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx complexity.Complexity) (*AST, complexity.Complexity, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}
	s := (*step).(*int)
	const attempts = 8
	if *s >= attempts {
		return nil, 0, false
	}
	localRand := rand.New(rand.NewSource(int64(*s)))
	*s++
	ast, _, cplx := m.generate(m.Root, localRand, maxCplx)
	return ast, cplx, true
}

func (m *ASTMutator) RandomArbitrary(r *rand.Rand, maxCplx complexity.Complexity) (*AST, complexity.Complexity) {
	ast, _, cplx := m.generate(m.Root, r, maxCplx)
	return ast, cplx
}

func (m *ASTMutator) OrderedMutate(v **AST, c *mutator.Cache, step *mutator.MutationStep, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity, bool) {
	oldAst := *v
	oldCache := (*c).(*cacheNode)
	total := m.subtreeSize(oldCache)
	s := (*step).(*int)
	if *s >= total {
		return nil, 0, false
	}
	idx := *s
	*s++

	targetGrammar, ok := m.grammarAt(oldCache, idx)
	if !ok {
		targetGrammar = m.Root
	}
	localRand := rand.New(rand.NewSource(int64(idx) + 1))
	newAst, newCache, _ := m.generateOrCrossover(targetGrammar, localRand, provider, maxCplx)

	resultAst, resultCache := m.replaceAt(oldAst, oldCache, idx, newAst, newCache)
	*v = resultAst
	*c = resultCache
	return unmutateToken{ast: oldAst, cache: oldCache}, resultCache.cplx, true
}

// RandomMutate has no SubValueProvider in its signature (unlike
// OrderedMutate), so it regenerates the chosen subtree from scratch rather
// than splicing in crossover material; the scheduler tries OrderedMutate
// (and therefore crossover) first and only falls back to this once ordered
// mutation is exhausted for the value.
func (m *ASTMutator) RandomMutate(r *rand.Rand, v **AST, c *mutator.Cache, maxCplx complexity.Complexity) (mutator.UnmutateToken, complexity.Complexity) {
	oldAst := *v
	oldCache := (*c).(*cacheNode)
	total := m.subtreeSize(oldCache)
	idx := r.Intn(total)

	targetGrammar, ok := m.grammarAt(oldCache, idx)
	if !ok {
		targetGrammar = m.Root
	}
	newAst, newCache, _ := m.generate(targetGrammar, r, maxCplx)

	resultAst, resultCache := m.replaceAt(oldAst, oldCache, idx, newAst, newCache)
	*v = resultAst
	*c = resultCache
	return unmutateToken{ast: oldAst, cache: oldCache}, resultCache.cplx
}

// generateOrCrossover is OrderedMutate's subtree-replacement source: with
// low probability it pulls a ready-made *AST out of provider (crossover
// material from another pool entry's VisitSubvalues walk) and keeps it if
// it validates against g; otherwise it falls back to generating fresh.
func (m *ASTMutator) generateOrCrossover(g *Grammar, r *rand.Rand, provider crossover.SubValueProvider, maxCplx complexity.Complexity) (*AST, *cacheNode, complexity.Complexity) {
	if provider != nil {
		if r.Float64() < 0.2 {
			var cur crossover.Cursor
			if val, ok := provider.GetSubvalue(astType, maxCplx, &cur); ok {
				if cand, ok := val.(*AST); ok {
					if cache, ok := m.validate(g, cand); ok {
						return cand, cache, cache.cplx
					}
				}
			}
		}
	}
	return m.generate(g, r, maxCplx)
}

func (m *ASTMutator) Unmutate(v **AST, c *mutator.Cache, token mutator.UnmutateToken) {
	t := token.(unmutateToken)
	*v = t.ast
	*c = t.cache
}

func (m *ASTMutator) VisitSubvalues(v *AST, c mutator.Cache, visit mutator.VisitFunc) {
	m.visit(v, c.(*cacheNode), visit)
}

func (m *ASTMutator) visit(ast *AST, cache *cacheNode, visit mutator.VisitFunc) {
	for i, childCache := range cache.children {
		child := ast.Seq[i]
		visit(child, childCache.cplx)
		m.visit(child, childCache, visit)
	}
}

// minComplexity computes the cheapest AST g can produce, memoized, with
// in-progress nodes reporting +Inf so a recursive rule's cost is derived
// purely from whichever of its non-recursive alternatives is cheapest —
// mirroring RecurToMutator.MaxComplexity's "don't unroll, return the
// value that can't win a min/max comparison" trick, used here for min
// instead of max.
func (m *ASTMutator) minComplexity(g *Grammar) complexity.Complexity {
	g = resolve(g)
	if v, ok := m.minMemo[g]; ok {
		return v
	}
	if m.minComputing[g] {
		return complexity.Complexity(math.Inf(1))
	}
	m.minComputing[g] = true
	var result complexity.Complexity
	switch g.Kind {
	case KindLiteral:
		result = 1
	case KindAlternation:
		result = complexity.Complexity(math.Inf(1))
		for _, child := range g.Children {
			if v := m.minComplexity(child); v < result {
				result = v
			}
		}
	case KindConcatenation:
		result = 1
		for _, child := range g.Children {
			result += m.minComplexity(child)
		}
	case KindRepetition:
		result = 1 + complexity.SizeToComplexity(g.RepMin) + complexity.Complexity(g.RepMin)*m.minComplexity(g.Repeat)
	}
	delete(m.minComputing, g)
	m.minMemo[g] = result
	return result
}

// generate produces a fresh AST rooted at g within maxCplx. It doesn't
// guarantee the tightest possible fit (Concatenation and Repetition divide
// the remaining budget greedily rather than solving a global allocation),
// matching the same "good enough, not optimal" budget handling vector.go
// uses for its own child mutator.
func (m *ASTMutator) generate(g *Grammar, r *rand.Rand, maxCplx complexity.Complexity) (*AST, *cacheNode, complexity.Complexity) {
	g = resolve(g)
	switch g.Kind {
	case KindLiteral:
		return tokenAST(g.randomRune(r)), &cacheNode{grammar: g, cplx: 1}, 1

	case KindAlternation:
		candidates := make([]*Grammar, 0, len(g.Children))
		for _, child := range g.Children {
			if m.minComplexity(child) <= maxCplx {
				candidates = append(candidates, child)
			}
		}
		if len(candidates) == 0 {
			best := g.Children[0]
			bestCplx := m.minComplexity(best)
			for _, child := range g.Children[1:] {
				if v := m.minComplexity(child); v < bestCplx {
					best, bestCplx = child, v
				}
			}
			candidates = []*Grammar{best}
		}
		chosen := candidates[r.Intn(len(candidates))]
		return m.generate(chosen, r, maxCplx)

	case KindConcatenation:
		children := make([]*AST, len(g.Children))
		caches := make([]*cacheNode, len(g.Children))
		sum := complexity.Complexity(1)
		for i, child := range g.Children {
			budget := maxCplx - sum
			if min := m.minComplexity(child); budget < min {
				budget = min
			}
			ast, cache, cplx := m.generate(child, r, budget)
			children[i], caches[i] = ast, cache
			sum += cplx
		}
		return seqAST(children), &cacheNode{grammar: g, cplx: sum, children: caches}, sum

	case KindRepetition:
		maxCount := g.RepMax
		if maxCount == unbounded {
			maxCount = g.RepMin + 32
		}
		if maxCount < g.RepMin {
			maxCount = g.RepMin
		}
		count := g.RepMin
		if maxCount > g.RepMin {
			count = g.RepMin + r.Intn(maxCount-g.RepMin+1)
		}
		var children []*AST
		var caches []*cacheNode
		sum := complexity.Complexity(1)
		elemMin := m.minComplexity(g.Repeat)
		for i := 0; i < count; i++ {
			if i >= g.RepMin {
				if maxCplx-sum-complexity.SizeToComplexity(len(children)+1) < elemMin {
					break
				}
			}
			budget := maxCplx - sum
			if budget < elemMin {
				budget = elemMin
			}
			ast, cache, cplx := m.generate(g.Repeat, r, budget)
			children = append(children, ast)
			caches = append(caches, cache)
			sum += cplx
		}
		sum = complexity.Complexity(1) + complexity.SizeToComplexity(len(children))
		for _, cache := range caches {
			sum += cache.cplx
		}
		return seqAST(children), &cacheNode{grammar: g, cplx: sum, children: caches}, sum
	}
	panic("grammar: resolve returned an unexpected Kind")
}

func (m *ASTMutator) validate(g *Grammar, ast *AST) (*cacheNode, bool) {
	g = resolve(g)
	switch g.Kind {
	case KindLiteral:
		if !ast.IsToken || !inRanges(g.Ranges, ast.Token) {
			return nil, false
		}
		return &cacheNode{grammar: g, cplx: 1}, true

	case KindAlternation:
		for _, child := range g.Children {
			if cache, ok := m.validate(child, ast); ok {
				return cache, true
			}
		}
		return nil, false

	case KindConcatenation:
		if ast.IsToken || len(ast.Seq) != len(g.Children) {
			return nil, false
		}
		children := make([]*cacheNode, len(g.Children))
		sum := complexity.Complexity(1)
		for i, child := range g.Children {
			cache, ok := m.validate(child, ast.Seq[i])
			if !ok {
				return nil, false
			}
			children[i] = cache
			sum += cache.cplx
		}
		return &cacheNode{grammar: g, cplx: sum, children: children}, true

	case KindRepetition:
		if ast.IsToken {
			return nil, false
		}
		n := len(ast.Seq)
		if n < g.RepMin || (g.RepMax != unbounded && n > g.RepMax) {
			return nil, false
		}
		children := make([]*cacheNode, n)
		sum := complexity.Complexity(1) + complexity.SizeToComplexity(n)
		for i, child := range ast.Seq {
			cache, ok := m.validate(g.Repeat, child)
			if !ok {
				return nil, false
			}
			children[i] = cache
			sum += cache.cplx
		}
		return &cacheNode{grammar: g, cplx: sum, children: children}, true
	}
	return nil, false
}

func (m *ASTMutator) subtreeSize(c *cacheNode) int {
	n := 1
	for _, child := range c.children {
		n += m.subtreeSize(child)
	}
	return n
}

func (m *ASTMutator) grammarAt(c *cacheNode, idx int) (*Grammar, bool) {
	if idx == 0 {
		return c.grammar, true
	}
	idx--
	for _, child := range c.children {
		size := m.subtreeSize(child)
		if idx < size {
			return m.grammarAt(child, idx)
		}
		idx -= size
	}
	return nil, false
}

// replaceAt rebuilds the path from the root down to position idx with
// replacement spliced in, sharing every untouched sibling subtree by
// pointer (the usual persistent-tree path-copying trick).
func (m *ASTMutator) replaceAt(ast *AST, cache *cacheNode, idx int, replacement *AST, replacementCache *cacheNode) (*AST, *cacheNode) {
	if idx == 0 {
		return replacement, replacementCache
	}
	idx--
	for i, childCache := range cache.children {
		size := m.subtreeSize(childCache)
		if idx < size {
			newChildAst, newChildCache := m.replaceAt(ast.Seq[i], childCache, idx, replacement, replacementCache)
			newSeq := append([]*AST(nil), ast.Seq...)
			newSeq[i] = newChildAst
			newChildren := append([]*cacheNode(nil), cache.children...)
			newChildren[i] = newChildCache
			sum := cache.cplx - childCache.cplx + newChildCache.cplx
			return seqAST(newSeq), &cacheNode{grammar: cache.grammar, cplx: sum, children: newChildren}
		}
		idx -= size
	}
	return ast, cache
}

func (g *Grammar) randomRune(r *rand.Rand) rune {
	var total int64
	for _, rg := range g.Ranges {
		total += int64(rg.Hi) - int64(rg.Lo)
	}
	if total <= 0 {
		return g.Ranges[0].Lo
	}
	x := r.Int63n(total)
	for _, rg := range g.Ranges {
		size := int64(rg.Hi) - int64(rg.Lo)
		if x < size {
			return rg.Lo + rune(x)
		}
		x -= size
	}
	last := g.Ranges[len(g.Ranges)-1]
	return last.Hi - 1
}

func inRanges(ranges []CharRange, c rune) bool {
	for _, rg := range ranges {
		if c >= rg.Lo && c < rg.Hi {
			return true
		}
	}
	return false
}
