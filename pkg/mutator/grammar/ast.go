// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package grammar

import "strings"

// AST is a parse tree produced by (and validated against) a Grammar. A leaf
// node holds a single matched rune; an interior node holds the sequence of
// children produced by a Concatenation or Repetition rule. Grounded on
// fuzzcheck-rs's AST enum, minus its Box(Box<AST>) variant: that variant
// exists only to give Rust's recursive enum a finite size, which Go's
// pointer-based Seq slice doesn't need.
type AST struct {
	IsToken bool
	Token   rune
	Seq     []*AST
}

// tokenAST builds a leaf node.
func tokenAST(c rune) *AST { return &AST{IsToken: true, Token: c} }

// seqAST builds an interior node.
func seqAST(children []*AST) *AST { return &AST{Seq: children} }

// GenerateString renders the characters matched by ast, in order.
func GenerateString(ast *AST) string {
	var b strings.Builder
	writeString(ast, &b)
	return b.String()
}

func writeString(ast *AST, b *strings.Builder) {
	if ast.IsToken {
		b.WriteRune(ast.Token)
		return
	}
	for _, child := range ast.Seq {
		writeString(child, b)
	}
}
