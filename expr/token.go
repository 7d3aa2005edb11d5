// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// TokenKind identifies one lexical element of an expression.
type TokenKind int

const (
	TokenInvalid TokenKind = iota
	TokenName
	TokenInteger

	TokenEquals     // =
	TokenEquality   // ==
	TokenDot        // .
	TokenComma      // ,
	TokenStar       // *
	TokenAmpersand  // &
	TokenDoubleAnd  // &&
	TokenLogicalOr  // ||
	TokenArrow      // ->
	TokenLeftSquare // [
	TokenRightSquare
	TokenLeftParen // (
	TokenRightParen
	TokenMinus      // -
	TokenPlus       // +
	TokenColonColon // ::
	TokenLess       // <
	TokenGreater    // >
	TokenShiftRight // >>

	TokenTrue
	TokenFalse
	TokenConst
	TokenVolatile
)

// Token is one lexical element: its kind, the source text, and the byte
// offset of that text in the input. Immutable once produced.
type Token struct {
	Kind   TokenKind
	Value  string
	Offset int
}

// twoCharOps are operators recognized by one character of lookahead.
// Order does not matter; first-character dispatch picks the candidate.
var twoCharOps = map[string]TokenKind{
	"->": TokenArrow,
	"::": TokenColonColon,
	"==": TokenEquality,
	"&&": TokenDoubleAnd,
	"||": TokenLogicalOr,
	">>": TokenShiftRight,
}

var oneCharOps = map[byte]TokenKind{
	'=': TokenEquals,
	'.': TokenDot,
	',': TokenComma,
	'*': TokenStar,
	'&': TokenAmpersand,
	'[': TokenLeftSquare,
	']': TokenRightSquare,
	'(': TokenLeftParen,
	')': TokenRightParen,
	'-': TokenMinus,
	'+': TokenPlus,
	'<': TokenLess,
	'>': TokenGreater,
}

var keywords = map[string]TokenKind{
	"true":     TokenTrue,
	"false":    TokenFalse,
	"const":    TokenConst,
	"volatile": TokenVolatile,
}
