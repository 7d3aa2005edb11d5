// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "fmt"

// The parser is a Pratt (operator-precedence) parser. Each token kind
// has an optional prefix handler, an optional infix handler, and an
// infix precedence. parseExpression consumes one token, applies its
// prefix handler to get a left subtree, then folds in infix operators
// while their precedence exceeds the caller's minimum.
//
// Precedence bands are non-contiguous so that the "precedence - 1"
// adjustment for right-associative operators never crosses into the
// band below.
const (
	precNone       = 0
	precAssignment = 10
	precEquality   = 20
	precUnary      = 70 // prefix * & -
	precCallAccess = 80 // . -> [] ()
	precScope      = 90 // ::
)

// ParseError is a parser failure: a message plus the token it points
// at. The token's offset locates the error in the source string.
type ParseError struct {
	Msg   string
	Token Token
}

func (e *ParseError) Error() string { return e.Msg }

type prefixFunc func(p *parser, t Token) (Node, error)
type infixFunc func(p *parser, left Node, t Token) (Node, error)

type dispatchInfo struct {
	prefix     prefixFunc
	infix      infixFunc
	precedence int
}

// dispatch is the per-token-kind handler table.
var dispatch map[TokenKind]dispatchInfo

func init() {
	dispatch = map[TokenKind]dispatchInfo{
		TokenName:       {prefix: parseName},
		TokenInteger:    {prefix: parseInteger},
		TokenTrue:       {prefix: parseBool},
		TokenFalse:      {prefix: parseBool},
		TokenLeftParen:  {prefix: parseGroup},
		TokenMinus:      {prefix: parseUnaryPrefix, precedence: precUnary},
		TokenStar:       {prefix: parseUnaryPrefix, precedence: precUnary},
		TokenAmpersand:  {prefix: parseUnaryPrefix, precedence: precUnary},
		TokenDot:        {infix: parseMemberAccess, precedence: precCallAccess},
		TokenArrow:      {infix: parseMemberAccess, precedence: precCallAccess},
		TokenLeftSquare: {infix: parseArrayAccess, precedence: precCallAccess},
		TokenColonColon: {prefix: parseScopePrefix, infix: parseScopeJoin, precedence: precScope},
		// Reserved bands; no handlers yet.
		TokenEquals:   {precedence: precAssignment},
		TokenEquality: {precedence: precEquality},
	}
}

// Parse converts a token stream into an expression tree. Errors are
// returned as *ParseError carrying the offending token; the returned
// Node is nil exactly when the error is non-nil.
func Parse(tokens []Token) (Node, error) {
	p := &parser{tokens: tokens}
	node, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, &ParseError{
			Msg:   "Unexpected input, did you forget an operator?",
			Token: p.peek(),
		}
	}
	return node, nil
}

type parser struct {
	tokens []Token
	cur    int
}

func (p *parser) done() bool  { return p.cur >= len(p.tokens) }
func (p *parser) peek() Token { return p.tokens[p.cur] }

func (p *parser) consume() Token {
	t := p.tokens[p.cur]
	p.cur++
	return t
}

// endToken is what errors point at when input ends prematurely.
func (p *parser) endToken() Token {
	if len(p.tokens) == 0 {
		return Token{}
	}
	last := p.tokens[len(p.tokens)-1]
	return Token{TokenInvalid, "", last.Offset + len(last.Value)}
}

func (p *parser) parseExpression(minPrecedence int) (Node, error) {
	if p.done() {
		return nil, &ParseError{Msg: "Expected expression instead of end of input.", Token: p.endToken()}
	}
	t := p.consume()
	d := dispatch[t.Kind]
	if d.prefix == nil {
		return nil, &ParseError{Msg: fmt.Sprintf("Unexpected token '%s'.", t.Value), Token: t}
	}
	left, err := d.prefix(p, t)
	if err != nil {
		return nil, err
	}

	for !p.done() && dispatch[p.peek().Kind].precedence > minPrecedence {
		t := p.consume()
		d := dispatch[t.Kind]
		if d.infix == nil {
			return nil, &ParseError{Msg: fmt.Sprintf("Unexpected token '%s'.", t.Value), Token: t}
		}
		left, err = d.infix(p, left, t)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func parseName(p *parser, t Token) (Node, error) {
	return &IdentifierNode{Ident: NewIdentifier(t.Value)}, nil
}

func parseInteger(p *parser, t Token) (Node, error) {
	return &IntegerNode{Token: t}, nil
}

func parseBool(p *parser, t Token) (Node, error) {
	return &BoolNode{Value: t.Kind == TokenTrue}, nil
}

func parseGroup(p *parser, t Token) (Node, error) {
	node, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if p.done() || p.peek().Kind != TokenRightParen {
		return nil, &ParseError{Msg: "Expected ')' to match.", Token: t}
	}
	p.consume()
	return node, nil
}

// parseUnaryPrefix handles prefix -, *, and &. All are right-
// associative, hence the precedence - 1 recursion.
func parseUnaryPrefix(p *parser, t Token) (Node, error) {
	if p.done() {
		return nil, &ParseError{Msg: fmt.Sprintf("Expected expression for '%s'.", t.Value), Token: t}
	}
	operand, err := p.parseExpression(precUnary - 1)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case TokenMinus:
		return &UnaryOpNode{Op: t, Operand: operand}, nil
	case TokenStar:
		return &DereferenceNode{Operand: operand}, nil
	case TokenAmpersand:
		return &AddressOfNode{Operand: operand}, nil
	}
	return nil, &ParseError{Msg: "Internal parser dispatch error.", Token: t}
}

// parseMemberAccess handles "." and "->". The right-hand side must
// parse to a bare identifier; its name is lifted into the node rather
// than kept as a child subtree.
func parseMemberAccess(p *parser, left Node, t Token) (Node, error) {
	if p.done() {
		return nil, &ParseError{Msg: fmt.Sprintf("Expected identifier after '%s'.", t.Value), Token: t}
	}
	right, err := p.parseExpression(precCallAccess)
	if err != nil {
		return nil, err
	}
	in, ok := right.(*IdentifierNode)
	if !ok {
		return nil, &ParseError{
			Msg:   fmt.Sprintf("Expected identifier for right-hand side of '%s'.", t.Value),
			Token: t,
		}
	}
	return &MemberAccessNode{Left: left, Accessor: t, Member: in.Ident}, nil
}

func parseArrayAccess(p *parser, left Node, t Token) (Node, error) {
	index, err := p.parseExpression(precNone)
	if err != nil {
		return nil, err
	}
	if p.done() || p.peek().Kind != TokenRightSquare {
		return nil, &ParseError{Msg: "Expected ']' to match.", Token: t}
	}
	p.consume()
	return &ArrayAccessNode{Left: left, Index: index}, nil
}

// parseScopePrefix handles a leading "::", marking the following
// identifier as globally qualified.
func parseScopePrefix(p *parser, t Token) (Node, error) {
	if p.done() {
		return nil, &ParseError{Msg: "Expected name after '::'.", Token: t}
	}
	right, err := p.parseExpression(precScope - 1)
	if err != nil {
		return nil, err
	}
	in, ok := right.(*IdentifierNode)
	if !ok {
		return nil, &ParseError{Msg: "Expected name after '::'.", Token: t}
	}
	if in.Ident.InGlobalNamespace() {
		return nil, &ParseError{Msg: "Duplicate '::'.", Token: t}
	}
	comps := make([]Component, len(in.Ident.Components))
	copy(comps, in.Ident.Components)
	comps[0].HasSeparator = true
	return &IdentifierNode{Ident: Identifier{Components: comps}}, nil
}

// parseScopeJoin handles "a::b". Both sides must themselves be plain
// identifiers, not arbitrary expressions. "::" is right-associative so
// long chains fold into one identifier.
func parseScopeJoin(p *parser, left Node, t Token) (Node, error) {
	lin, ok := left.(*IdentifierNode)
	if !ok {
		return nil, &ParseError{Msg: "Expected name before '::'.", Token: t}
	}
	if p.done() {
		return nil, &ParseError{Msg: "Expected name after '::'.", Token: t}
	}
	right, err := p.parseExpression(precScope - 1)
	if err != nil {
		return nil, err
	}
	rin, ok := right.(*IdentifierNode)
	if !ok {
		return nil, &ParseError{Msg: "Expected name after '::'.", Token: t}
	}
	if rin.Ident.InGlobalNamespace() {
		return nil, &ParseError{Msg: "Duplicate '::'.", Token: t}
	}
	comps := make([]Component, 0, len(lin.Ident.Components)+len(rin.Ident.Components))
	comps = append(comps, lin.Ident.Components...)
	comps = append(comps, rin.Ident.Components...)
	return &IdentifierNode{Ident: Identifier{Components: comps}}, nil
}
