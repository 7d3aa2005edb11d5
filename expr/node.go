// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "fmt"

// Node is one node of a parsed expression tree. The tree is built once
// by the parser, owns its children exclusively, and is immutable; it
// can be evaluated many times against different contexts.
//
// Eval may invoke its callback inline (synchronous completion) or
// later, after a memory or register fetch finishes. Exactly one
// invocation happens per call.
//
// String renders a debug form that makes nesting and associativity
// explicit, e.g. ARRAY_ACCESS(ACCESSOR(.)(foo,bar), 1).
type Node interface {
	fmt.Stringer
	Eval(ctx EvalContext, cb EvalCallback)
}

// EvalCallback receives the result of evaluating a node. Exactly one of
// err and a usable value is meaningful; on error the value is zero.
type EvalCallback func(err error, v Value)

// IdentifierNode is a name reference, resolved through the context.
type IdentifierNode struct {
	Ident Identifier
}

func (n *IdentifierNode) String() string { return n.Ident.FullName() }

// IntegerNode is an integer literal. The text is validated at
// evaluation time, not parse time.
type IntegerNode struct {
	Token Token
}

func (n *IntegerNode) String() string { return n.Token.Value }

// BoolNode is a true/false literal.
type BoolNode struct {
	Value bool
}

func (n *BoolNode) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

// UnaryOpNode is a prefix operator other than & and *, currently only
// negation.
type UnaryOpNode struct {
	Op      Token
	Operand Node
}

func (n *UnaryOpNode) String() string {
	return fmt.Sprintf("UNARY(%s)(%s)", n.Op.Value, n.Operand)
}

// AddressOfNode is unary &.
type AddressOfNode struct {
	Operand Node
}

func (n *AddressOfNode) String() string {
	return fmt.Sprintf("ADDRESS_OF(%s)", n.Operand)
}

// DereferenceNode is unary *.
type DereferenceNode struct {
	Operand Node
}

func (n *DereferenceNode) String() string {
	return fmt.Sprintf("DEREFERENCE(%s)", n.Operand)
}

// MemberAccessNode is "." or "->". The member is stored as a lifted-out
// identifier, not a child expression subtree.
type MemberAccessNode struct {
	Left     Node
	Accessor Token
	Member   Identifier
}

func (n *MemberAccessNode) String() string {
	return fmt.Sprintf("ACCESSOR(%s)(%s,%s)", n.Accessor.Value, n.Left, n.Member.FullName())
}

// ArrayAccessNode is "left[index]".
type ArrayAccessNode struct {
	Left  Node
	Index Node
}

func (n *ArrayAccessNode) String() string {
	return fmt.Sprintf("ARRAY_ACCESS(%s, %s)", n.Left, n.Index)
}
