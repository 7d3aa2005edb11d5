// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"math"
	"strconv"

	"github.com/sdb-project/sdb/symbol"
)

// Predeclared base types for values the evaluator synthesizes itself.
var (
	intType  = &symbol.BaseType{Kind: symbol.BaseSigned, ByteSize: 4, Name: "int"}
	longType = &symbol.BaseType{Kind: symbol.BaseSigned, ByteSize: 8, Name: "long"}
	boolType = &symbol.BaseType{Kind: symbol.BaseBoolean, ByteSize: 1, Name: "bool"}
)

// Evaluation composes depth-first, left to right, through chained
// callbacks. The first error wins: once a sub-evaluation fails, the
// parent forwards the error without evaluating anything else.

func (n *IdentifierNode) Eval(ctx EvalContext, cb EvalCallback) {
	ctx.GetNamedValue(n.Ident, func(err error, _ symbol.Symbol, v Value) {
		cb(err, v)
	})
}

func (n *IntegerNode) Eval(ctx EvalContext, cb EvalCallback) {
	// The tokenizer accepts any alnum run as an integer; validation
	// happens here. Base 0 gives 0x / 0o / decimal forms.
	text := n.Token.Value
	u, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		cb(errf(ErrSyntax, "Invalid number '%s'.", text), Value{})
		return
	}
	t := symbol.Type(intType)
	size := 4
	if u > math.MaxInt32 {
		t = longType
		size = 8
	}
	cb(nil, NewTemporaryValue(t, ctx.GetDataProvider().GetArch().PutUintN(u, size)))
}

func (n *BoolNode) Eval(ctx EvalContext, cb EvalCallback) {
	data := []byte{0}
	if n.Value {
		data[0] = 1
	}
	cb(nil, NewTemporaryValue(boolType, data))
}

func (n *UnaryOpNode) Eval(ctx EvalContext, cb EvalCallback) {
	n.Operand.Eval(ctx, func(err error, v Value) {
		if err != nil {
			cb(err, Value{})
			return
		}
		negated, err := negate(v)
		cb(err, negated)
	})
}

// negate flips the sign of an integer value, preserving the operand's
// width and signedness.
func negate(v Value) (Value, error) {
	base, ok := v.ConcreteType().(*symbol.BaseType)
	if !ok || (base.Kind != symbol.BaseSigned && base.Kind != symbol.BaseUnsigned) {
		return Value{}, newErr(ErrResolution, "Negation for this value is not supported.")
	}
	switch base.ByteSize {
	case 1, 2, 4, 8:
	default:
		return Value{}, newErr(ErrResolution, "Negation for this value is not supported.")
	}
	if int64(len(v.Data)) != base.ByteSize {
		return Value{}, errf(ErrData, "Invalid data size %d for type of size %d.", len(v.Data), base.ByteSize)
	}
	u, err := v.Uint64()
	if err != nil {
		return Value{}, err
	}
	out := make([]byte, len(v.Data))
	neg := -u
	for i := range out {
		out[i] = byte(neg >> (8 * uint(i)))
	}
	return NewTemporaryValue(v.Type, out), nil
}

func (n *AddressOfNode) Eval(ctx EvalContext, cb EvalCallback) {
	n.Operand.Eval(ctx, func(err error, v Value) {
		if err != nil {
			cb(err, Value{})
			return
		}
		if v.Source.Kind != SourceMemory {
			cb(newErr(ErrResolution, "Can't take the address of a temporary."), Value{})
			return
		}
		ptrType := &symbol.ModifiedType{Kind: symbol.ModPointer, Modified: symbol.TypeOf(v.Type)}
		data := ctx.GetDataProvider().GetArch().PutUintN(v.Source.Address, 8)
		cb(nil, NewTemporaryValue(ptrType, data))
	})
}

func (n *DereferenceNode) Eval(ctx EvalContext, cb EvalCallback) {
	n.Operand.Eval(ctx, func(err error, v Value) {
		if err != nil {
			cb(err, Value{})
			return
		}
		pointee, addr, err := pointerInfo(v)
		if err != nil {
			cb(err, Value{})
			return
		}
		readValueFromMemory(ctx.GetDataProvider(), addr, pointee, cb)
	})
}

// pointerInfo validates that v is a pointer and extracts the pointed-to
// type and the target address.
func pointerInfo(v Value) (pointee symbol.Type, addr uint64, err error) {
	mod, ok := v.ConcreteType().(*symbol.ModifiedType)
	if !ok || mod.Kind != symbol.ModPointer {
		typeName := "<unknown>"
		if v.Type != nil {
			typeName = v.Type.String()
		}
		return nil, 0, errf(ErrResolution, "Attempting to dereference '%s' which is not a pointer.", typeName)
	}
	if len(v.Data) != symbol.PointerSize {
		return nil, 0, errf(ErrData, "Pointer data had incorrect size (expecting %d, got %d).",
			symbol.PointerSize, len(v.Data))
	}
	pointee = mod.Modified.Get()
	if pointee == nil {
		return nil, 0, newErr(ErrResolution, "Missing type information.")
	}
	addr, err = v.Uint64()
	return pointee, addr, err
}

func (n *ArrayAccessNode) Eval(ctx EvalContext, cb EvalCallback) {
	// Left first, then the index; the index evaluation does not start
	// until the base has fully completed.
	n.Left.Eval(ctx, func(err error, base Value) {
		if err != nil {
			cb(err, Value{})
			return
		}
		n.Index.Eval(ctx, func(err error, indexVal Value) {
			if err != nil {
				cb(err, Value{})
				return
			}
			idx, err := arrayIndex(indexVal)
			if err != nil {
				cb(err, Value{})
				return
			}
			resolveArrayElement(ctx.GetDataProvider(), base, idx, cb)
		})
	})
}

// arrayIndex validates the index value's type and promotes it.
func arrayIndex(v Value) (int64, error) {
	base, ok := v.ConcreteType().(*symbol.BaseType)
	if !ok {
		return 0, newErr(ErrResolution, "Bad type for array index.")
	}
	switch base.Kind {
	case symbol.BaseSigned, symbol.BaseSignedChar:
		return v.Int64()
	case symbol.BaseUnsigned, symbol.BaseUnsignedChar, symbol.BaseBoolean:
		u, err := v.Uint64()
		return int64(u), err
	}
	return 0, newErr(ErrResolution, "Bad type for array index.")
}

// resolveArrayElement computes the element address and reads it. The
// computation is the same for pointer bases and in-memory array bases.
func resolveArrayElement(provider symbol.DataProvider, base Value, idx int64, cb EvalCallback) {
	var elem symbol.Type
	var baseAddr uint64

	switch t := base.ConcreteType().(type) {
	case *symbol.ModifiedType:
		pointee, addr, err := pointerInfo(base)
		if err != nil {
			cb(err, Value{})
			return
		}
		elem, baseAddr = pointee, addr

	case *symbol.ArrayType:
		elem = t.Elem.Get()
		if elem == nil {
			cb(newErr(ErrResolution, "Missing type information."), Value{})
			return
		}
		if base.Source.Kind != SourceMemory {
			cb(newErr(ErrData, "Array value has no memory address."), Value{})
			return
		}
		baseAddr = base.Source.Address

	default:
		typeName := "<unknown>"
		if base.Type != nil {
			typeName = base.Type.String()
		}
		cb(errf(ErrResolution, "Can't resolve an array access on type '%s'.", typeName), Value{})
		return
	}

	elemSize := symbol.Concrete(elem).Size()
	if elemSize <= 0 {
		cb(newErr(ErrResolution, "Missing type information."), Value{})
		return
	}
	readValueFromMemory(provider, baseAddr+uint64(idx*elemSize), elem, cb)
}

func (n *MemberAccessNode) Eval(ctx EvalContext, cb EvalCallback) {
	memberName, ok := n.Member.SingleComponentName()
	if !ok {
		cb(newErr(ErrResolution, "Qualified member access is not supported."), Value{})
		return
	}
	n.Left.Eval(ctx, func(err error, v Value) {
		if err != nil {
			cb(err, Value{})
			return
		}
		if n.Accessor.Kind == TokenDot {
			resolveDirectMember(ctx.GetDataProvider(), v, memberName, cb)
		} else {
			resolveIndirectMember(ctx.GetDataProvider(), v, memberName, cb)
		}
	})
}

// resolveDirectMember handles "value.member".
func resolveDirectMember(provider symbol.DataProvider, v Value, name string, cb EvalCallback) {
	coll, ok := v.ConcreteType().(*symbol.Collection)
	if !ok {
		typeName := "<unknown>"
		if v.Type != nil {
			typeName = v.Type.String()
		}
		cb(errf(ErrResolution, "Can't access member '%s' on non-struct/class/union type '%s'.",
			name, typeName), Value{})
		return
	}
	m, offset, ok := FindMember(coll, name)
	if !ok {
		cb(errf(ErrResolution, "No member '%s' in '%s'.", name, coll.Name), Value{})
		return
	}
	extractMember(provider, v, m, offset, cb)
}

// resolveIndirectMember handles "pointer->member": a memory read at
// pointer + member offset, sized to the member's type.
func resolveIndirectMember(provider symbol.DataProvider, v Value, name string, cb EvalCallback) {
	pointee, addr, err := pointerInfo(v)
	if err != nil {
		cb(err, Value{})
		return
	}
	coll, ok := symbol.Concrete(pointee).(*symbol.Collection)
	if !ok {
		cb(errf(ErrResolution, "Accessor '->' requires a pointer to a struct/class/union, got '%s'.",
			pointee.String()), Value{})
		return
	}
	m, offset, ok := FindMember(coll, name)
	if !ok {
		cb(errf(ErrResolution, "No member '%s' in '%s'.", name, coll.Name), Value{})
		return
	}
	mt := m.Type.Get()
	if mt == nil {
		cb(errf(ErrResolution, "Missing type information for '%s'.", name), Value{})
		return
	}
	readValueFromMemory(provider, addr+uint64(offset), mt, cb)
}

// extractMember slices a member's bytes out of an in-hand aggregate
// value, falling back to a memory read when the buffer is too short and
// the aggregate is memory-backed.
func extractMember(provider symbol.DataProvider, v Value, m *symbol.DataMember,
	offset int64, cb EvalCallback) {
	mt := m.Type.Get()
	if mt == nil {
		cb(errf(ErrResolution, "Missing type information for '%s'.", m.Name), Value{})
		return
	}
	size := symbol.Concrete(mt).Size()
	if size <= 0 {
		cb(errf(ErrResolution, "Missing type information for '%s'.", m.Name), Value{})
		return
	}
	if offset >= 0 && offset+size <= int64(len(v.Data)) {
		data := v.Data[offset : offset+size]
		if v.Source.Kind == SourceMemory {
			cb(nil, NewMemoryValue(mt, data, v.Source.Address+uint64(offset)))
		} else {
			cb(nil, NewTemporaryValue(mt, data))
		}
		return
	}
	if v.Source.Kind == SourceMemory {
		readValueFromMemory(provider, v.Source.Address+uint64(offset), mt, cb)
		return
	}
	cb(errf(ErrData, "Invalid data size %d for member at offset %d.", len(v.Data), offset), Value{})
}
