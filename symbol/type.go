// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "fmt"

// All debugged targets are 64-bit; pointers and references are 8 bytes.
const PointerSize = 8

// Type is implemented by the type-describing symbols: BaseType,
// ModifiedType, ArrayType, and Collection.
type Type interface {
	Symbol
	// String returns the type name as a user would write it ("const char*").
	String() string
	// Size returns the byte size of a value of this type, or -1 if unknown.
	Size() int64
}

// TypeRef is a lazily resolved reference to a Type. Like Ref, it does
// not cache resolution.
type TypeRef struct {
	t    Type
	lazy func() Type
}

// TypeOf returns a TypeRef resolved up front.
func TypeOf(t Type) TypeRef {
	return TypeRef{t: t}
}

// LazyType returns a TypeRef that invokes f on each Get.
func LazyType(f func() Type) TypeRef {
	return TypeRef{lazy: f}
}

// Get resolves the reference, or nil for an invalid TypeRef.
func (r TypeRef) Get() Type {
	if r.t != nil {
		return r.t
	}
	if r.lazy != nil {
		return r.lazy()
	}
	return nil
}

// Valid reports whether the TypeRef points at anything.
func (r TypeRef) Valid() bool {
	return r.t != nil || r.lazy != nil
}

// BaseKind categorizes a BaseType, mirroring the DWARF encoding classes.
type BaseKind int

const (
	BaseNone BaseKind = iota
	BaseBoolean
	BaseSigned
	BaseUnsigned
	BaseSignedChar
	BaseUnsignedChar
	BaseFloat
	BaseAddress
)

// BaseType is a fundamental type: int, char, bool, float, etc.
type BaseType struct {
	Kind     BaseKind
	ByteSize int64
	Name     string
}

func (*BaseType) isSymbol() {}

func (t *BaseType) String() string { return t.Name }
func (t *BaseType) Size() int64    { return t.ByteSize }

// IsChar reports whether values of this type print as characters and
// arrays of it print as strings.
func (t *BaseType) IsChar() bool {
	return (t.Kind == BaseSignedChar || t.Kind == BaseUnsignedChar) && t.ByteSize == 1
}

// ModKind says what a ModifiedType does to its underlying type.
type ModKind int

const (
	ModPointer ModKind = iota
	ModReference
	ModConst
	ModVolatile
	ModTypedef
)

// ModifiedType wraps another type: pointer or reference to it, a
// const/volatile qualification, or a typedef name for it.
type ModifiedType struct {
	Kind     ModKind
	Modified TypeRef
	// Name is the typedef name; unused for the other kinds.
	Name string
}

func (*ModifiedType) isSymbol() {}

func (t *ModifiedType) String() string {
	inner := "<unknown>"
	if m := t.Modified.Get(); m != nil {
		inner = m.String()
	}
	switch t.Kind {
	case ModPointer:
		return inner + "*"
	case ModReference:
		return inner + "&"
	case ModConst:
		return "const " + inner
	case ModVolatile:
		return "volatile " + inner
	case ModTypedef:
		return t.Name
	}
	return inner
}

func (t *ModifiedType) Size() int64 {
	switch t.Kind {
	case ModPointer, ModReference:
		return PointerSize
	}
	if m := t.Modified.Get(); m != nil {
		return m.Size()
	}
	return -1
}

// ArrayType is a fixed-length array.
type ArrayType struct {
	Elem  TypeRef
	Count int64
}

func (*ArrayType) isSymbol() {}

func (t *ArrayType) String() string {
	inner := "<unknown>"
	if e := t.Elem.Get(); e != nil {
		inner = e.String()
	}
	return fmt.Sprintf("%s[%d]", inner, t.Count)
}

func (t *ArrayType) Size() int64 {
	e := t.Elem.Get()
	if e == nil {
		return -1
	}
	es := e.Size()
	if es < 0 {
		return -1
	}
	return es * t.Count
}

// CollectionKind distinguishes struct, class, and union.
type CollectionKind int

const (
	Struct CollectionKind = iota
	Class
	Union
)

// Collection is a struct, class, or union type.
type Collection struct {
	Kind      CollectionKind
	Name      string
	ByteSize  int64
	Members   []*DataMember
	Inherited []*InheritedFrom
}

func (*Collection) isSymbol() {}

func (t *Collection) String() string { return t.Name }
func (t *Collection) Size() int64    { return t.ByteSize }

// DataMember is one named member of a Collection, at a byte offset from
// the start of the containing value.
type DataMember struct {
	Name   string
	Type   TypeRef
	Offset int64
}

func (*DataMember) isSymbol() {}

// InheritedFrom links a Collection to one base class, at a byte offset
// from the start of the derived value.
type InheritedFrom struct {
	From   TypeRef
	Offset int64
}

func (*InheritedFrom) isSymbol() {}

// Concrete strips const, volatile, and typedef wrappers, exposing the
// underlying base/aggregate/pointer/array type. Returns nil for an
// unresolvable chain.
func Concrete(t Type) Type {
	for {
		m, ok := t.(*ModifiedType)
		if !ok {
			return t
		}
		switch m.Kind {
		case ModConst, ModVolatile, ModTypedef:
			t = m.Modified.Get()
			if t == nil {
				return nil
			}
		default:
			return t
		}
	}
}
