// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symbol models the decoded debug-information tree consumed by
// the expression engine: functions, variables, types, and the location
// descriptions that say where a variable lives at a given address.
//
// The tree is produced elsewhere (by a DWARF decoder) and is read-only
// here. Symbols may share substructure; parent links are plain
// back-references, never ownership edges.
package symbol

// Symbol is implemented by every node in the symbol tree. Dispatch is
// by type switch over the closed set of concrete types in this package.
type Symbol interface {
	isSymbol()
}

// Name returns the assigned name of a symbol, or "" if it has none.
func Name(s Symbol) string {
	switch s := s.(type) {
	case *Function:
		return s.Name
	case *Variable:
		return s.Name
	case *Namespace:
		return s.Name
	case *DataMember:
		return s.Name
	case Type:
		return s.String()
	}
	return ""
}

// Namespace is a C++ namespace. It appears in index lookups but carries
// no value semantics of its own.
type Namespace struct {
	Name string
}

func (*Namespace) isSymbol() {}

// Ref is a lazily resolved reference to another symbol. Decoding is not
// cached: two Gets may decode the target twice, and two Refs to the
// same logical symbol need not return identical pointers.
type Ref struct {
	sym  Symbol
	lazy func() Symbol
}

// RefTo returns a Ref resolved up front.
func RefTo(s Symbol) Ref {
	return Ref{sym: s}
}

// LazyRef returns a Ref that invokes f on each Get.
func LazyRef(f func() Symbol) Ref {
	return Ref{lazy: f}
}

// Get resolves the reference. Returns nil for an invalid Ref.
func (r Ref) Get() Symbol {
	if r.sym != nil {
		return r.sym
	}
	if r.lazy != nil {
		return r.lazy()
	}
	return nil
}

// Valid reports whether the Ref points at anything.
func (r Ref) Valid() bool {
	return r.sym != nil || r.lazy != nil
}
