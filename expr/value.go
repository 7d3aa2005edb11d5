// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"github.com/sdb-project/sdb/symbol"
)

// SourceKind says where a value's bytes came from.
type SourceKind int

const (
	// SourceTemporary is a computed value with no backing storage
	// (literals, register values, synthesized pointers).
	SourceTemporary SourceKind = iota
	// SourceMemory means the bytes were read from the address in
	// ValueSource.Address. Only memory-sourced values are addressable.
	SourceMemory
	// SourceComposite means the bytes were assembled from more than one
	// location and no single address describes them.
	SourceComposite
)

// ValueSource describes the provenance of a Value's data.
type ValueSource struct {
	Kind    SourceKind
	Address uint64
}

// Value is a fully resolved, typed value: a type, the raw bytes, and
// where the bytes came from. For numeric and pointer use the data
// length must equal the concrete type's byte size; a mismatch is a
// reportable error, never a crash.
type Value struct {
	Type   symbol.Type
	Data   []byte
	Source ValueSource
}

// NewTemporaryValue makes a value with no backing storage.
func NewTemporaryValue(t symbol.Type, data []byte) Value {
	return Value{Type: t, Data: data, Source: ValueSource{Kind: SourceTemporary}}
}

// NewMemoryValue makes a value whose bytes were read from address.
func NewMemoryValue(t symbol.Type, data []byte, address uint64) Value {
	return Value{Type: t, Data: data, Source: ValueSource{Kind: SourceMemory, Address: address}}
}

// ConcreteType resolves the value's type with const/volatile/typedef
// modifiers stripped. Nil when the value has no type.
func (v Value) ConcreteType() symbol.Type {
	if v.Type == nil {
		return nil
	}
	return symbol.Concrete(v.Type)
}

// Uint64 promotes the value's bytes to uint64, little-endian, zero
// extended. Errors when the buffer is empty or wider than 8 bytes.
func (v Value) Uint64() (uint64, error) {
	if len(v.Data) == 0 || len(v.Data) > 8 {
		return 0, errf(ErrData, "Invalid data size %d for numeric value.", len(v.Data))
	}
	u := uint64(0)
	for i := len(v.Data) - 1; i >= 0; i-- {
		u = u<<8 | uint64(v.Data[i])
	}
	return u, nil
}

// Int64 promotes the value's bytes to int64 with sign extension.
func (v Value) Int64() (int64, error) {
	u, err := v.Uint64()
	if err != nil {
		return 0, err
	}
	if n := uint(len(v.Data)) * 8; n < 64 && u&(1<<(n-1)) != 0 {
		u |= ^uint64(0) << n
	}
	return int64(u), nil
}
