// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"github.com/sdb-project/sdb/dwexpr"
	"github.com/sdb-project/sdb/symbol"
)

// VariableResolver turns a Variable plus the current machine state into
// a typed value: it picks the location-table entry covering the current
// instruction pointer, runs its DWARF expression, and fetches the bytes
// the result points at.
type VariableResolver struct {
	Provider symbol.DataProvider
}

// ResolveVariable resolves v's current value. The callback runs exactly
// once, inline when every fetch completes synchronously.
func (r *VariableResolver) ResolveVariable(sc symbol.Context, v *symbol.Variable, cb EvalCallback) {
	t := v.Type.Get()
	if t == nil {
		cb(errf(ErrResolution, "Missing type information for %q.", v.Name), Value{})
		return
	}

	ip, ok := r.Provider.GetRegister(symbol.RegIP)
	if !ok {
		cb(errf(ErrResolution, "No location available for %q.", v.Name), Value{})
		return
	}

	entry := v.Location.EntryForIP(sc, ip)
	if entry == nil {
		// Zero entries means the variable never had a location; entries
		// that just don't cover this address are phrased differently.
		// Both carry the OptimizedOut kind so UIs can special-case them.
		if len(v.Location.Entries) == 0 {
			cb(errf(ErrOptimizedOut, "The variable %q has been optimized out.", v.Name), Value{})
		} else {
			cb(errf(ErrOptimizedOut, "The variable %q is not available at this address.", v.Name), Value{})
		}
		return
	}

	dwexpr.Eval(r.Provider, sc, entry.Expr, func(e *dwexpr.Evaluator, err error) {
		if err != nil {
			cb(errf(ErrData, "Invalid location for %q: %v.", v.Name, err), Value{})
			return
		}
		r.makeValue(t, e.Result(), e.ResultKind(), cb)
	})
}

// makeValue converts a DWARF expression result into a typed value.
func (r *VariableResolver) makeValue(t symbol.Type, result uint64,
	kind dwexpr.ResultKind, cb EvalCallback) {
	concrete := symbol.Concrete(t)
	if concrete == nil {
		cb(errf(ErrResolution, "Missing type information."), Value{})
		return
	}

	if kind == dwexpr.ResultValue {
		// Arrays are never literal-valued; a pointer-shaped result is
		// the only valid representation for them.
		if _, isArray := concrete.(*symbol.ArrayType); isArray {
			cb(errf(ErrResolution, "DWARF expression produced array literal."), Value{})
			return
		}
		size := concrete.Size()
		if size <= 0 {
			cb(errf(ErrResolution, "Missing type information."), Value{})
			return
		}
		if size > 8 {
			cb(errf(ErrData, "Result size insufficient for type of size %d.", size), Value{})
			return
		}
		data := r.Provider.GetArch().PutUintN(result, int(size))
		cb(nil, NewTemporaryValue(t, data))
		return
	}

	// Pointer-shaped result: the value lives at the computed address.
	readValueFromMemory(r.Provider, result, t, cb)
}

// readValueFromMemory fetches sizeof(t) bytes at address and wraps them
// as a memory-sourced value of type t. A short or empty read reports
// the address as an invalid pointer.
func readValueFromMemory(provider symbol.DataProvider, address uint64,
	t symbol.Type, cb EvalCallback) {
	concrete := symbol.Concrete(t)
	if concrete == nil {
		cb(errf(ErrResolution, "Missing type information."), Value{})
		return
	}
	size := concrete.Size()
	if size <= 0 {
		cb(errf(ErrResolution, "Missing type information."), Value{})
		return
	}
	provider.GetMemoryAsync(address, uint32(size), func(err error, data []byte) {
		if err != nil {
			cb(errf(ErrData, "Invalid pointer 0x%x.", address), Value{})
			return
		}
		if int64(len(data)) < size {
			cb(errf(ErrData, "Invalid pointer 0x%x.", address), Value{})
			return
		}
		cb(nil, NewMemoryValue(t, data[:size], address))
	})
}
