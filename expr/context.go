// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"github.com/sdb-project/sdb/index"
	"github.com/sdb-project/sdb/symbol"
)

// NameLookupFunc is an oracle that says whether a qualified name is
// known to the symbol system. The parser can use it to disambiguate
// '<' as template-open versus less-than.
type NameLookupFunc func(id Identifier) bool

// EvalContext supplies everything expression evaluation needs: name
// lookup, variable location resolution, and process data access.
type EvalContext interface {
	// GetNamedValue resolves an identifier to a value. The callback may
	// run inline or after async fetches; exactly once either way. The
	// symbol argument is the resolved symbol when one exists.
	GetNamedValue(id Identifier, cb func(err error, sym symbol.Symbol, v Value))

	GetVariableResolver() *VariableResolver
	GetDataProvider() symbol.DataProvider

	// GetSymbolNameLookup may return nil when no oracle is available.
	GetSymbolNameLookup() NameLookupFunc
}

// SymbolEvalContext is the standard EvalContext: it resolves names
// against a lexical block, the implicit object pointer, and the
// process-wide symbol index, then resolves variable locations through
// the data provider.
type SymbolEvalContext struct {
	Process *index.ProcessSymbols
	// Block is the lexical block of the current instruction pointer;
	// nil when evaluating without a frame.
	Block      *symbol.CodeBlock
	SymContext symbol.Context
	Provider   symbol.DataProvider

	resolver VariableResolver
}

// NewSymbolEvalContext builds a context for evaluating expressions at
// a stopped location.
func NewSymbolEvalContext(process *index.ProcessSymbols, block *symbol.CodeBlock,
	sc symbol.Context, provider symbol.DataProvider) *SymbolEvalContext {
	return &SymbolEvalContext{
		Process:    process,
		Block:      block,
		SymContext: sc,
		Provider:   provider,
		resolver:   VariableResolver{Provider: provider},
	}
}

func (c *SymbolEvalContext) GetVariableResolver() *VariableResolver { return &c.resolver }
func (c *SymbolEvalContext) GetDataProvider() symbol.DataProvider   { return c.Provider }

func (c *SymbolEvalContext) GetSymbolNameLookup() NameLookupFunc {
	if c.Process == nil {
		return nil
	}
	return func(id Identifier) bool {
		comps := id.IndexComponents()
		for _, m := range c.Process.Modules {
			if len(m.Index.FindExact(comps)) > 0 {
				return true
			}
		}
		return false
	}
}

// GetNamedValue runs the full resolver search and then fetches the
// found thing's value.
func (c *SymbolEvalContext) GetNamedValue(id Identifier, cb func(err error, sym symbol.Symbol, v Value)) {
	found, ok := FindName(c.Process, c.Block, c.SymContext, id)
	if !ok {
		cb(errf(ErrResolution, "No symbol %q found in the current context.", id.FullName()), nil, Value{})
		return
	}

	switch {
	case found.Variable != nil:
		v := found.Variable
		c.resolver.ResolveVariable(c.SymContext, v, func(err error, val Value) {
			cb(err, v, val)
		})

	case found.Member != nil:
		// Implicit |this| member: resolve the object pointer, then read
		// the member out of the pointed-to aggregate.
		objPtr := found.ObjectPtr
		member := found.Member
		offset := found.MemberOffset
		c.resolver.ResolveVariable(c.SymContext, objPtr, func(err error, ptrVal Value) {
			if err != nil {
				cb(err, member, Value{})
				return
			}
			addr, err := ptrVal.Uint64()
			if err != nil {
				cb(err, member, Value{})
				return
			}
			mt := member.Type.Get()
			if mt == nil {
				cb(errf(ErrResolution, "Missing type information for %q.", member.Name), member, Value{})
				return
			}
			readValueFromMemory(c.Provider, addr+uint64(offset), mt, func(err error, v Value) {
				cb(err, member, v)
			})
		})

	case found.Other != nil:
		cb(errf(ErrResolution, "%q is not a value in this context.", id.FullName()), found.Other, Value{})

	default:
		cb(errf(ErrInternal, "Unhandled name resolution result."), nil, Value{})
	}
}
