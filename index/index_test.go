// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdb-project/sdb/symbol"
)

func TestIndexAddAndFind(t *testing.T) {
	idx := New()
	v := &symbol.Variable{Name: "counter"}
	idx.Add([]string{"ns", "Class", "counter"}, symbol.RefTo(v))

	refs := idx.FindExact([]string{"ns", "Class", "counter"})
	require.Len(t, refs, 1)
	assert.Same(t, symbol.Symbol(v), refs[0].Get())

	// Exact means exact: no hit at prefixes or other paths.
	assert.Nil(t, idx.FindExact([]string{"ns", "Class"}))
	assert.Nil(t, idx.FindExact([]string{"counter"}))
	assert.Nil(t, idx.FindExact([]string{"ns", "Other", "counter"}))
}

func TestIndexMultipleSymbolsPerName(t *testing.T) {
	idx := New()
	fn := &symbol.Function{Name: "thing"}
	v := &symbol.Variable{Name: "thing"}
	idx.Add([]string{"thing"}, symbol.RefTo(fn))
	idx.Add([]string{"thing"}, symbol.RefTo(v))

	refs := idx.FindExact([]string{"thing"})
	require.Len(t, refs, 2)
	assert.Same(t, symbol.Symbol(fn), refs[0].Get())
	assert.Same(t, symbol.Symbol(v), refs[1].Get())
}

func TestNodeNavigation(t *testing.T) {
	idx := New()
	idx.Add([]string{"a", "b"}, symbol.RefTo(&symbol.Variable{Name: "b"}))

	a := idx.Root().Child("a")
	require.NotNil(t, a)
	assert.Equal(t, "a", a.Name())
	assert.Same(t, idx.Root(), a.Parent())

	b := a.Child("b")
	require.NotNil(t, b)
	assert.Len(t, b.Symbols(), 1)

	// AddChild is idempotent per name.
	assert.Same(t, a, idx.Root().AddChild("a"))
}

func TestProcessSymbolsPriority(t *testing.T) {
	scA := symbol.Context{LoadAddress: 0x1000}
	scB := symbol.Context{LoadAddress: 0x2000}
	a := &Module{Name: "a", Context: scA, Index: New()}
	b := &Module{Name: "b", Context: scB, Index: New()}
	p := &ProcessSymbols{Modules: []*Module{a, b}}

	assert.Same(t, a, p.ModuleForContext(scA))
	assert.Same(t, b, p.ModuleForContext(scB))
	assert.Nil(t, p.ModuleForContext(symbol.Context{LoadAddress: 0x3000}))

	assert.Equal(t, []*Module{b, a}, p.InPriorityOrder(scB))
	assert.Equal(t, []*Module{a, b}, p.InPriorityOrder(scA))
	// Unknown context keeps load order.
	assert.Equal(t, []*Module{a, b}, p.InPriorityOrder(symbol.Context{LoadAddress: 0x3000}))
}
