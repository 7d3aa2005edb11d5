// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdb-project/sdb/index"
	"github.com/sdb-project/sdb/symbol"
)

func namedVar(name string, t symbol.Type) *symbol.Variable {
	return &symbol.Variable{Name: name, Type: symbol.TypeOf(t)}
}

func TestFindLocalVariableShadowing(t *testing.T) {
	outer := namedVar("value", testInt32)
	inner := namedVar("value", testChar)
	param := namedVar("value", testBool)

	fn := &symbol.Function{
		Name:   "DoThings",
		Params: []*symbol.Variable{param},
		Body: symbol.CodeBlock{
			Vars: []*symbol.Variable{outer},
			Inner: []*symbol.CodeBlock{
				{Vars: []*symbol.Variable{inner}},
			},
		},
	}
	fn.Link()
	innerBlock := fn.Body.Inner[0]

	// Innermost declaration wins.
	assert.Same(t, inner, FindLocalVariable(innerBlock, "value"))
	// From the outer block the inner declaration is invisible.
	assert.Same(t, outer, FindLocalVariable(&fn.Body, "value"))
	// Parameters come only after every block scope.
	fn.Body.Vars = nil
	innerBlock.Vars = nil
	assert.Same(t, param, FindLocalVariable(innerBlock, "value"))
}

func TestFindLocalVariableSiblingIsolation(t *testing.T) {
	sibling := namedVar("hidden", testInt32)
	fn := &symbol.Function{
		Name: "Fn",
		Body: symbol.CodeBlock{
			Inner: []*symbol.CodeBlock{
				{Vars: []*symbol.Variable{sibling}},
				{},
			},
		},
	}
	fn.Link()

	// Variables in a sibling block are not in scope.
	assert.Nil(t, FindLocalVariable(fn.Body.Inner[1], "hidden"))
	assert.Same(t, sibling, FindLocalVariable(fn.Body.Inner[0], "hidden"))
}

func TestFindNameObjectPtrMember(t *testing.T) {
	base := &symbol.Collection{
		Kind: symbol.Struct, Name: "Base", ByteSize: 4,
		Members: []*symbol.DataMember{
			{Name: "inherited_val", Type: symbol.TypeOf(testInt32), Offset: 0},
		},
	}
	derived := &symbol.Collection{
		Kind: symbol.Class, Name: "Derived", ByteSize: 12,
		Members: []*symbol.DataMember{
			{Name: "own_val", Type: symbol.TypeOf(testInt32), Offset: 8},
		},
		Inherited: []*symbol.InheritedFrom{
			{From: symbol.TypeOf(base), Offset: 4},
		},
	}
	this := &symbol.Variable{
		Name:       "this",
		Type:       symbol.TypeOf(ptrTo(derived)),
		Artificial: true,
	}
	fn := &symbol.Function{Name: "Derived::Method", ObjectPtr: this}
	fn.Link()

	found, ok := FindName(nil, &fn.Body, symbol.Context{}, NewIdentifier("own_val"))
	require.True(t, ok)
	require.NotNil(t, found.Member)
	assert.Same(t, this, found.ObjectPtr)
	assert.Equal(t, int64(8), found.MemberOffset)

	// Members of a base class carry the base's placement offset.
	found, ok = FindName(nil, &fn.Body, symbol.Context{}, NewIdentifier("inherited_val"))
	require.True(t, ok)
	assert.Equal(t, int64(4), found.MemberOffset)

	// "this" itself resolves as a plain local.
	found, ok = FindName(nil, &fn.Body, symbol.Context{}, NewIdentifier("this"))
	require.True(t, ok)
	assert.Same(t, this, found.Variable)
}

func TestFindMemberFirstMatchWins(t *testing.T) {
	left := &symbol.Collection{
		Kind: symbol.Struct, Name: "Left", ByteSize: 4,
		Members: []*symbol.DataMember{
			{Name: "v", Type: symbol.TypeOf(testInt32), Offset: 0},
		},
	}
	right := &symbol.Collection{
		Kind: symbol.Struct, Name: "Right", ByteSize: 4,
		Members: []*symbol.DataMember{
			{Name: "v", Type: symbol.TypeOf(testInt32), Offset: 0},
		},
	}
	both := &symbol.Collection{
		Kind: symbol.Struct, Name: "Both", ByteSize: 8,
		Inherited: []*symbol.InheritedFrom{
			{From: symbol.TypeOf(left), Offset: 0},
			{From: symbol.TypeOf(right), Offset: 4},
		},
	}

	m, offset, ok := FindMember(both, "v")
	require.True(t, ok)
	assert.Same(t, left.Members[0], m)
	assert.Equal(t, int64(0), offset)
}

// indexWith builds a one-module process whose index contains each
// qualified name mapped to a fresh Variable.
func indexWith(sc symbol.Context, names ...[]string) (*index.ProcessSymbols, map[string]*symbol.Variable) {
	idx := index.New()
	vars := make(map[string]*symbol.Variable)
	for _, components := range names {
		v := namedVar(components[len(components)-1], testInt32)
		idx.Add(components, symbol.RefTo(v))
		key := ""
		for i, c := range components {
			if i > 0 {
				key += "::"
			}
			key += c
		}
		vars[key] = v
	}
	process := &index.ProcessSymbols{Modules: []*index.Module{
		{Name: "main", Context: sc, Index: idx},
	}}
	return process, vars
}

func TestFindNameScopeWalk(t *testing.T) {
	sc := symbol.Context{}
	process, vars := indexWith(sc,
		[]string{"counter"},
		[]string{"ns", "counter"},
		[]string{"ns", "Class", "counter"},
	)

	fn := &symbol.Function{Name: "ns::Class::Method"}
	fn.Link()

	// From inside ns::Class::Method the innermost scope's symbol wins.
	found, ok := FindName(process, &fn.Body, sc, NewIdentifier("counter"))
	require.True(t, ok)
	assert.Same(t, vars["ns::Class::counter"], found.Variable)

	// Each miss retries one scope out.
	other := &symbol.Function{Name: "ns::OtherFn"}
	other.Link()
	found, ok = FindName(process, &other.Body, sc, NewIdentifier("counter"))
	require.True(t, ok)
	assert.Same(t, vars["ns::counter"], found.Variable)

	top := &symbol.Function{Name: "main"}
	top.Link()
	found, ok = FindName(process, &top.Body, sc, NewIdentifier("counter"))
	require.True(t, ok)
	assert.Same(t, vars["counter"], found.Variable)

	// A leading "::" pins the lookup to the global namespace.
	global := Identifier{Components: []Component{{HasSeparator: true, Name: "counter"}}}
	found, ok = FindName(process, &fn.Body, sc, global)
	require.True(t, ok)
	assert.Same(t, vars["counter"], found.Variable)
}

func TestFindNameQualified(t *testing.T) {
	sc := symbol.Context{}
	process, vars := indexWith(sc, []string{"ns", "Class", "static_member"})

	id := NewIdentifier("ns").
		Append(Component{Name: "Class"}).
		Append(Component{Name: "static_member"})
	found, ok := FindName(process, nil, sc, id)
	require.True(t, ok)
	assert.Same(t, vars["ns::Class::static_member"], found.Variable)

	_, ok = FindName(process, nil, sc, NewIdentifier("static_member"))
	assert.False(t, ok)
}

func TestFindNameModulePriority(t *testing.T) {
	scMain := symbol.Context{LoadAddress: 0x10000}
	scLib := symbol.Context{LoadAddress: 0x20000}

	mainVar := namedVar("dup", testInt32)
	libVar := namedVar("dup", testInt32)

	mainIdx := index.New()
	mainIdx.Add([]string{"dup"}, symbol.RefTo(mainVar))
	libIdx := index.New()
	libIdx.Add([]string{"dup"}, symbol.RefTo(libVar))

	process := &index.ProcessSymbols{Modules: []*index.Module{
		{Name: "main", Context: scMain, Index: mainIdx},
		{Name: "lib", Context: scLib, Index: libIdx},
	}}

	// The module the caller is stopped in searches first.
	found, ok := FindName(process, nil, scLib, NewIdentifier("dup"))
	require.True(t, ok)
	assert.Same(t, libVar, found.Variable)

	found, ok = FindName(process, nil, scMain, NewIdentifier("dup"))
	require.True(t, ok)
	assert.Same(t, mainVar, found.Variable)
}

func TestFindNameNonValueSymbol(t *testing.T) {
	sc := symbol.Context{}
	idx := index.New()
	coll := &symbol.Collection{Kind: symbol.Class, Name: "Widget", ByteSize: 8}
	idx.Add([]string{"Widget"}, symbol.RefTo(coll))
	process := &index.ProcessSymbols{Modules: []*index.Module{
		{Name: "main", Context: sc, Index: idx},
	}}

	found, ok := FindName(process, nil, sc, NewIdentifier("Widget"))
	require.True(t, ok)
	assert.Nil(t, found.Variable)
	assert.Same(t, symbol.Symbol(coll), found.Other)
}

func TestFindNameLocalBeatsGlobal(t *testing.T) {
	sc := symbol.Context{}
	process, vars := indexWith(sc, []string{"x"})

	local := namedVar("x", testChar)
	fn := &symbol.Function{Name: "f", Body: symbol.CodeBlock{
		Vars: []*symbol.Variable{local},
	}}
	fn.Link()

	found, ok := FindName(process, &fn.Body, sc, NewIdentifier("x"))
	require.True(t, ok)
	assert.Same(t, local, found.Variable)
	assert.NotSame(t, vars["x"], found.Variable)
}
