// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"fmt"
	"sort"

	"github.com/sdb-project/sdb/arch"
	"github.com/sdb-project/sdb/symbol"
)

// mockProvider is a scriptable DataProvider. With deferAsync set, async
// operations queue up and run only when runDeferred is called, which
// lets tests exercise the asynchronous completion paths
// deterministically on one goroutine.
type mockProvider struct {
	archInfo       *arch.Architecture
	registers      map[symbol.RegisterID]uint64
	asyncRegisters map[symbol.RegisterID]uint64
	frameBase      uint64
	hasFrameBase   bool
	memory         map[uint64][]byte

	deferAsync bool
	deferred   []func()

	memReads int
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		archInfo:       &arch.AMD64,
		registers:      make(map[symbol.RegisterID]uint64),
		asyncRegisters: make(map[symbol.RegisterID]uint64),
		memory:         make(map[uint64][]byte),
	}
}

// setMemory installs one region of fake memory at address.
func (m *mockProvider) setMemory(address uint64, data []byte) {
	m.memory[address] = data
}

// runDeferred drains the queue, running callbacks in issue order.
func (m *mockProvider) runDeferred() {
	for len(m.deferred) > 0 {
		next := m.deferred[0]
		m.deferred = m.deferred[1:]
		next()
	}
}

func (m *mockProvider) dispatch(f func()) {
	if m.deferAsync {
		m.deferred = append(m.deferred, f)
		return
	}
	f()
}

func (m *mockProvider) GetArch() *arch.Architecture { return m.archInfo }

func (m *mockProvider) GetRegister(id symbol.RegisterID) (uint64, bool) {
	v, ok := m.registers[id]
	return v, ok
}

func (m *mockProvider) GetRegisterAsync(id symbol.RegisterID, cb func(error, uint64)) {
	m.dispatch(func() {
		if v, ok := m.registers[id]; ok {
			cb(nil, v)
			return
		}
		if v, ok := m.asyncRegisters[id]; ok {
			cb(nil, v)
			return
		}
		cb(fmt.Errorf("register %d unavailable", id), 0)
	})
}

func (m *mockProvider) GetFrameBase() (uint64, bool) {
	if !m.hasFrameBase {
		return 0, false
	}
	return m.frameBase, true
}

func (m *mockProvider) GetFrameBaseAsync(cb func(error, uint64)) {
	m.dispatch(func() {
		if v, ok := m.GetFrameBase(); ok {
			cb(nil, v)
			return
		}
		cb(fmt.Errorf("no frame base"), 0)
	})
}

func (m *mockProvider) GetMemoryAsync(address uint64, size uint32, cb func(error, []byte)) {
	m.dispatch(func() {
		m.memReads++
		// Regions checked in address order for determinism.
		starts := make([]uint64, 0, len(m.memory))
		for s := range m.memory {
			starts = append(starts, s)
		}
		sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
		for _, start := range starts {
			data := m.memory[start]
			if address < start || address >= start+uint64(len(data)) {
				continue
			}
			offset := address - start
			end := offset + uint64(size)
			if end > uint64(len(data)) {
				end = uint64(len(data)) // short read, not an error
			}
			out := make([]byte, end-offset)
			copy(out, data[offset:end])
			cb(nil, out)
			return
		}
		cb(fmt.Errorf("unmapped address 0x%x", address), nil)
	})
}

func (m *mockProvider) WriteMemory(address uint64, data []byte, cb func(error)) {
	m.dispatch(func() {
		for start, region := range m.memory {
			if address >= start && address+uint64(len(data)) <= start+uint64(len(region)) {
				copy(region[address-start:], data)
				cb(nil)
				return
			}
		}
		cb(fmt.Errorf("unmapped address 0x%x", address))
	})
}

// mockEvalContext resolves names from a fixed table, for testing node
// evaluation without the full resolver stack.
type mockEvalContext struct {
	provider *mockProvider
	values   map[string]Value
	resolver VariableResolver
}

func newMockEvalContext(provider *mockProvider) *mockEvalContext {
	return &mockEvalContext{
		provider: provider,
		values:   make(map[string]Value),
		resolver: VariableResolver{Provider: provider},
	}
}

func (c *mockEvalContext) GetNamedValue(id Identifier, cb func(error, symbol.Symbol, Value)) {
	if v, ok := c.values[id.FullName()]; ok {
		cb(nil, nil, v)
		return
	}
	cb(errf(ErrResolution, "No symbol %q found in the current context.", id.FullName()), nil, Value{})
}

func (c *mockEvalContext) GetVariableResolver() *VariableResolver { return &c.resolver }
func (c *mockEvalContext) GetDataProvider() symbol.DataProvider   { return c.provider }
func (c *mockEvalContext) GetSymbolNameLookup() NameLookupFunc    { return nil }

// Common base types for tests.
var (
	testInt32  = &symbol.BaseType{Kind: symbol.BaseSigned, ByteSize: 4, Name: "int"}
	testInt8   = &symbol.BaseType{Kind: symbol.BaseSigned, ByteSize: 1, Name: "int8_t"}
	testUint16 = &symbol.BaseType{Kind: symbol.BaseUnsigned, ByteSize: 2, Name: "uint16_t"}
	testChar   = &symbol.BaseType{Kind: symbol.BaseSignedChar, ByteSize: 1, Name: "char"}
	testBool   = &symbol.BaseType{Kind: symbol.BaseBoolean, ByteSize: 1, Name: "bool"}
	testFloat  = &symbol.BaseType{Kind: symbol.BaseFloat, ByteSize: 4, Name: "float"}
	testDouble = &symbol.BaseType{Kind: symbol.BaseFloat, ByteSize: 8, Name: "double"}
)

func ptrTo(t symbol.Type) *symbol.ModifiedType {
	return &symbol.ModifiedType{Kind: symbol.ModPointer, Modified: symbol.TypeOf(t)}
}

func refTo(t symbol.Type) *symbol.ModifiedType {
	return &symbol.ModifiedType{Kind: symbol.ModReference, Modified: symbol.TypeOf(t)}
}

func le64(v uint64) []byte {
	out := make([]byte, 8)
	for i := range out {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// evalSync evaluates a node and requires synchronous completion.
func evalSync(ctx EvalContext, n Node) (Value, error) {
	var got Value
	var gotErr error
	called := false
	n.Eval(ctx, func(err error, v Value) {
		if called {
			panic("callback invoked twice")
		}
		called = true
		got, gotErr = v, err
	})
	if !called {
		panic("callback not invoked")
	}
	return got, gotErr
}

// parseExpr tokenizes and parses, failing the test path on error.
func parseExpr(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}
