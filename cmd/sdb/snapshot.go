// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sdb-project/sdb/arch"
	"github.com/sdb-project/sdb/expr"
	"github.com/sdb-project/sdb/index"
	"github.com/sdb-project/sdb/symbol"
)

// A snapshot file is a YAML description of frozen process state plus a
// small symbol table, enough to evaluate expressions without a live
// target:
//
//	arch: amd64
//	registers:
//	  ip: 0x1000
//	  "6": 0x7fffe000        # DWARF register numbers
//	frame_base: 0x7fffe000
//	memory:
//	  - address: 0x2000
//	    data: "0a000000"
//	types:
//	  - name: Point
//	    kind: struct
//	    size: 8
//	    members:
//	      - {name: x, type: int32, offset: 0}
//	      - {name: y, type: int32, offset: 4}
//	globals:
//	  - {name: counter, type: int32, address: 0x2000}
type snapshotFile struct {
	Arch      string           `yaml:"arch"`
	Registers map[string]int64 `yaml:"registers"`
	FrameBase *uint64          `yaml:"frame_base"`
	Memory    []memoryRegion   `yaml:"memory"`
	Types     []typeDef        `yaml:"types"`
	Globals   []globalDef      `yaml:"globals"`
}

type memoryRegion struct {
	Address uint64 `yaml:"address"`
	Data    string `yaml:"data"`
}

type typeDef struct {
	Name    string      `yaml:"name"`
	Kind    string      `yaml:"kind"`
	Size    int64       `yaml:"size"`
	Members []memberDef `yaml:"members"`
}

type memberDef struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Offset int64  `yaml:"offset"`
}

type globalDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Address uint64 `yaml:"address"`
}

// snapshot is the loaded, decoded form: a data provider plus process
// symbols ready to hand to an evaluation context.
type snapshot struct {
	provider symbol.DataProvider
	process  *index.ProcessSymbols
	context  symbol.Context
}

func loadSnapshot(path string) (*snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file snapshotFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return buildSnapshot(&file)
}

func buildSnapshot(file *snapshotFile) (*snapshot, error) {
	p := &snapshotProvider{
		arch:      &arch.AMD64,
		registers: make(map[symbol.RegisterID]uint64),
		frameBase: file.FrameBase,
	}
	switch file.Arch {
	case "", "amd64":
	case "arm64":
		p.arch = &arch.ARM64
	default:
		return nil, fmt.Errorf("unsupported arch %q", file.Arch)
	}

	for name, value := range file.Registers {
		id, err := parseRegisterName(name)
		if err != nil {
			return nil, err
		}
		p.registers[id] = uint64(value)
	}

	for _, r := range file.Memory {
		data, err := hex.DecodeString(strings.ReplaceAll(r.Data, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("memory at 0x%x: %v", r.Address, err)
		}
		p.regions = append(p.regions, region{address: r.Address, data: data})
	}

	types := newTypeTable()
	for _, td := range file.Types {
		if err := types.addCollection(td); err != nil {
			return nil, err
		}
	}

	// Globals become variables whose location is a one-entry table
	// holding a DW_OP_addr expression for the fixed address.
	sc := symbol.Context{LoadAddress: 0}
	idx := index.New()
	for _, g := range file.Globals {
		t, err := types.parse(g.Type)
		if err != nil {
			return nil, fmt.Errorf("global %q: %v", g.Name, err)
		}
		v := &symbol.Variable{
			Name: g.Name,
			Type: symbol.TypeOf(t),
			Location: symbol.VariableLocation{
				Entries: []symbol.LocationEntry{{Expr: addrExpr(g.Address)}},
			},
		}
		idx.Add(strings.Split(g.Name, "::"), symbol.RefTo(v))
	}

	process := &index.ProcessSymbols{
		Modules: []*index.Module{{Name: "snapshot", Context: sc, Index: idx}},
	}

	cached, err := expr.NewCachingDataProvider(p, 128)
	if err != nil {
		return nil, err
	}
	return &snapshot{provider: cached, process: process, context: sc}, nil
}

// addrExpr builds the DW_OP_addr location expression for a fixed
// address.
func addrExpr(address uint64) []byte {
	out := make([]byte, 9)
	out[0] = 0x03
	for i := 0; i < 8; i++ {
		out[1+i] = byte(address >> (8 * uint(i)))
	}
	return out
}

func parseRegisterName(name string) (symbol.RegisterID, error) {
	if name == "ip" || name == "pc" {
		return symbol.RegIP, nil
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad register name %q", name)
	}
	return symbol.RegisterID(n), nil
}

type region struct {
	address uint64
	data    []byte
}

// snapshotProvider serves all state synchronously; the async interface
// methods complete inline.
type snapshotProvider struct {
	arch      *arch.Architecture
	registers map[symbol.RegisterID]uint64
	frameBase *uint64
	regions   []region
}

func (p *snapshotProvider) GetArch() *arch.Architecture { return p.arch }

func (p *snapshotProvider) GetRegister(id symbol.RegisterID) (uint64, bool) {
	v, ok := p.registers[id]
	return v, ok
}

func (p *snapshotProvider) GetRegisterAsync(id symbol.RegisterID, cb func(error, uint64)) {
	if v, ok := p.registers[id]; ok {
		cb(nil, v)
		return
	}
	cb(fmt.Errorf("register %d not in snapshot", id), 0)
}

func (p *snapshotProvider) GetFrameBase() (uint64, bool) {
	if p.frameBase == nil {
		return 0, false
	}
	return *p.frameBase, true
}

func (p *snapshotProvider) GetFrameBaseAsync(cb func(error, uint64)) {
	if v, ok := p.GetFrameBase(); ok {
		cb(nil, v)
		return
	}
	cb(fmt.Errorf("no frame base in snapshot"), 0)
}

// GetMemoryAsync reads from the containing region, short at its end.
// Addresses outside every region fail.
func (p *snapshotProvider) GetMemoryAsync(address uint64, size uint32, cb func(error, []byte)) {
	for _, r := range p.regions {
		if address < r.address || address >= r.address+uint64(len(r.data)) {
			continue
		}
		start := address - r.address
		end := start + uint64(size)
		if end > uint64(len(r.data)) {
			end = uint64(len(r.data))
		}
		out := make([]byte, end-start)
		copy(out, r.data[start:end])
		cb(nil, out)
		return
	}
	cb(fmt.Errorf("no mapped memory at 0x%x", address), nil)
}

func (p *snapshotProvider) WriteMemory(address uint64, data []byte, cb func(error)) {
	for _, r := range p.regions {
		if address < r.address || address+uint64(len(data)) > r.address+uint64(len(r.data)) {
			continue
		}
		copy(r.data[address-r.address:], data)
		cb(nil)
		return
	}
	cb(fmt.Errorf("no mapped memory at 0x%x", address))
}

// typeTable resolves the small type-spec grammar used in snapshot
// files: base type names plus trailing "*", "&", and "[N]", and the
// names of structs declared in the types section.
type typeTable struct {
	named map[string]symbol.Type
}

func newTypeTable() *typeTable {
	t := &typeTable{named: map[string]symbol.Type{}}
	add := func(name string, kind symbol.BaseKind, size int64) {
		t.named[name] = &symbol.BaseType{Kind: kind, ByteSize: size, Name: name}
	}
	add("bool", symbol.BaseBoolean, 1)
	add("char", symbol.BaseSignedChar, 1)
	add("int8", symbol.BaseSigned, 1)
	add("int16", symbol.BaseSigned, 2)
	add("int32", symbol.BaseSigned, 4)
	add("int64", symbol.BaseSigned, 8)
	add("uint8", symbol.BaseUnsigned, 1)
	add("uint16", symbol.BaseUnsigned, 2)
	add("uint32", symbol.BaseUnsigned, 4)
	add("uint64", symbol.BaseUnsigned, 8)
	add("float", symbol.BaseFloat, 4)
	add("double", symbol.BaseFloat, 8)
	t.named["int"] = t.named["int32"]
	t.named["long"] = t.named["int64"]
	return t
}

func (t *typeTable) addCollection(td typeDef) error {
	kind := symbol.Struct
	switch td.Kind {
	case "", "struct":
	case "class":
		kind = symbol.Class
	case "union":
		kind = symbol.Union
	default:
		return fmt.Errorf("type %q: unknown kind %q", td.Name, td.Kind)
	}
	coll := &symbol.Collection{Kind: kind, Name: td.Name, ByteSize: td.Size}
	t.named[td.Name] = coll
	for _, m := range td.Members {
		mt, err := t.parse(m.Type)
		if err != nil {
			return fmt.Errorf("type %q member %q: %v", td.Name, m.Name, err)
		}
		coll.Members = append(coll.Members, &symbol.DataMember{
			Name:   m.Name,
			Type:   symbol.TypeOf(mt),
			Offset: m.Offset,
		})
	}
	return nil
}

func (t *typeTable) parse(spec string) (symbol.Type, error) {
	spec = strings.TrimSpace(spec)
	if strings.HasSuffix(spec, "*") {
		inner, err := t.parse(spec[:len(spec)-1])
		if err != nil {
			return nil, err
		}
		return &symbol.ModifiedType{Kind: symbol.ModPointer, Modified: symbol.TypeOf(inner)}, nil
	}
	if strings.HasSuffix(spec, "&") {
		inner, err := t.parse(spec[:len(spec)-1])
		if err != nil {
			return nil, err
		}
		return &symbol.ModifiedType{Kind: symbol.ModReference, Modified: symbol.TypeOf(inner)}, nil
	}
	if strings.HasSuffix(spec, "]") {
		open := strings.LastIndex(spec, "[")
		if open < 0 {
			return nil, fmt.Errorf("bad type spec %q", spec)
		}
		count, err := strconv.ParseInt(spec[open+1:len(spec)-1], 10, 64)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("bad array count in %q", spec)
		}
		elem, err := t.parse(spec[:open])
		if err != nil {
			return nil, err
		}
		return &symbol.ArrayType{Elem: symbol.TypeOf(elem), Count: count}, nil
	}
	if found, ok := t.named[spec]; ok {
		return found, nil
	}
	return nil, fmt.Errorf("unknown type %q", spec)
}
