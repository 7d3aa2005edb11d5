// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dwexpr evaluates DWARF location expressions: small
// stack-machine programs that compute where a variable's value lives
// from register and memory state.
//
// Only the opcode subset emitted for ordinary variable locations is
// implemented. Evaluation may suspend on register or frame-base
// fetches; the completion callback fires exactly once, possibly inline.
package dwexpr

import (
	"fmt"

	"github.com/sdb-project/sdb/symbol"
)

// DWARF expression opcodes (DWARF v4 section 7.7.1).
const (
	opAddr       = 0x03
	opConst1u    = 0x08
	opConst1s    = 0x09
	opConst2u    = 0x0a
	opConst2s    = 0x0b
	opConst4u    = 0x0c
	opConst4s    = 0x0d
	opConst8u    = 0x0e
	opConst8s    = 0x0f
	opConstu     = 0x10
	opConsts     = 0x11
	opDup        = 0x12
	opDrop       = 0x13
	opMinus      = 0x1c
	opPlus       = 0x22
	opPlusUconst = 0x23
	opLit0       = 0x30
	opLit31      = 0x4f
	opReg0       = 0x50
	opReg31      = 0x6f
	opBreg0      = 0x70
	opBreg31     = 0x8f
	opFbreg      = 0x91
	opStackValue = 0x9f
)

// ResultKind says how to interpret the evaluation result.
type ResultKind int

const (
	// ResultPointer means the result is the address of the value.
	ResultPointer ResultKind = iota
	// ResultValue means the result is the value itself.
	ResultValue
)

// Evaluator runs one DWARF expression. Use Eval; the Evaluator passed
// to the callback exposes the result accessors.
type Evaluator struct {
	provider symbol.DataProvider
	context  symbol.Context
	expr     []byte

	pc    int
	stack []uint64
	kind  ResultKind

	done bool
	cb   func(*Evaluator, error)
}

// Eval evaluates the expression and invokes cb exactly once with the
// completed Evaluator or an error. The callback may run inline when no
// asynchronous fetches are needed.
func Eval(provider symbol.DataProvider, sc symbol.Context, expr []byte, cb func(*Evaluator, error)) {
	e := &Evaluator{provider: provider, context: sc, expr: expr, kind: ResultPointer, cb: cb}
	if len(expr) == 0 {
		e.complete(fmt.Errorf("empty DWARF expression"))
		return
	}
	e.run()
}

// Result returns the computed value or address. Valid after completion.
func (e *Evaluator) Result() uint64 {
	if len(e.stack) == 0 {
		return 0
	}
	return e.stack[len(e.stack)-1]
}

// ResultKind says whether Result is the value or its address. Valid
// after completion.
func (e *Evaluator) ResultKind() ResultKind { return e.kind }

func (e *Evaluator) complete(err error) {
	if e.done {
		return
	}
	e.done = true
	cb := e.cb
	e.cb = nil
	cb(e, err)
}

func (e *Evaluator) push(v uint64) {
	e.stack = append(e.stack, v)
}

func (e *Evaluator) pop() (uint64, error) {
	if len(e.stack) == 0 {
		return 0, fmt.Errorf("DWARF expression stack underflow")
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v, nil
}

// run executes opcodes until the expression ends or a fetch suspends.
// After an async fetch completes, its callback re-enters run.
func (e *Evaluator) run() {
	for e.pc < len(e.expr) {
		suspended, err := e.step()
		if err != nil {
			e.complete(err)
			return
		}
		if suspended {
			return
		}
	}
	if len(e.stack) == 0 {
		e.complete(fmt.Errorf("DWARF expression produced no result"))
		return
	}
	e.complete(nil)
}

// step executes one opcode. It returns suspended=true when an async
// fetch was issued; the fetch callback resumes execution.
func (e *Evaluator) step() (suspended bool, err error) {
	op := e.expr[e.pc]
	e.pc++

	switch {
	case op >= opLit0 && op <= opLit31:
		e.push(uint64(op - opLit0))
		return false, nil

	case op >= opReg0 && op <= opReg31:
		// The value lives in the register itself.
		e.kind = ResultValue
		return e.pushRegister(symbol.RegisterID(op-opReg0), 0)

	case op >= opBreg0 && op <= opBreg31:
		offset, err := e.readSLEB()
		if err != nil {
			return false, err
		}
		return e.pushRegister(symbol.RegisterID(op-opBreg0), offset)
	}

	switch op {
	case opAddr:
		if e.pc+8 > len(e.expr) {
			return false, fmt.Errorf("truncated DW_OP_addr")
		}
		relative := uint64(0)
		for i := 7; i >= 0; i-- {
			relative = relative<<8 | uint64(e.expr[e.pc+i])
		}
		e.pc += 8
		e.push(e.context.RelativeToAbsolute(relative))

	case opConst1u, opConst2u, opConst4u, opConst8u:
		size := 1 << ((op - opConst1u) / 2)
		v, err := e.readFixed(size)
		if err != nil {
			return false, err
		}
		e.push(v)

	case opConst1s, opConst2s, opConst4s, opConst8s:
		size := 1 << ((op - opConst1s) / 2)
		v, err := e.readFixed(size)
		if err != nil {
			return false, err
		}
		if n := uint(size) * 8; n < 64 && v&(1<<(n-1)) != 0 {
			v |= ^uint64(0) << n
		}
		e.push(v)

	case opConstu:
		v, err := e.readULEB()
		if err != nil {
			return false, err
		}
		e.push(v)

	case opConsts:
		v, err := e.readSLEB()
		if err != nil {
			return false, err
		}
		e.push(uint64(v))

	case opDup:
		v, err := e.pop()
		if err != nil {
			return false, err
		}
		e.push(v)
		e.push(v)

	case opDrop:
		if _, err := e.pop(); err != nil {
			return false, err
		}

	case opPlus:
		b, err := e.pop()
		if err != nil {
			return false, err
		}
		a, err := e.pop()
		if err != nil {
			return false, err
		}
		e.push(a + b)

	case opMinus:
		b, err := e.pop()
		if err != nil {
			return false, err
		}
		a, err := e.pop()
		if err != nil {
			return false, err
		}
		e.push(a - b)

	case opPlusUconst:
		v, err := e.readULEB()
		if err != nil {
			return false, err
		}
		a, err := e.pop()
		if err != nil {
			return false, err
		}
		e.push(a + v)

	case opFbreg:
		offset, err := e.readSLEB()
		if err != nil {
			return false, err
		}
		if base, ok := e.provider.GetFrameBase(); ok {
			e.push(base + uint64(offset))
			return false, nil
		}
		e.provider.GetFrameBaseAsync(func(err error, base uint64) {
			if err != nil {
				e.complete(err)
				return
			}
			e.push(base + uint64(offset))
			e.run()
		})
		return true, nil

	case opStackValue:
		e.kind = ResultValue

	default:
		return false, fmt.Errorf("unimplemented DWARF opcode 0x%02x", op)
	}
	return false, nil
}

// pushRegister pushes reg+offset, fetching the register sync or async.
func (e *Evaluator) pushRegister(id symbol.RegisterID, offset int64) (suspended bool, err error) {
	if v, ok := e.provider.GetRegister(id); ok {
		e.push(v + uint64(offset))
		return false, nil
	}
	e.provider.GetRegisterAsync(id, func(err error, v uint64) {
		if err != nil {
			e.complete(err)
			return
		}
		e.push(v + uint64(offset))
		e.run()
	})
	return true, nil
}

func (e *Evaluator) readFixed(size int) (uint64, error) {
	if e.pc+size > len(e.expr) {
		return 0, fmt.Errorf("truncated DWARF constant")
	}
	v := uint64(0)
	for i := size - 1; i >= 0; i-- {
		v = v<<8 | uint64(e.expr[e.pc+i])
	}
	e.pc += size
	return v, nil
}

func (e *Evaluator) readULEB() (uint64, error) {
	v := uint64(0)
	shift := uint(0)
	for e.pc < len(e.expr) {
		b := e.expr[e.pc]
		e.pc++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("truncated ULEB128")
}

func (e *Evaluator) readSLEB() (int64, error) {
	v := int64(0)
	shift := uint(0)
	for e.pc < len(e.expr) {
		b := e.expr[e.pc]
		e.pc++
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, nil
		}
	}
	return 0, fmt.Errorf("truncated SLEB128")
}
