// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions.
package arch

import (
	"encoding/binary"
)

// Architecture defines the architecture-specific details for a given machine.
type Architecture struct {
	// Name identifies the architecture, e.g. "amd64".
	Name string
	// IntSize is the size of the int type, in bytes.
	IntSize int
	// PointerSize is the size of a pointer, in bytes.
	PointerSize int
	// ByteOrder is the byte order for ints and pointers.
	ByteOrder binary.ByteOrder
}

// UintN decodes an unsigned integer of any width up to 8 bytes.
func (a *Architecture) UintN(buf []byte) uint64 {
	u := uint64(0)
	if a.ByteOrder == binary.LittleEndian {
		shift := uint(0)
		for _, c := range buf {
			u |= uint64(c) << shift
			shift += 8
		}
	} else {
		for _, c := range buf {
			u <<= 8
			u |= uint64(c)
		}
	}
	return u
}

// IntN decodes a signed integer of any width up to 8 bytes,
// sign-extending from the buffer's most significant bit.
func (a *Architecture) IntN(buf []byte) int64 {
	u := a.UintN(buf)
	if n := uint(len(buf)) * 8; n > 0 && n < 64 && u&(1<<(n-1)) != 0 {
		u |= ^uint64(0) << n
	}
	return int64(u)
}

// Uintptr decodes a pointer-sized unsigned integer.
func (a *Architecture) Uintptr(buf []byte) uint64 {
	if len(buf) != a.PointerSize {
		panic("bad PointerSize")
	}
	switch a.PointerSize {
	case 4:
		return uint64(a.ByteOrder.Uint32(buf[:4]))
	case 8:
		return a.ByteOrder.Uint64(buf[:8])
	}
	panic("no PointerSize")
}

// PutUintptr encodes addr as a pointer-sized buffer.
func (a *Architecture) PutUintptr(addr uint64) []byte {
	buf := make([]byte, a.PointerSize)
	switch a.PointerSize {
	case 4:
		a.ByteOrder.PutUint32(buf, uint32(addr))
	case 8:
		a.ByteOrder.PutUint64(buf, addr)
	default:
		panic("no PointerSize")
	}
	return buf
}

// PutUintN encodes v into a buffer of the given byte width.
func (a *Architecture) PutUintN(v uint64, size int) []byte {
	buf := make([]byte, size)
	if a.ByteOrder == binary.LittleEndian {
		for i := range buf {
			buf[i] = byte(v >> (8 * uint(i)))
		}
	} else {
		for i := range buf {
			buf[len(buf)-1-i] = byte(v >> (8 * uint(i)))
		}
	}
	return buf
}

var AMD64 = Architecture{
	Name:        "amd64",
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
}

var ARM64 = Architecture{
	Name:        "arm64",
	IntSize:     8,
	PointerSize: 8,
	ByteOrder:   binary.LittleEndian,
}

var X86 = Architecture{
	Name:        "x86",
	IntSize:     4,
	PointerSize: 4,
	ByteOrder:   binary.LittleEndian,
}
