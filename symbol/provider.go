// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

import "github.com/sdb-project/sdb/arch"

// RegisterID names a machine register. Nonnegative values are DWARF
// register numbers for the provider's architecture.
type RegisterID int

// RegIP is the pseudo-register holding the current instruction pointer.
const RegIP RegisterID = -1

// DataProvider is the boundary to the process being debugged (live or
// snapshotted): registers, frame base, and memory.
//
// The synchronous getters return ok=false when the value is not
// immediately available, in which case the caller falls back to the
// async variant. Every async call invokes its callback exactly once,
// possibly inline. A memory read may return fewer bytes than requested;
// a short read means the end of valid memory, not failure.
type DataProvider interface {
	GetArch() *arch.Architecture

	GetRegister(id RegisterID) (value uint64, ok bool)
	GetRegisterAsync(id RegisterID, cb func(err error, value uint64))

	GetFrameBase() (value uint64, ok bool)
	GetFrameBaseAsync(cb func(err error, value uint64))

	GetMemoryAsync(address uint64, size uint32, cb func(err error, data []byte))
	WriteMemory(address uint64, data []byte, cb func(err error))
}
