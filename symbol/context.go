// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

// Context translates between module-relative addresses (as stored in
// debug info) and absolute addresses in the running process, given the
// module's load address.
type Context struct {
	LoadAddress uint64
}

func (c Context) RelativeToAbsolute(relative uint64) uint64 {
	return relative + c.LoadAddress
}

func (c Context) AbsoluteToRelative(absolute uint64) uint64 {
	return absolute - c.LoadAddress
}
