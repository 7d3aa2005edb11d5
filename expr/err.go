// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "fmt"

// ErrKind classifies evaluation errors so callers can phrase or route
// them differently. It is a property of the error value, not a
// distinct error type per kind.
type ErrKind int

const (
	// ErrSyntax is a tokenizer or parser error. The message includes a
	// two-line source excerpt with a caret at the offending byte.
	ErrSyntax ErrKind = iota
	// ErrResolution means a name, member, or type could not be
	// resolved. Terminal and not retryable.
	ErrResolution
	// ErrOptimizedOut means the location is structurally absent at the
	// current address. UI layers phrase this specially.
	ErrOptimizedOut
	// ErrData is a memory or buffer problem: short read, wrong-size
	// buffer for a type, invalid pointer target.
	ErrData
	// ErrInternal marks notionally unreachable dispatch cases.
	ErrInternal
)

// Err is the error type produced by the expression engine.
type Err struct {
	Kind ErrKind
	Msg  string
}

func (e *Err) Error() string { return e.Msg }

func newErr(kind ErrKind, msg string) *Err {
	return &Err{Kind: kind, Msg: msg}
}

func errf(kind ErrKind, format string, args ...interface{}) *Err {
	return &Err{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the ErrKind of err, or ErrInternal for foreign errors.
func KindOf(err error) ErrKind {
	if e, ok := err.(*Err); ok {
		return e.Kind
	}
	return ErrInternal
}
