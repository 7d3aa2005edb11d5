// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"github.com/sdb-project/sdb/symbol"
)

// FormatValue accumulates one or more formatting requests and joins
// their output in call order, regardless of which requests complete
// asynchronously. Completion is observed through Complete, whose
// callback runs exactly once, after every outstanding request
// finishes. A FormatValue is single-use.
type FormatValue struct {
	provider symbol.DataProvider

	slots     []*OutputBuffer
	pending   int
	completed bool
	cb        func(*OutputBuffer)
}

// NewFormatValue returns an empty collector reading through provider.
func NewFormatValue(provider symbol.DataProvider) *FormatValue {
	return &FormatValue{provider: provider}
}

// newSlot reserves the next positional output slot.
func (f *FormatValue) newSlot() int {
	f.slots = append(f.slots, nil)
	f.pending++
	return len(f.slots) - 1
}

// fill completes a slot. The collector finishes when the last slot
// fills after Complete has been called.
func (f *FormatValue) fill(idx int, buf *OutputBuffer) {
	f.slots[idx] = buf
	f.pending--
	f.checkComplete()
}

// Append adds literal styled text, completing synchronously.
func (f *FormatValue) Append(style Style, text string) {
	idx := f.newSlot()
	buf := &OutputBuffer{}
	buf.Append(style, text)
	f.fill(idx, buf)
}

// AppendValue formats an already-resolved value.
func (f *FormatValue) AppendValue(v Value, opts FormatOptions) {
	idx := f.newSlot()
	FormatExprValue(f.provider, v, opts, func(buf *OutputBuffer) {
		f.fill(idx, buf)
	})
}

// AppendError adds an inline error annotation.
func (f *FormatValue) AppendError(err error) {
	idx := f.newSlot()
	f.fill(idx, errBuffer(err.Error()))
}

// AppendVariable resolves a variable's current value and formats it.
// Resolution failures degrade to an inline annotation.
func (f *FormatValue) AppendVariable(sc symbol.Context, resolver *VariableResolver,
	v *symbol.Variable, opts FormatOptions) {
	idx := f.newSlot()
	resolver.ResolveVariable(sc, v, func(err error, val Value) {
		if err != nil {
			f.fill(idx, errBuffer(err.Error()))
			return
		}
		FormatExprValue(f.provider, val, opts, func(buf *OutputBuffer) {
			f.fill(idx, buf)
		})
	})
}

// Complete registers the completion callback. It fires as soon as no
// requests are outstanding, possibly inline.
func (f *FormatValue) Complete(cb func(*OutputBuffer)) {
	f.cb = cb
	f.checkComplete()
}

func (f *FormatValue) checkComplete() {
	if f.completed || f.cb == nil || f.pending != 0 {
		return
	}
	f.completed = true
	out := &OutputBuffer{}
	for _, s := range f.slots {
		out.AppendBuffer(s)
	}
	cb := f.cb
	f.cb = nil
	cb(out)
}
