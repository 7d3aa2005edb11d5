// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"fmt"
	"math"

	"github.com/sdb-project/sdb/symbol"
)

// NumFormat overrides how base-type numbers are rendered.
type NumFormat int

const (
	NumDefault NumFormat = iota
	NumUnsigned
	NumSigned
	NumHex
	NumChar
)

// FormatOptions configures value formatting.
type FormatOptions struct {
	// NumFormat overrides the default numeric rendering for base types.
	NumFormat NumFormat
	// MaxArraySize bounds both the printed element count of arrays and
	// the byte-fetch length for strings. Zero makes char pointers
	// render as truncated empty strings.
	MaxArraySize int
}

// DefaultFormatOptions returns the options used when the caller has no
// preference.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{MaxArraySize: 256}
}

// FormatExprValue renders a value as styled text. The callback runs
// exactly once, inline when no memory fetches are needed. Formatting
// never fails: problems degrade to inline <message> annotations so
// partially available data still displays.
func FormatExprValue(provider symbol.DataProvider, v Value, opts FormatOptions,
	cb func(*OutputBuffer)) {
	formatValue(provider, v, opts, cb)
}

// errBuffer makes a buffer holding one inline error annotation.
func errBuffer(msg string) *OutputBuffer {
	out := &OutputBuffer{}
	out.Append(StyleError, "<"+msg+">")
	return out
}

func formatValue(provider symbol.DataProvider, v Value, opts FormatOptions,
	cb func(*OutputBuffer)) {
	if v.Type == nil {
		cb(errBuffer("no type"))
		return
	}
	switch t := v.ConcreteType().(type) {
	case *symbol.BaseType:
		cb(formatBaseType(v, t, opts))

	case *symbol.ModifiedType:
		switch t.Kind {
		case symbol.ModPointer:
			formatPointer(provider, v, t, opts, cb)
		case symbol.ModReference:
			formatReference(provider, v, t, opts, cb)
		default:
			// Concrete() strips the other modifier kinds.
			cb(errBuffer(fmt.Sprintf("unexpected modifier on type '%s'", v.Type.String())))
		}

	case *symbol.ArrayType:
		formatArray(provider, v, t, opts, cb)

	case *symbol.Collection:
		formatCollection(provider, v, t, opts, cb)

	default:
		cb(errBuffer(fmt.Sprintf("unimplemented type '%s'", v.Type.String())))
	}
}

// formatBaseType renders numbers, booleans, chars, and floats. Always
// synchronous.
func formatBaseType(v Value, t *symbol.BaseType, opts FormatOptions) *OutputBuffer {
	out := &OutputBuffer{}
	if int64(len(v.Data)) != t.ByteSize {
		return errBuffer(fmt.Sprintf("Invalid data size %d for type of size %d", len(v.Data), t.ByteSize))
	}

	switch opts.NumFormat {
	case NumHex:
		u, _ := v.Uint64()
		out.Append(StyleNumber, fmt.Sprintf("0x%x", u))
		return out
	case NumUnsigned:
		u, _ := v.Uint64()
		out.Append(StyleNumber, fmt.Sprintf("%d", u))
		return out
	case NumSigned:
		i, _ := v.Int64()
		out.Append(StyleNumber, fmt.Sprintf("%d", i))
		return out
	case NumChar:
		appendChar(out, v.Data[0])
		return out
	}

	switch t.Kind {
	case symbol.BaseBoolean:
		u, _ := v.Uint64()
		if u != 0 {
			out.Append(StyleNumber, "true")
		} else {
			out.Append(StyleNumber, "false")
		}

	case symbol.BaseSignedChar, symbol.BaseUnsignedChar:
		// Chars use only the first byte regardless of declared width.
		appendChar(out, v.Data[0])

	case symbol.BaseSigned:
		i, _ := v.Int64()
		out.Append(StyleNumber, fmt.Sprintf("%d", i))

	case symbol.BaseUnsigned:
		u, _ := v.Uint64()
		out.Append(StyleNumber, fmt.Sprintf("%d", u))

	case symbol.BaseAddress:
		// Addresses are always hex.
		u, _ := v.Uint64()
		out.Append(StyleNumber, fmt.Sprintf("0x%x", u))

	case symbol.BaseFloat:
		u, _ := v.Uint64()
		switch len(v.Data) {
		case 4:
			out.Append(StyleNumber, fmt.Sprintf("%g", math.Float32frombits(uint32(u))))
		case 8:
			out.Append(StyleNumber, fmt.Sprintf("%g", math.Float64frombits(u)))
		default:
			return errBuffer(fmt.Sprintf("Unknown float of size %d", len(v.Data)))
		}

	default:
		return errBuffer(fmt.Sprintf("unknown base type '%s'", t.Name))
	}
	return out
}

func appendChar(out *OutputBuffer, c byte) {
	if c >= 0x20 && c < 0x7f {
		out.Append(StyleString, fmt.Sprintf("'%c'", c))
	} else {
		out.Append(StyleString, fmt.Sprintf("'\\x%02x'", c))
	}
}

// formatPointer renders a non-char pointer as "(TypeName) 0xHEX" and a
// char pointer as a string.
func formatPointer(provider symbol.DataProvider, v Value, t *symbol.ModifiedType,
	opts FormatOptions, cb func(*OutputBuffer)) {
	if len(v.Data) != symbol.PointerSize {
		cb(errBuffer(fmt.Sprintf("Pointer data had incorrect size (expecting %d, got %d)",
			symbol.PointerSize, len(v.Data))))
		return
	}
	pointee := t.Modified.Get()
	if base, ok := symbol.Concrete(pointee).(*symbol.BaseType); ok && base.IsChar() {
		formatCharPointer(provider, v, opts, cb)
		return
	}
	addr, _ := v.Uint64()
	out := &OutputBuffer{}
	out.Append(StyleComment, "("+v.Type.String()+") ")
	out.Append(StyleNumber, fmt.Sprintf("0x%x", addr))
	cb(out)
}

// formatCharPointer treats the pointer target as a C string: fetch up
// to MaxArraySize bytes speculatively and stop at a terminator.
func formatCharPointer(provider symbol.DataProvider, v Value, opts FormatOptions,
	cb func(*OutputBuffer)) {
	addr, _ := v.Uint64()
	if addr == 0 {
		// A null char* is just a null pointer, not an invalid one.
		out := &OutputBuffer{}
		out.Append(StyleNumber, "0x0")
		cb(out)
		return
	}
	if opts.MaxArraySize == 0 {
		out := &OutputBuffer{}
		out.Append(StyleString, `""`)
		out.Append(StyleComment, "...")
		cb(out)
		return
	}
	provider.GetMemoryAsync(addr, uint32(opts.MaxArraySize), func(err error, data []byte) {
		if err != nil || len(data) == 0 {
			out := &OutputBuffer{}
			out.Append(StyleNumber, fmt.Sprintf("0x%x", addr))
			out.Append(StyleError, " <invalid pointer>")
			cb(out)
			return
		}
		str, truncated := terminateString(data)
		cb(stringBuffer(str, truncated))
	})
}

// terminateString cuts data at the first NUL. No NUL within the fetched
// window means the string was truncated.
func terminateString(data []byte) (str []byte, truncated bool) {
	for i, c := range data {
		if c == 0 {
			return data[:i], false
		}
	}
	return data, true
}

func stringBuffer(str []byte, truncated bool) *OutputBuffer {
	out := &OutputBuffer{}
	out.Append(StyleString, `"`+escapeString(str)+`"`)
	if truncated {
		out.Append(StyleComment, "...")
	}
	return out
}

// escapeString escapes backslash, quotes, and control characters;
// non-printable bytes become hex escapes.
func escapeString(data []byte) string {
	var sb []byte
	for _, c := range data {
		switch c {
		case '\\':
			sb = append(sb, `\\`...)
		case '"':
			sb = append(sb, `\"`...)
		case '\'':
			sb = append(sb, `\'`...)
		case '\n':
			sb = append(sb, `\n`...)
		case '\r':
			sb = append(sb, `\r`...)
		case '\t':
			sb = append(sb, `\t`...)
		default:
			if c >= 0x20 && c < 0x7f {
				sb = append(sb, c)
			} else {
				sb = append(sb, fmt.Sprintf(`\x%02x`, c)...)
			}
		}
	}
	return string(sb)
}

// formatChildren issues n child formatting operations that may overlap
// in flight, then recombines the results in positional order.
func formatChildren(n int, each func(i int, done func(*OutputBuffer)),
	finish func(parts []*OutputBuffer)) {
	if n == 0 {
		finish(nil)
		return
	}
	parts := make([]*OutputBuffer, n)
	remaining := n
	for i := 0; i < n; i++ {
		idx := i
		each(idx, func(buf *OutputBuffer) {
			parts[idx] = buf
			remaining--
			if remaining == 0 {
				finish(parts)
			}
		})
	}
}

// formatArray renders fixed-size arrays. Char arrays render as strings
// from the in-hand buffer; other element types render elementwise with
// truncation at MaxArraySize.
func formatArray(provider symbol.DataProvider, v Value, t *symbol.ArrayType,
	opts FormatOptions, cb func(*OutputBuffer)) {
	elem := t.Elem.Get()
	if elem == nil {
		cb(errBuffer("missing array element type"))
		return
	}
	concreteElem := symbol.Concrete(elem)

	if base, ok := concreteElem.(*symbol.BaseType); ok && base.IsChar() {
		limit := len(v.Data)
		if int(t.Count) < limit {
			limit = int(t.Count)
		}
		if opts.MaxArraySize < limit {
			limit = opts.MaxArraySize
		}
		str, truncated := terminateString(v.Data[:limit])
		cb(stringBuffer(str, truncated))
		return
	}

	if t.Count == 0 {
		out := &OutputBuffer{}
		out.AppendText("{}")
		cb(out)
		return
	}

	elemSize := concreteElem.Size()
	if elemSize <= 0 {
		cb(errBuffer("missing array element type"))
		return
	}
	expected := elemSize * t.Count
	if int64(len(v.Data)) < expected {
		cb(errBuffer(fmt.Sprintf("Array data (%d bytes) is too small for the expected size (%d bytes)",
			len(v.Data), expected)))
		return
	}

	count := int(t.Count)
	truncated := false
	if count > opts.MaxArraySize {
		count = opts.MaxArraySize
		truncated = true
	}

	formatChildren(count,
		func(i int, done func(*OutputBuffer)) {
			offset := int64(i) * elemSize
			ev := Value{Type: elem, Data: v.Data[offset : offset+elemSize]}
			if v.Source.Kind == SourceMemory {
				ev.Source = ValueSource{Kind: SourceMemory, Address: v.Source.Address + uint64(offset)}
			}
			formatValue(provider, ev, opts, done)
		},
		func(parts []*OutputBuffer) {
			out := &OutputBuffer{}
			out.AppendText("[")
			for i, p := range parts {
				if i > 0 {
					out.AppendText(", ")
				}
				out.AppendBuffer(p)
			}
			if truncated {
				out.AppendText(", ...")
			}
			out.AppendText("]")
			cb(out)
		})
}

// formatCollection renders "{member = value, ...}" recursively. Member
// formatting may be asynchronous; the parent completes only after all
// children, recombined in declaration order.
func formatCollection(provider symbol.DataProvider, v Value, t *symbol.Collection,
	opts FormatOptions, cb func(*OutputBuffer)) {
	members := t.Members
	formatChildren(len(members),
		func(i int, done func(*OutputBuffer)) {
			m := members[i]
			extractMember(provider, v, m, m.Offset, func(err error, mv Value) {
				if err != nil {
					buf := &OutputBuffer{}
					buf.AppendText(m.Name + " = ")
					buf.AppendBuffer(errBuffer(err.Error()))
					done(buf)
					return
				}
				formatValue(provider, mv, opts, func(child *OutputBuffer) {
					buf := &OutputBuffer{}
					buf.AppendText(m.Name + " = ")
					buf.AppendBuffer(child)
					done(buf)
				})
			})
		},
		func(parts []*OutputBuffer) {
			out := &OutputBuffer{}
			out.AppendText("{")
			for i, p := range parts {
				if i > 0 {
					out.AppendText(", ")
				}
				out.AppendBuffer(p)
			}
			out.AppendText("}")
			cb(out)
		})
}

// formatReference dereferences and renders "(TypeName) 0xADDR = value".
func formatReference(provider symbol.DataProvider, v Value, t *symbol.ModifiedType,
	opts FormatOptions, cb func(*OutputBuffer)) {
	if len(v.Data) != symbol.PointerSize {
		cb(errBuffer(fmt.Sprintf("Reference data had incorrect size (expecting %d, got %d)",
			symbol.PointerSize, len(v.Data))))
		return
	}
	addr, _ := v.Uint64()
	out := &OutputBuffer{}
	out.Append(StyleComment, "("+v.Type.String()+") ")
	out.Append(StyleNumber, fmt.Sprintf("0x%x", addr))
	out.AppendText(" = ")

	referent := t.Modified.Get()
	if referent == nil {
		out.AppendBuffer(errBuffer("missing referenced type"))
		cb(out)
		return
	}
	readValueFromMemory(provider, addr, referent, func(err error, rv Value) {
		if err != nil {
			out.AppendBuffer(errBuffer(fmt.Sprintf("Invalid pointer 0x%x", addr)))
			cb(out)
			return
		}
		formatValue(provider, rv, opts, func(child *OutputBuffer) {
			out.AppendBuffer(child)
			cb(out)
		})
	})
}
