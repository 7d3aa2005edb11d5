// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symbol

// Variable is a local variable, function parameter, or global.
type Variable struct {
	Name string
	Type TypeRef
	// Location says where the value lives, per valid-address range.
	Location VariableLocation
	// Artificial marks compiler-generated variables such as "this".
	Artificial bool
}

func (*Variable) isSymbol() {}

// LocationEntry is one entry of a variable's location table: a DWARF
// location expression valid over [Begin, End) in module-relative
// addresses. A zero Begin and End means valid everywhere.
type LocationEntry struct {
	Begin uint64
	End   uint64
	Expr  []byte
}

// Covers reports whether the module-relative address falls in this
// entry's validity range.
func (e *LocationEntry) Covers(relative uint64) bool {
	if e.Begin == 0 && e.End == 0 {
		return true
	}
	return e.Begin <= relative && relative < e.End
}

// VariableLocation is the per-address-range location table of a Variable.
type VariableLocation struct {
	Entries []LocationEntry
}

// EntryForIP returns the entry covering the given absolute instruction
// pointer, or nil if no entry matches.
func (l *VariableLocation) EntryForIP(sc Context, ip uint64) *LocationEntry {
	relative := sc.AbsoluteToRelative(ip)
	for i := range l.Entries {
		if l.Entries[i].Covers(relative) {
			return &l.Entries[i]
		}
	}
	return nil
}

// CodeBlock is a lexical scope inside a function. The outermost block
// of a function is the function body itself.
type CodeBlock struct {
	// Vars are the variables declared directly in this block.
	Vars []*Variable
	// Inner are the nested lexical blocks.
	Inner []*CodeBlock

	// Parent is the enclosing block, nil for a function's outermost
	// block. Back-reference only.
	Parent *CodeBlock
	// Func is the function containing this block. Back-reference only.
	Func *Function
}

func (*CodeBlock) isSymbol() {}

// Function is a concrete function with code, its parameter list, and
// its lexical block tree.
type Function struct {
	// Name is the fully qualified name, e.g. "ns::Class::Method".
	Name string
	// Params are the formal parameters, in declaration order.
	Params []*Variable
	// ObjectPtr is the implicit object pointer ("this") for member
	// functions, nil otherwise. Its type is pointer-to-class.
	ObjectPtr *Variable
	// Body is the outermost lexical block.
	Body CodeBlock
}

func (*Function) isSymbol() {}

// Link fills in the Parent and Func back-pointers of the block tree.
// Fixtures and decoders call it once after constructing a Function.
func (f *Function) Link() {
	f.Body.Func = f
	f.Body.Parent = nil
	var walk func(b *CodeBlock)
	walk = func(b *CodeBlock) {
		for _, inner := range b.Inner {
			inner.Parent = b
			inner.Func = f
			walk(inner)
		}
	}
	walk(&f.Body)
}
