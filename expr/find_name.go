// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import (
	"strings"

	"github.com/sdb-project/sdb/index"
	"github.com/sdb-project/sdb/symbol"
)

// FoundName is the result of a name search. Exactly one of Variable,
// Member (with ObjectPtr), or Other is set.
type FoundName struct {
	// Variable is a local, parameter, or global variable.
	Variable *symbol.Variable

	// Member with ObjectPtr is a data member reached through the
	// implicit object pointer. MemberOffset is the byte offset from the
	// pointed-to object's start, accumulated through base classes.
	ObjectPtr    *symbol.Variable
	Member       *symbol.DataMember
	MemberOffset int64

	// Other is any non-value symbol (type, function, namespace) the
	// name resolved to.
	Other symbol.Symbol
}

// FindName resolves an identifier from a lexical starting point.
// Search order, first match wins:
//
//  1. local variables of the enclosing lexical blocks, innermost
//     outward, then the enclosing function's parameters (only for
//     single bare names, and never past the function boundary);
//  2. members of the implicit object pointer's class, base classes
//     included;
//  3. the process symbol index, current scope outward to the global
//     namespace, the caller's module before other modules.
//
// Any of process and block may be nil to skip the searches that need
// them.
func FindName(process *index.ProcessSymbols, block *symbol.CodeBlock,
	sc symbol.Context, id Identifier) (FoundName, bool) {
	if name, bare := id.SingleComponentName(); bare && block != nil {
		if v := findLocalVariable(block, name); v != nil {
			return FoundName{Variable: v}, true
		}
		if fn := block.Func; fn != nil && fn.ObjectPtr != nil {
			if m, offset, ok := findObjectPtrMember(fn.ObjectPtr, name); ok {
				return FoundName{ObjectPtr: fn.ObjectPtr, Member: m, MemberOffset: offset}, true
			}
		}
	}
	if process != nil {
		if found, ok := findGlobalName(process, block, sc, id); ok {
			return found, true
		}
	}
	return FoundName{}, false
}

// FindLocalVariable searches the lexical blocks from the given block
// outward, then the enclosing function's parameters. It does not ascend
// past the function boundary.
func FindLocalVariable(block *symbol.CodeBlock, name string) *symbol.Variable {
	return findLocalVariable(block, name)
}

func findLocalVariable(block *symbol.CodeBlock, name string) *symbol.Variable {
	for b := block; b != nil; b = b.Parent {
		for _, v := range b.Vars {
			if v.Name == name {
				return v
			}
		}
	}
	if fn := block.Func; fn != nil {
		for _, v := range fn.Params {
			if v.Name == name {
				return v
			}
		}
		if fn.ObjectPtr != nil && fn.ObjectPtr.Name == name {
			return fn.ObjectPtr
		}
	}
	return nil
}

// findObjectPtrMember looks up name as a data member of the class the
// object pointer points to.
func findObjectPtrMember(objPtr *symbol.Variable, name string) (*symbol.DataMember, int64, bool) {
	t := objPtr.Type.Get()
	if t == nil {
		return nil, 0, false
	}
	mod, ok := symbol.Concrete(t).(*symbol.ModifiedType)
	if !ok || mod.Kind != symbol.ModPointer {
		return nil, 0, false
	}
	pointee := mod.Modified.Get()
	if pointee == nil {
		return nil, 0, false
	}
	coll, ok := symbol.Concrete(pointee).(*symbol.Collection)
	if !ok {
		return nil, 0, false
	}
	return FindMember(coll, name)
}

// FindMember searches a collection's direct data members and then its
// base classes depth-first, accumulating byte offsets. The first match
// in traversal order wins; multiple bases declaring the same name are
// not detected as ambiguous, and qualified Base::member disambiguation
// is not supported. Known limitation.
func FindMember(coll *symbol.Collection, name string) (*symbol.DataMember, int64, bool) {
	for _, m := range coll.Members {
		if m.Name == name {
			return m, m.Offset, true
		}
	}
	for _, inh := range coll.Inherited {
		from := inh.From.Get()
		if from == nil {
			continue
		}
		base, ok := symbol.Concrete(from).(*symbol.Collection)
		if !ok {
			continue
		}
		if m, offset, ok := FindMember(base, name); ok {
			return m, inh.Offset + offset, true
		}
	}
	return nil, 0, false
}

// findGlobalName searches the symbol index. The starting scope is the
// namespace/class path of the enclosing function; each miss retries one
// scope closer to the global namespace. A leading "::" pins the search
// to the global namespace directly.
func findGlobalName(process *index.ProcessSymbols, block *symbol.CodeBlock,
	sc symbol.Context, id Identifier) (FoundName, bool) {
	key := id.IndexComponents()
	modules := process.InPriorityOrder(sc)

	var scope []string
	if !id.InGlobalNamespace() && block != nil && block.Func != nil {
		scope = functionScope(block.Func.Name)
	}

	for {
		full := make([]string, 0, len(scope)+len(key))
		full = append(full, scope...)
		full = append(full, key...)
		for _, m := range modules {
			if found, ok := classifyRefs(m.Index.FindExact(full)); ok {
				return found, true
			}
		}
		if len(scope) == 0 {
			return FoundName{}, false
		}
		scope = scope[:len(scope)-1]
	}
}

// functionScope extracts the enclosing namespace/class path from a
// qualified function name: "ns::Class::Method" yields [ns Class].
func functionScope(qualified string) []string {
	parts := strings.Split(qualified, "::")
	if len(parts) <= 1 {
		return nil
	}
	return parts[:len(parts)-1]
}

// classifyRefs picks the first usable symbol out of an index hit,
// preferring variables since lookups here want values.
func classifyRefs(refs []symbol.Ref) (FoundName, bool) {
	var other symbol.Symbol
	for _, r := range refs {
		s := r.Get()
		if s == nil {
			continue
		}
		if v, ok := s.(*symbol.Variable); ok {
			return FoundName{Variable: v}, true
		}
		if other == nil {
			other = s
		}
	}
	if other != nil {
		return FoundName{Other: other}, true
	}
	return FoundName{}, false
}
