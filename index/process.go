// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import "github.com/sdb-project/sdb/symbol"

// Module pairs one loaded module's index with its load context.
type Module struct {
	Name    string
	Context symbol.Context
	Index   *Index
}

// ProcessSymbols is the set of all loaded modules' symbols. Lookups
// that know which module the caller is stopped in search that module
// first, then the others in load order.
type ProcessSymbols struct {
	Modules []*Module
}

// ModuleForContext returns the module whose load context matches sc,
// or nil. Used to prioritize the caller's own module during lookup.
func (p *ProcessSymbols) ModuleForContext(sc symbol.Context) *Module {
	for _, m := range p.Modules {
		if m.Context == sc {
			return m
		}
	}
	return nil
}

// InPriorityOrder returns the modules with the one matching sc first.
func (p *ProcessSymbols) InPriorityOrder(sc symbol.Context) []*Module {
	cur := p.ModuleForContext(sc)
	if cur == nil {
		return p.Modules
	}
	out := make([]*Module, 0, len(p.Modules))
	out = append(out, cur)
	for _, m := range p.Modules {
		if m != cur {
			out = append(out, m)
		}
	}
	return out
}
