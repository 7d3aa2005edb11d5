// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package index holds the per-module symbol index used for global and
// qualified name lookup. The index is a tree keyed by the components of
// qualified names ("std" -> "vector" -> ...), built at module load time
// and read-only afterward.
package index

import "github.com/sdb-project/sdb/symbol"

// Node is one level of the index tree. The root node represents the
// global namespace and has an empty name.
type Node struct {
	name     string
	parent   *Node
	children map[string]*Node
	refs     []symbol.Ref
}

// Name returns the name component this node is keyed by.
func (n *Node) Name() string { return n.name }

// Parent returns the enclosing scope's node, nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Child returns the child node for one name component, or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// AddChild returns the child node for name, creating it if needed.
func (n *Node) AddChild(name string) *Node {
	if c := n.children[name]; c != nil {
		return c
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	c := &Node{name: name, parent: n}
	n.children[name] = c
	return c
}

// AddSymbol records a symbol reference at this node.
func (n *Node) AddSymbol(ref symbol.Ref) {
	n.refs = append(n.refs, ref)
}

// Symbols returns the symbol references recorded at this node.
func (n *Node) Symbols() []symbol.Ref { return n.refs }

// Index is the root of a module's name tree.
type Index struct {
	root Node
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Root returns the global-namespace node.
func (x *Index) Root() *Node { return &x.root }

// Add indexes a symbol under the qualified name given as components.
func (x *Index) Add(components []string, ref symbol.Ref) {
	n := &x.root
	for _, c := range components {
		n = n.AddChild(c)
	}
	n.AddSymbol(ref)
}

// FindExact returns the symbols recorded exactly at the qualified name
// given as components, or nil if the path does not exist.
func (x *Index) FindExact(components []string) []symbol.Ref {
	n := &x.root
	for _, c := range components {
		n = n.Child(c)
		if n == nil {
			return nil
		}
	}
	return n.refs
}
