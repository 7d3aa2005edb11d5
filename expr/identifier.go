// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "strings"

// Component is one segment of a possibly qualified name: an optional
// leading "::" separator, the name itself, and an optional template
// parameter list. Template parameters are carried as normalized
// strings, not parsed types.
type Component struct {
	HasSeparator bool
	Name         string
	TemplateSpec []string
}

// HasTemplate reports whether the component carries template parameters.
func (c Component) HasTemplate() bool { return c.TemplateSpec != nil }

func (c Component) appendTo(b *strings.Builder, includeSeparator bool) {
	if includeSeparator && c.HasSeparator {
		b.WriteString("::")
	}
	b.WriteString(c.Name)
	if c.HasTemplate() {
		b.WriteByte('<')
		b.WriteString(strings.Join(c.TemplateSpec, ", "))
		b.WriteByte('>')
	}
}

// templateName is the component name with its template parameters
// appended, the form used as an index key.
func (c Component) templateName() string {
	if !c.HasTemplate() {
		return c.Name
	}
	var b strings.Builder
	c.appendTo(&b, false)
	return b.String()
}

// Identifier is a structured representation of a possibly qualified,
// possibly templated name such as "ns::Class<T>::member". A parsed
// identifier always has at least one component. Immutable after
// construction by convention; Append returns a grown copy.
type Identifier struct {
	Components []Component
}

// NewIdentifier makes a single-component unqualified identifier.
func NewIdentifier(name string) Identifier {
	return Identifier{Components: []Component{{Name: name}}}
}

// Append returns a copy of id with one more component.
func (id Identifier) Append(c Component) Identifier {
	comps := make([]Component, 0, len(id.Components)+1)
	comps = append(comps, id.Components...)
	comps = append(comps, c)
	return Identifier{Components: comps}
}

// Empty reports whether the identifier has no components.
func (id Identifier) Empty() bool { return len(id.Components) == 0 }

// InGlobalNamespace reports whether the identifier is explicitly
// qualified from the global namespace ("::foo").
func (id Identifier) InGlobalNamespace() bool {
	return len(id.Components) > 0 && id.Components[0].HasSeparator
}

// FullName renders the identifier as the user would write it.
func (id Identifier) FullName() string {
	var b strings.Builder
	for i, c := range id.Components {
		// Interior components always print their separator; the first
		// one prints it only when globally qualified.
		c.appendTo(&b, i > 0 || c.HasSeparator)
	}
	return b.String()
}

// Scope returns everything but the last component. A single-component
// identifier yields the empty identifier, or a bare "::" marker when
// that sole component was globally qualified.
func (id Identifier) Scope() Identifier {
	if len(id.Components) <= 1 {
		if id.InGlobalNamespace() {
			return Identifier{Components: []Component{{HasSeparator: true}}}
		}
		return Identifier{}
	}
	comps := make([]Component, len(id.Components)-1)
	copy(comps, id.Components[:len(id.Components)-1])
	return Identifier{Components: comps}
}

// IndexComponents returns the name strings used to key the symbol
// index, template parameters folded into their component's name.
func (id Identifier) IndexComponents() []string {
	out := make([]string, len(id.Components))
	for i, c := range id.Components {
		out[i] = c.templateName()
	}
	return out
}

// SingleComponentName returns the bare name when the identifier is one
// unqualified, untemplated component, which is the only form eligible
// for local-variable lookup.
func (id Identifier) SingleComponentName() (string, bool) {
	if len(id.Components) != 1 {
		return "", false
	}
	c := id.Components[0]
	if c.HasSeparator || c.HasTemplate() {
		return "", false
	}
	return c.Name, true
}

// ParseIdentifier round-trips input through the tokenizer and parser
// and fails unless the result is exactly one identifier (it rejects
// "1+2" and any non-identifier expression).
func ParseIdentifier(input string) (Identifier, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return Identifier{}, err
	}
	node, err := Parse(tokens)
	if err != nil {
		return Identifier{}, err
	}
	in, ok := node.(*IdentifierNode)
	if !ok {
		return Identifier{}, errf(ErrSyntax, "Input did not parse as an identifier: %q.", input)
	}
	return in.Ident, nil
}
