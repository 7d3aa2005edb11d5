// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "strings"

// Style is a semantic rendering hint for a span of output text. The
// console layer decides what each style looks like.
type Style int

const (
	StyleNormal Style = iota
	StyleComment
	StyleError
	StyleNumber
	StyleString
)

// Span is a run of output text in one style.
type Span struct {
	Style Style
	Text  string
}

// OutputBuffer accumulates styled output text.
type OutputBuffer struct {
	spans []Span
}

// Append adds text in the given style, merging with the previous span
// when the style matches.
func (b *OutputBuffer) Append(style Style, text string) {
	if text == "" {
		return
	}
	if n := len(b.spans); n > 0 && b.spans[n-1].Style == style {
		b.spans[n-1].Text += text
		return
	}
	b.spans = append(b.spans, Span{style, text})
}

// AppendText adds unstyled text.
func (b *OutputBuffer) AppendText(text string) {
	b.Append(StyleNormal, text)
}

// AppendBuffer splices another buffer's spans onto this one.
func (b *OutputBuffer) AppendBuffer(other *OutputBuffer) {
	if other == nil {
		return
	}
	for _, s := range other.spans {
		b.Append(s.Style, s.Text)
	}
}

// Spans returns the accumulated spans.
func (b *OutputBuffer) Spans() []Span { return b.spans }

// Text returns the accumulated text with styling dropped.
func (b *OutputBuffer) Text() string {
	var sb strings.Builder
	for _, s := range b.spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
