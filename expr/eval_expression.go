// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

// EvalExpression is the top-level entry point: tokenize, parse, and
// evaluate an expression string against a context. Parse errors gain a
// two-line source excerpt with a caret at the offending token. The
// callback runs exactly once, inline when evaluation needs no
// asynchronous fetches.
func EvalExpression(input string, ctx EvalContext, cb EvalCallback) {
	tokens, err := Tokenize(input)
	if err != nil {
		cb(err, Value{})
		return
	}
	node, err := Parse(tokens)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			err = newErr(ErrSyntax, pe.Msg+"\n"+caretContext(input, pe.Token.Offset))
		}
		cb(err, Value{})
		return
	}
	node.Eval(ctx, cb)
}

// EvalAndFormat evaluates an expression and formats the result,
// rendering evaluation errors as inline annotations. Convenience
// wrapper for console layers.
func EvalAndFormat(input string, ctx EvalContext, opts FormatOptions,
	cb func(*OutputBuffer)) {
	EvalExpression(input, ctx, func(err error, v Value) {
		fv := NewFormatValue(ctx.GetDataProvider())
		if err != nil {
			fv.AppendError(err)
		} else {
			fv.AppendValue(v, opts)
		}
		fv.Complete(cb)
	})
}
