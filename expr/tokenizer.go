// Copyright 2026 The SDB Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expr

import "fmt"

// Tokenize turns an expression string into tokens. On error it returns
// the tokens accumulated so far along with a syntax error pointing at
// the offending byte; callers must check the error before using the
// tokens.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case isSpace(c):
			i++

		case isDigit(c):
			// Any alnum run counts as an integer here; numeric
			// validation (hex digits, 0x prefix) happens at evaluation.
			start := i
			for i < len(input) && isAlnum(input[i]) {
				i++
			}
			tokens = append(tokens, Token{TokenInteger, input[start:i], start})

		case isNameStart(c):
			start := i
			for i < len(input) && isAlnum(input[i]) {
				i++
			}
			text := input[start:i]
			kind := TokenName
			if k, ok := keywords[text]; ok {
				kind = k
			}
			tokens = append(tokens, Token{kind, text, start})

		default:
			if i+1 < len(input) {
				if k, ok := twoCharOps[input[i:i+2]]; ok {
					tokens = append(tokens, Token{k, input[i : i+2], i})
					i += 2
					continue
				}
			}
			if k, ok := oneCharOps[c]; ok {
				tokens = append(tokens, Token{k, input[i : i+1], i})
				i++
				continue
			}
			msg := fmt.Sprintf("Invalid character '%c' in expression.\n%s",
				c, caretContext(input, i))
			return tokens, newErr(ErrSyntax, msg)
		}
	}
	return tokens, nil
}

// caretContext renders the two-line source excerpt used by syntax
// errors: the input, then a caret under the offending byte.
func caretContext(input string, offset int) string {
	if offset > len(input) {
		offset = len(input)
	}
	line := "  " + input + "\n  "
	for i := 0; i < offset; i++ {
		line += " "
	}
	return line + "^"
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool { return isDigit(c) || isNameStart(c) }
