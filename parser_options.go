// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// ParseOptions is the dialect settings record: eight independent booleans
// that relax strict JSON syntax, in the order spec.md §4.3 enumerates them.
// The zero value means strict JSON. New flags are appended at the end so
// existing field offsets never shift.
type ParseOptions struct {
	// UnquotedKeys allows object keys to be a bare [A-Za-z0-9_-]+ run
	// instead of a quoted string.
	UnquotedKeys bool

	// CComments treats `// ...` to end of line and `/* ... */` as
	// whitespace.
	CComments bool

	// ImplicitRootObject parses the whole input as a member list,
	// synthesizing an OBJECT root, when the top-level input does not begin
	// with `{`. Empty input yields an empty object.
	ImplicitRootObject bool

	// OptionalCommas makes commas between object members and array
	// elements optional: a stray `,` is treated as whitespace wherever it
	// appears.
	OptionalCommas bool

	// EqualsForColon accepts `=` as well as `:` between a key and its
	// value.
	EqualsForColon bool

	// PythonMultilineStrings makes a string whose opening `"` is
	// immediately followed by two more `"` read raw bytes (including
	// newlines, with no escape processing) until the first `"""` that is
	// not itself followed by another `"`.
	PythonMultilineStrings bool

	// SkipEscapeSequences treats `\` inside a quoted string as an ordinary
	// literal character instead of an escape introducer.
	SkipEscapeSequences bool

	// AllowControlCharacters disables the rejection of raw bytes below
	// 0x20 inside a quoted string.
	AllowControlCharacters bool

	// Logger is held on the parser state for non-fatal diagnostics; Parse
	// writes no messages to it. When nil, a logger that discards all output
	// is used.
	Logger log.Logger
}

// ParseError is a line-anchored syntax diagnostic, formatted as
// "<line_number>: <message>" per spec.md §6. The parser's non-local exit
// (a panic scoped to the Parse call) always resolves to exactly one of
// these by the time Parse returns.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}
