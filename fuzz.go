// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

// Fuzz is a go-fuzz entry point. It parses data under strict JSON, under
// each dialect flag on its own, and under one combination of the UnquotedKeys,
// CComments, ImplicitRootObject, OptionalCommas and EqualsForColon flags, and
// reports the corpus entry as interesting
// whenever at least one combination accepts it without panicking (a
// *ParseError return is an ordinary, uninteresting outcome; an unrecovered
// panic is a bug in Parse itself, independent of this harness).
func Fuzz(data []byte) int {
	interesting := 0
	combos := []ParseOptions{
		{},
		{UnquotedKeys: true},
		{CComments: true},
		{ImplicitRootObject: true},
		{OptionalCommas: true},
		{EqualsForColon: true},
		{PythonMultilineStrings: true},
		{SkipEscapeSequences: true},
		{AllowControlCharacters: true},
		{
			UnquotedKeys: true, CComments: true, ImplicitRootObject: true,
			OptionalCommas: true, EqualsForColon: true,
		},
	}

	for _, opts := range combos {
		d, err := Make(nil, 0, 0)
		if err != nil {
			continue
		}
		if perr := Parse(data, d, opts); perr == nil {
			interesting = 1
		}
	}
	return interesting
}
