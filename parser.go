// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"io"

	"github.com/go-kratos/kratos/v2/log"
)

// Parse reads src as a JSON document (relaxed per opts's dialect flags),
// populates d with its values, and sets d's root to the result.
//
// Parse uses panic/recover as a non-local exit scoped to this single call:
// any parse failure unwinds straight back here instead of threading an error
// return through every recursive-descent call, mirroring the original
// implementation's longjmp-style abort without reaching for anything as
// heavy as goroutines or channels to get the same effect. A malformed
// document still leaves d with a root: an empty object, so a caller that
// ignores the error can keep navigating d without a nil check.
func Parse(src []byte, d *ConfigData, opts ParseOptions) (err error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewFilter(log.NewStdLogger(io.Discard), log.FilterLevel(log.LevelError))
	}
	p := &parser{src: src, pos: 0, line: 1, opts: opts, d: d, log: log.NewHelper(logger)}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		pe, ok := r.(*ParseError)
		if !ok {
			panic(r)
		}
		d.SetRoot(d.AddObject(0))
		err = pe
	}()

	p.skipWhitespace()

	if opts.ImplicitRootObject && !p.peekByteIs('{') {
		obj := d.AddObject(0)
		p.parseMembers(obj, false)
		d.SetRoot(obj)
		p.requireTrailingEOF()
		return nil
	}

	root := p.parseValue()
	d.SetRoot(root)
	p.requireTrailingEOF()
	return nil
}

func (p *parser) requireTrailingEOF() {
	p.skipWhitespace()
	if !p.atEOF() {
		c, _ := p.peekByteOK()
		p.errorf("Unexpected character `%c`", c)
	}
}

// parseValue dispatches on the next non-whitespace byte to one of the six
// JSON value forms.
func (p *parser) parseValue() Loc {
	p.skipWhitespace()
	c, ok := p.peekByteOK()
	if !ok {
		p.errorf("Bad number format")
	}

	switch {
	case c == '"':
		return p.parseString()
	case c == '{':
		p.advance()
		obj := p.d.AddObject(0)
		p.parseMembers(obj, true)
		return obj
	case c == '[':
		p.advance()
		arr := p.d.AddArray(0)
		p.parseArrayBody(arr)
		return arr
	case c == 't':
		return p.expectLiteral("true", True)
	case c == 'f':
		return p.expectLiteral("false", False)
	case c == 'n':
		return p.expectLiteral("null", Null)
	case c == '-' || c == '.' || isDigit(c):
		return p.parseNumber()
	default:
		p.errorf("Unexpected character `%c`", c)
		panic("unreachable")
	}
}

func (p *parser) expectLiteral(lit string, result Loc) Loc {
	for i := 0; i < len(lit); i++ {
		c, ok := p.peekByteOK()
		if !ok || c != lit[i] {
			p.errorf("Expected `%c`, saw %s", lit[i], sawRepr(c, !ok))
		}
		p.advance()
	}
	return result
}

// parseMembers reads a sequence of "key (: | =) value" members into obj.
// When braced, the list is terminated by '}' (already past the opening
// '{', which the caller consumed); otherwise it runs to EOF, as used by
// ImplicitRootObject. A comma between members is required unless
// OptionalCommas folds it into whitespace; in that case a stray trailing
// comma just gets eaten on the way to finding the next key or the
// terminator, same as any other run of whitespace.
func (p *parser) parseMembers(obj Loc, braced bool) {
	p.skipWhitespace()
	trailingCommaSeen := false

	for {
		if braced && p.peekByteIs('}') {
			if trailingCommaSeen {
				p.errorf("Unexpected character `}`")
			}
			p.advance()
			return
		}
		if !braced && p.atEOF() {
			if trailingCommaSeen {
				p.errorf("Bad number format")
			}
			return
		}
		trailingCommaSeen = false

		keyLoc := p.parseKey()
		p.skipWhitespace()

		if p.opts.EqualsForColon && p.peekByteIs('=') {
			p.advance()
		} else if p.peekByteIs(':') {
			p.advance()
		} else {
			c, ok := p.peekByteOK()
			p.errorf("Expected `:`, saw %s", sawRepr(c, !ok))
		}

		p.skipWhitespace()
		val := p.parseValue()
		p.d.SetLoc(obj, keyLoc, val)
		p.skipWhitespace()

		if !p.opts.OptionalCommas {
			if braced && p.peekByteIs('}') {
				p.advance()
				return
			}
			if !braced && p.atEOF() {
				return
			}
			c, ok := p.peekByteOK()
			if !ok || c != ',' {
				p.errorf("Expected `,`, saw %s", sawRepr(c, !ok))
			}
			p.advance()
			p.skipWhitespace()
			trailingCommaSeen = true
		}
	}
}

// parseArrayBody reads a sequence of comma-separated values into arr, past
// the opening '[' the caller already consumed, terminated by ']'.
func (p *parser) parseArrayBody(arr Loc) {
	p.skipWhitespace()
	trailingCommaSeen := false

	for {
		if p.peekByteIs(']') {
			if trailingCommaSeen {
				p.errorf("Unexpected character `]`")
			}
			p.advance()
			return
		}
		trailingCommaSeen = false

		item := p.parseValue()
		p.d.Push(arr, item)
		p.skipWhitespace()

		if !p.opts.OptionalCommas {
			if p.peekByteIs(']') {
				p.advance()
				return
			}
			c, ok := p.peekByteOK()
			if !ok || c != ',' {
				p.errorf("Expected `,`, saw %s", sawRepr(c, !ok))
			}
			p.advance()
			p.skipWhitespace()
			trailingCommaSeen = true
		}
	}
}
