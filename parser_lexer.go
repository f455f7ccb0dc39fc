// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// parser holds the mutable scan state for a single Parse call. It is never
// reused across calls, which sidesteps the original implementation's
// per-context error buffer entirely: a fresh parser means a fresh place to
// panic into.
type parser struct {
	src  []byte
	pos  int
	line int
	opts ParseOptions
	d    *ConfigData
	log  *log.Helper
}

func (p *parser) atEOF() bool { return p.pos >= len(p.src) }

func (p *parser) peekByteOK() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) peekByteIs(c byte) bool {
	b, ok := p.peekByteOK()
	return ok && b == c
}

func (p *parser) peekAtIs(offset int, c byte) bool {
	i := p.pos + offset
	if i < 0 || i >= len(p.src) {
		return false
	}
	return p.src[i] == c
}

// advance consumes and returns the current byte, bumping the line counter on
// a newline. It must only be called when atEOF() is false.
func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
	}
	return c
}

// errorf aborts the current Parse call via panic, carrying a *ParseError
// anchored to the current line. It never returns.
func (p *parser) errorf(format string, args ...interface{}) {
	panic(&ParseError{Line: p.line, Message: fmt.Sprintf(format, args...)})
}

// sawRepr renders the "saw" half of an "Expected X, saw Y" diagnostic:
// printable ASCII renders as a backtick-quoted character, anything else
// (control bytes, high bytes, EOF) renders as \xNN or the literal "EOF".
func sawRepr(b byte, eof bool) string {
	if eof {
		return "EOF"
	}
	if b >= 0x20 && b < 0x7F {
		return fmt.Sprintf("`%c`", b)
	}
	return fmt.Sprintf("\\x%02X", b)
}

// skipWhitespace consumes runs of space/tab/CR/LF, plus (per dialect flag)
// C-style comments and stray commas, per spec.md §4.3.
func (p *parser) skipWhitespace() {
	for {
		c, ok := p.peekByteOK()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.advance()
		case p.opts.CComments && c == '/' && p.peekAtIs(1, '/'):
			p.advance()
			p.advance()
			for {
				c2, ok2 := p.peekByteOK()
				if !ok2 || c2 == '\n' {
					break
				}
				p.advance()
			}
		case p.opts.CComments && c == '/' && p.peekAtIs(1, '*'):
			p.advance()
			p.advance()
			for {
				if p.atEOF() {
					p.errorf("Expected `*/`, saw EOF")
				}
				if p.peekByteIs('*') && p.peekAtIs(1, '/') {
					p.advance()
					p.advance()
					break
				}
				p.advance()
			}
		case p.opts.OptionalCommas && c == ',':
			p.advance()
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isBarewordStart(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c)
}
