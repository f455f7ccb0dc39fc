// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import "unicode/utf8"

// parseKey reads an object member key: a bareword (when UnquotedKeys is set
// and the next byte can start one) or a quoted string.
func (p *parser) parseKey() Loc {
	c, ok := p.peekByteOK()
	if p.opts.UnquotedKeys && ok && c != '"' && isBarewordStart(c) {
		return p.d.AddString(p.scanBareword())
	}
	if !ok || c != '"' {
		p.errorf("Expected `\"`, saw %s", sawRepr(c, !ok))
	}
	return p.parseString()
}

func (p *parser) scanBareword() string {
	start := p.pos
	for {
		c, ok := p.peekByteOK()
		if !ok || !isBarewordStart(c) {
			break
		}
		p.advance()
	}
	return string(p.src[start:p.pos])
}

// parseString consumes a quoted string (plain or, under
// PythonMultilineStrings, a triple-quoted one) and interns its content.
func (p *parser) parseString() Loc {
	c, ok := p.peekByteOK()
	if !ok || c != '"' {
		p.errorf("Expected `\"`, saw %s", sawRepr(c, !ok))
	}
	p.advance()

	if p.opts.PythonMultilineStrings && p.peekByteIs('"') && p.peekAtIs(1, '"') {
		p.advance()
		p.advance()
		return p.d.AddString(p.parseMultilineStringBody())
	}
	return p.d.AddString(p.parseStringBody())
}

// parseStringBody reads a plain (non-multiline) string's content up to its
// closing quote, processing backslash escapes unless SkipEscapeSequences is
// set and rejecting raw control bytes unless AllowControlCharacters is set.
func (p *parser) parseStringBody() string {
	var buf []byte
	for {
		c, ok := p.peekByteOK()
		if !ok {
			p.errorf("Expected `\"`, saw EOF")
		}
		if c == '"' {
			p.advance()
			return string(buf)
		}
		if c < 0x20 && !p.opts.AllowControlCharacters {
			p.errorf("Literal control character in string")
		}
		if c == '\\' && !p.opts.SkipEscapeSequences {
			p.advance()
			buf = p.appendEscape(buf)
			continue
		}
		if c >= 0x80 {
			r, size := utf8.DecodeRune(p.src[p.pos:])
			if r == utf8.RuneError && size <= 1 {
				p.errorf("Not an UTF-8 codepoint %d", c)
			}
			for i := 0; i < size; i++ {
				buf = append(buf, p.advance())
			}
			continue
		}
		buf = append(buf, c)
		p.advance()
	}
}

// appendEscape handles the character following a backslash already consumed
// by the caller.
func (p *parser) appendEscape(buf []byte) []byte {
	c, ok := p.peekByteOK()
	if !ok {
		p.errorf("Expected `\"`, saw EOF")
	}
	switch c {
	case '"', '\\', '/':
		p.advance()
		return append(buf, c)
	case 'b':
		p.advance()
		return append(buf, '\b')
	case 'f':
		p.advance()
		return append(buf, '\f')
	case 'n':
		p.advance()
		return append(buf, '\n')
	case 'r':
		p.advance()
		return append(buf, '\r')
	case 't':
		p.advance()
		return append(buf, '\t')
	case 'u':
		p.advance()
		cp := p.parseHex4()
		return append(buf, encodeUTF16UnitAsUTF8(cp)...)
	default:
		p.errorf("Unexpected character `%c`", c)
		return nil
	}
}

func (p *parser) parseHex4() uint32 {
	var v uint32
	for i := 0; i < 4; i++ {
		c, ok := p.peekByteOK()
		if !ok {
			p.errorf("Expected `\"`, saw EOF")
		}
		var digit uint32
		switch {
		case c >= '0' && c <= '9':
			digit = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint32(c-'A') + 10
		default:
			p.errorf("Unexpected character `%c`", c)
		}
		v = v<<4 | digit
		p.advance()
	}
	return v
}

// encodeUTF16UnitAsUTF8 encodes a single \uXXXX code unit using the
// standard 1/2/3-byte UTF-8 pattern for its numeric value, without
// attempting to combine surrogate pairs into one non-BMP codepoint. A high
// and low surrogate pair therefore round-trips as two independent 3-byte
// sequences rather than one 4-byte one: technically invalid UTF-8 as a
// whole, but a faithful, simple reading of "each \u escape is one code
// unit".
func encodeUTF16UnitAsUTF8(cp uint32) []byte {
	switch {
	case cp < 0x80:
		return []byte{byte(cp)}
	case cp < 0x800:
		return []byte{
			byte(0xC0 | (cp >> 6)),
			byte(0x80 | (cp & 0x3F)),
		}
	default:
		return []byte{
			byte(0xE0 | (cp >> 12)),
			byte(0x80 | ((cp >> 6) & 0x3F)),
			byte(0x80 | (cp & 0x3F)),
		}
	}
}

// parseMultilineStringBody reads raw bytes, including newlines and without
// any escape processing, until the first run of three quote characters that
// is not itself followed by a fourth. Longer runs peel one quote at a time
// into the content and keep scanning, so "content with four quotes """"
// trailing" still finds the real terminator.
func (p *parser) parseMultilineStringBody() string {
	var buf []byte
	for {
		if p.atEOF() {
			p.errorf("Expected `\"\"\"`, saw EOF")
		}
		if p.peekByteIs('"') && p.peekAtIs(1, '"') && p.peekAtIs(2, '"') {
			if !p.peekAtIs(3, '"') {
				p.advance()
				p.advance()
				p.advance()
				return string(buf)
			}
			buf = append(buf, p.advance())
			continue
		}
		buf = append(buf, p.advance())
	}
}
