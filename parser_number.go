// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package relocfg

import "math"

// parseNumber validates and decodes a JSON number per spec.md §4.3's
// grammar: an optional '-', an integer part that is either a lone '0' or a
// nonzero digit followed by digits, an optional '.' fraction of one or more
// digits, and an optional 'e'/'E' exponent with an optional sign and one or
// more digits. Every check runs before the corresponding digit run is
// consumed, so "00", "0e", "0.", "0.e1" and "0.0ee" all fail as "Bad number
// format" at the point the grammar breaks rather than after silently
// accepting a prefix.
func (p *parser) parseNumber() Loc {
	neg := false
	if p.peekByteIs('-') {
		neg = true
		p.advance()
	}

	c, ok := p.peekByteOK()
	if !ok || !isDigit(c) {
		p.errorf("Bad number format")
	}

	intPart := 0.0
	if c == '0' {
		p.advance()
		if nc, ok := p.peekByteOK(); ok && isDigit(nc) {
			p.errorf("Bad number format")
		}
	} else {
		for {
			c, ok := p.peekByteOK()
			if !ok || !isDigit(c) {
				break
			}
			intPart = intPart*10 + float64(c-'0')
			p.advance()
		}
	}

	fracPart, fracDiv := 0.0, 1.0
	if p.peekByteIs('.') {
		p.advance()
		nc, ok := p.peekByteOK()
		if !ok || !isDigit(nc) {
			p.errorf("Bad number format")
		}
		for {
			c, ok := p.peekByteOK()
			if !ok || !isDigit(c) {
				break
			}
			fracPart = fracPart*10 + float64(c-'0')
			fracDiv *= 10
			p.advance()
		}
	}

	expSign, exp := 1, 0
	if c, ok := p.peekByteOK(); ok && (c == 'e' || c == 'E') {
		p.advance()
		if sc, ok := p.peekByteOK(); ok && (sc == '+' || sc == '-') {
			if sc == '-' {
				expSign = -1
			}
			p.advance()
		}
		nc, ok := p.peekByteOK()
		if !ok || !isDigit(nc) {
			p.errorf("Bad number format")
		}
		for {
			c, ok := p.peekByteOK()
			if !ok || !isDigit(c) {
				break
			}
			exp = exp*10 + int(c-'0')
			p.advance()
		}
	}

	val := intPart + fracPart/fracDiv
	if neg {
		val = -val
	}
	if exp != 0 {
		val *= math.Pow(10, float64(expSign*exp))
	}
	return p.d.AddNumber(val)
}
