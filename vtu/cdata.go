package vtu

import (
	"errors"
	"strconv"
)

// cdataParser scans whitespace-separated numbers from a single character
// data segment. The grammar is strict: a sign must be followed by at least
// one digit, a float needs a digit in its integral or fractional part, an
// exponent marker needs at least one exponent digit, and every value must be
// followed by whitespace or the end of the segment.
//
// The parser keeps a one-character lookahead. Close returns the lookahead to
// the cursor so that scanning can resume at the first unconsumed character.
type cdataParser struct {
	cur  *TokenCursor
	last int
	buf  []byte
}

func newCDataParser(cur *TokenCursor) (*cdataParser, error) {
	p := &cdataParser{cur: cur, buf: make([]byte, 0, 32)}

	var err error
	if p.last, err = cur.ReadData(); err != nil {
		return nil, err
	}

	if err := p.skipWS(false); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *cdataParser) advance() error {
	var err error
	p.last, err = p.cur.ReadData()

	return err
}

// skipWS skips whitespace. With required set, the current character must be
// whitespace or the end of the segment.
func (p *cdataParser) skipWS(required bool) error {
	if required && p.last != EndOfData && !isSpace(byte(p.last)) {
		return grammarf("missing whitespace after value")
	}

	for p.last != EndOfData && isSpace(byte(p.last)) {
		if err := p.advance(); err != nil {
			return err
		}
	}

	return nil
}

// EOCD reports whether the character data segment is exhausted.
func (p *cdataParser) EOCD() bool { return p.last == EndOfData }

func (p *cdataParser) invalidChar() error {
	if p.last == EndOfData {
		return grammarf("unexpected end of data")
	}

	return grammarf("invalid character %q in numeric data", byte(p.last))
}

// readDigits appends consecutive digits to the scratch buffer and returns
// how many were read.
func (p *cdataParser) readDigits() (int, error) {
	n := 0

	for p.last >= '0' && p.last <= '9' {
		p.buf = append(p.buf, byte(p.last))
		n++

		if err := p.advance(); err != nil {
			return n, err
		}
	}

	return n, nil
}

func (p *cdataParser) acceptSign() error {
	if p.last == '+' || p.last == '-' {
		p.buf = append(p.buf, byte(p.last))

		return p.advance()
	}

	return nil
}

// Uint reads an unsigned decimal integer.
func (p *cdataParser) Uint() (uint64, error) {
	p.buf = p.buf[:0]

	n, err := p.readDigits()
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, p.invalidChar()
	}

	v, err := strconv.ParseUint(string(p.buf), 10, 64)
	if err != nil {
		return 0, grammarf("integer value %s out of range", p.buf)
	}

	return v, p.skipWS(true)
}

// Int reads a decimal integer with an optional sign.
func (p *cdataParser) Int() (int64, error) {
	p.buf = p.buf[:0]

	if err := p.acceptSign(); err != nil {
		return 0, err
	}

	n, err := p.readDigits()
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, p.invalidChar()
	}

	v, err := strconv.ParseInt(string(p.buf), 10, 64)
	if err != nil {
		return 0, grammarf("integer value %s out of range", p.buf)
	}

	return v, p.skipWS(true)
}

// Float reads a decimal floating point number with an optional sign,
// fraction and exponent.
func (p *cdataParser) Float() (float64, error) {
	p.buf = p.buf[:0]

	if err := p.acceptSign(); err != nil {
		return 0, err
	}

	intDigits, err := p.readDigits()
	if err != nil {
		return 0, err
	}

	fracDigits := 0

	if p.last == '.' {
		p.buf = append(p.buf, '.')

		if err := p.advance(); err != nil {
			return 0, err
		}

		if fracDigits, err = p.readDigits(); err != nil {
			return 0, err
		}
	}

	if intDigits+fracDigits == 0 {
		return 0, p.invalidChar()
	}

	if p.last == 'e' || p.last == 'E' {
		p.buf = append(p.buf, byte(p.last))

		if err := p.advance(); err != nil {
			return 0, err
		}

		if err := p.acceptSign(); err != nil {
			return 0, err
		}

		expDigits, err := p.readDigits()
		if err != nil {
			return 0, err
		}

		if expDigits == 0 {
			return 0, p.invalidChar()
		}
	}

	v, err := strconv.ParseFloat(string(p.buf), 64)
	if err != nil {
		// Out of range values saturate to ±Inf, matching the pow based
		// conversion they replace.
		if !errors.Is(err, strconv.ErrRange) {
			return 0, grammarf("malformed number %s", p.buf)
		}
	}

	return v, p.skipWS(true)
}

// Finish discards the remainder of the segment.
func (p *cdataParser) Finish() error {
	for p.last != EndOfData {
		if err := p.advance(); err != nil {
			return err
		}
	}

	return nil
}

// Close returns the unconsumed lookahead character to the cursor.
func (p *cdataParser) Close() {
	p.cur.UnreadData(p.last)
	p.last = EndOfData
}
