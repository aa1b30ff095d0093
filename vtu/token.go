package vtu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// EndOfData is returned by ReadData when the current character data segment
// is exhausted, which happens at the start of the next markup tag or at the
// end of the input.
const EndOfData = -1

// Tag is a single markup tag produced by TokenCursor.NextTag.
type Tag struct {
	// Name is the element name.
	Name string

	// Closing is true for closing tags (</Name>).
	Closing bool
}

// TokenCursor is a forward-only tokenizer over an XML-shaped byte stream. It
// alternates between two modes: markup reads (NextTag, NextAttr) and
// character data reads (ReadData). It performs no document validation beyond
// basic tag syntax; nesting rules are enforced by the callers.
//
// The cursor keeps a single pushed-back data character so that numeric and
// base64 scanners can return their one-character lookahead to the stream.
type TokenCursor struct {
	r *bufio.Reader

	// pushback is a single un-consumed data byte, or EndOfData when empty.
	pushback int

	// inTag is true between an opening tag name and the '>' that ends the
	// tag, while attributes remain to be read.
	inTag bool

	// selfClosing records whether the most recent opening tag ended with
	// "/>". It is valid once NextAttr has reported no more attributes.
	selfClosing bool
}

// NewTokenCursor returns a cursor reading from r.
func NewTokenCursor(r io.Reader) *TokenCursor {
	return &TokenCursor{
		r:        bufio.NewReaderSize(r, 32*1024),
		pushback: EndOfData,
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (c *TokenCursor) readByte() (byte, error) {
	if c.pushback != EndOfData {
		b := byte(c.pushback)
		c.pushback = EndOfData

		return b, nil
	}

	return c.r.ReadByte()
}

// ReadData returns the next character of the current character data segment,
// or EndOfData when the segment ends at the next markup tag or at the end of
// the input. The terminating '<' is not consumed, so a subsequent NextTag
// call sees the tag. Calling ReadData again after EndOfData at a tag keeps
// returning EndOfData.
func (c *TokenCursor) ReadData() (int, error) {
	b, err := c.readByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return EndOfData, nil
		}

		return EndOfData, err
	}

	if b == '<' {
		c.pushback = int(b)

		return EndOfData, nil
	}

	return int(b), nil
}

// UnreadData pushes back a character previously obtained from ReadData so
// the next ReadData call returns it again. Passing EndOfData is a no-op.
// Only a single character of pushback is kept.
func (c *TokenCursor) UnreadData(ch int) {
	if ch == EndOfData {
		return
	}

	c.pushback = ch
}

// NextTag scans forward to the next markup tag, discarding any intervening
// character data, and returns it. Processing instructions, comments and
// declarations are skipped. For an opening tag the cursor stops after the
// element name so that NextAttr can read the attribute list; for a closing
// tag the whole tag is consumed. At the end of the input it returns io.EOF.
func (c *TokenCursor) NextTag() (Tag, error) {
	for {
		b, err := c.readByte()
		if err != nil {
			return Tag{}, err
		}

		if b != '<' {
			continue
		}

		b, err = c.readByte()
		if err != nil {
			return Tag{}, err
		}

		switch b {
		case '?':
			if err := c.skipUntil("?>"); err != nil {
				return Tag{}, err
			}
		case '!':
			if err := c.skipDeclaration(); err != nil {
				return Tag{}, err
			}
		case '/':
			return c.readClosingTag()
		default:
			return c.readOpeningTag(b)
		}
	}
}

// skipUntil consumes input through the first occurrence of the marker.
func (c *TokenCursor) skipUntil(marker string) error {
	matched := 0

	for matched < len(marker) {
		b, err := c.readByte()
		if err != nil {
			return err
		}

		switch {
		case b == marker[matched]:
			matched++
		case b == marker[0]:
			matched = 1
		default:
			matched = 0
		}
	}

	return nil
}

// skipDeclaration consumes a "<!" construct: comments through "-->",
// anything else through the next '>'.
func (c *TokenCursor) skipDeclaration() error {
	b, err := c.readByte()
	if err != nil {
		return err
	}

	if b == '-' {
		b2, err := c.readByte()
		if err != nil {
			return err
		}

		if b2 == '-' {
			return c.skipUntil("-->")
		}
	}

	if b == '>' {
		return nil
	}

	return c.skipUntil(">")
}

func (c *TokenCursor) readClosingTag() (Tag, error) {
	var sb strings.Builder

	for {
		b, err := c.readByte()
		if err != nil {
			return Tag{}, err
		}

		if b == '>' {
			break
		}

		if !isSpace(b) {
			sb.WriteByte(b)
		}
	}

	if sb.Len() == 0 {
		return Tag{}, &StructuralError{Msg: "malformed closing tag"}
	}

	c.inTag = false

	return Tag{Name: sb.String(), Closing: true}, nil
}

func (c *TokenCursor) readOpeningTag(first byte) (Tag, error) {
	var sb strings.Builder

	sb.WriteByte(first)

	for {
		b, err := c.readByte()
		if err != nil {
			return Tag{}, err
		}

		switch {
		case isSpace(b):
			c.inTag = true
			c.selfClosing = false

			return Tag{Name: sb.String()}, nil
		case b == '>':
			c.inTag = false
			c.selfClosing = false

			return Tag{Name: sb.String()}, nil
		case b == '/':
			if err := c.expectByte('>'); err != nil {
				return Tag{}, err
			}

			c.inTag = false
			c.selfClosing = true

			return Tag{Name: sb.String()}, nil
		default:
			sb.WriteByte(b)
		}
	}
}

func (c *TokenCursor) expectByte(want byte) error {
	b, err := c.readByte()
	if err != nil {
		return err
	}

	if b != want {
		return &StructuralError{Msg: fmt.Sprintf("malformed tag: expected %q, found %q", want, b)}
	}

	return nil
}

// NextAttr returns the next attribute of the current opening tag. It reports
// ok == false once the attribute list is exhausted, after which SelfClosing
// tells whether the tag ended with "/>".
func (c *TokenCursor) NextAttr() (name, value string, ok bool, err error) {
	if !c.inTag {
		return "", "", false, nil
	}

	b, err := c.skipTagSpace()
	if err != nil {
		return "", "", false, err
	}

	switch b {
	case '>':
		c.inTag = false

		return "", "", false, nil
	case '/':
		if err := c.expectByte('>'); err != nil {
			return "", "", false, err
		}

		c.inTag = false
		c.selfClosing = true

		return "", "", false, nil
	}

	name, err = c.readAttrName(b)
	if err != nil {
		return "", "", false, err
	}

	value, err = c.readAttrValue()
	if err != nil {
		return "", "", false, err
	}

	return name, value, true, nil
}

func (c *TokenCursor) skipTagSpace() (byte, error) {
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}

		if !isSpace(b) {
			return b, nil
		}
	}
}

func (c *TokenCursor) readAttrName(first byte) (string, error) {
	var sb strings.Builder

	sb.WriteByte(first)

	for {
		b, err := c.readByte()
		if err != nil {
			return "", err
		}

		if b == '=' {
			return sb.String(), nil
		}

		if isSpace(b) {
			b, err = c.skipTagSpace()
			if err != nil {
				return "", err
			}

			if b != '=' {
				return "", &StructuralError{Msg: fmt.Sprintf("malformed attribute %s: missing '='", sb.String())}
			}

			return sb.String(), nil
		}

		sb.WriteByte(b)
	}
}

func (c *TokenCursor) readAttrValue() (string, error) {
	quote, err := c.skipTagSpace()
	if err != nil {
		return "", err
	}

	if quote != '"' && quote != '\'' {
		return "", &StructuralError{Msg: "malformed attribute: value is not quoted"}
	}

	var sb strings.Builder

	for {
		b, err := c.readByte()
		if err != nil {
			return "", err
		}

		if b == quote {
			return sb.String(), nil
		}

		sb.WriteByte(b)
	}
}

// SelfClosing reports whether the most recent opening tag was self-closing.
// The result is valid once NextAttr has reported the end of the attribute
// list.
func (c *TokenCursor) SelfClosing() bool { return c.selfClosing }

// SkipElement consumes the remainder of the element named name, whose
// opening tag and attributes have already been read, including all nested
// children and the matching closing tag. Misnested closing tags and
// premature end of input are reported as structural errors.
func (c *TokenCursor) SkipElement(name string) error {
	if c.selfClosing {
		return nil
	}

	stack := []string{name}

	for len(stack) > 0 {
		tag, err := c.NextTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return structuralf(stack[len(stack)-1], "unterminated %s element", stack[len(stack)-1])
			}

			return err
		}

		if tag.Closing {
			top := stack[len(stack)-1]
			if tag.Name != top {
				return structuralf(top, "unexpected closing tag %s inside %s element", tag.Name, top)
			}

			stack = stack[:len(stack)-1]

			continue
		}

		if err := c.drainAttrs(); err != nil {
			return err
		}

		if !c.selfClosing {
			stack = append(stack, tag.Name)
		}
	}

	return nil
}

func (c *TokenCursor) drainAttrs() error {
	for {
		_, _, ok, err := c.NextAttr()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}
	}
}
