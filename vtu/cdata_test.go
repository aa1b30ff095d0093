package vtu

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, data string) *cdataParser {
	t.Helper()

	p, err := newCDataParser(NewTokenCursor(strings.NewReader(data)))
	require.NoError(t, err)

	return p
}

func TestCDataParserUint(t *testing.T) {
	p := newTestParser(t, "  0 42\t7\n")

	for _, want := range []uint64{0, 42, 7} {
		v, err := p.Uint()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	assert.True(t, p.EOCD())
}

func TestCDataParserInt(t *testing.T) {
	p := newTestParser(t, "-17 +8 0")

	for _, want := range []int64{-17, 8, 0} {
		v, err := p.Int()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	assert.True(t, p.EOCD())
}

func TestCDataParserFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3.25", 3.25},
		{".5", 0.5},
		{"5.", 5},
		{"-0.125", -0.125},
		{"1e3", 1000},
		{"1.5E-2", 0.015},
		{"+2e+2", 200},
		{"7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := newTestParser(t, tt.in)

			v, err := p.Float()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.True(t, p.EOCD())
		})
	}
}

func TestCDataParserFloatSaturates(t *testing.T) {
	p := newTestParser(t, "1e400 -1e400 1e-400")

	v, err := p.Float()
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))

	v, err = p.Float()
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, -1))

	v, err = p.Float()
	require.NoError(t, err)
	assert.Equal(t, float64(0), v)
}

func TestCDataParserErrors(t *testing.T) {
	uintRead := func(p *cdataParser) error { _, err := p.Uint(); return err }
	intRead := func(p *cdataParser) error { _, err := p.Int(); return err }
	floatRead := func(p *cdataParser) error { _, err := p.Float(); return err }

	tests := []struct {
		name    string
		in      string
		read    func(p *cdataParser) error
		wantMsg string
	}{
		{"sign on unsigned", "-1", uintRead, "invalid character"},
		{"sign without digits", "- 1", intRead, "invalid character"},
		{"sign at end", "-", intRead, "unexpected end of data"},
		{"missing whitespace", "1x", uintRead, "missing whitespace"},
		{"double dot", "1.2.3", floatRead, "missing whitespace"},
		{"dot without digits", ".", floatRead, "unexpected end of data"},
		{"empty exponent", "1e 3", floatRead, "invalid character"},
		{"exponent at end", "1e", floatRead, "unexpected end of data"},
		{"exponent sign only", "1e+", floatRead, "unexpected end of data"},
		{"word", "nan", floatRead, "invalid character"},
		{"uint out of range", "18446744073709551616", uintRead, "out of range"},
		{"int out of range", "9223372036854775808", intRead, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(t, tt.in)

			err := tt.read(p)
			require.Error(t, err)

			var ge *GrammarError
			require.ErrorAs(t, err, &ge)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCDataParserEmptySegment(t *testing.T) {
	p := newTestParser(t, "")

	assert.True(t, p.EOCD())

	_, err := p.Uint()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected end of data")
}

func TestCDataParserValueAtTag(t *testing.T) {
	// A value directly before the closing tag is complete without trailing
	// whitespace.
	cur := NewTokenCursor(strings.NewReader("41</DataArray>"))

	p, err := newCDataParser(cur)
	require.NoError(t, err)

	v, err := p.Uint()
	require.NoError(t, err)
	assert.Equal(t, uint64(41), v)
	assert.True(t, p.EOCD())

	p.Close()

	tag, err := cur.NextTag()
	require.NoError(t, err)
	assert.Equal(t, Tag{Name: "DataArray", Closing: true}, tag)
}

func TestCDataParserClose(t *testing.T) {
	cur := NewTokenCursor(strings.NewReader("12 abc"))

	p, err := newCDataParser(cur)
	require.NoError(t, err)

	v, err := p.Uint()
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	p.Close()

	// The lookahead character is back in the stream.
	ch, err := cur.ReadData()
	require.NoError(t, err)
	assert.Equal(t, int('a'), ch)
}

func TestCDataParserFinish(t *testing.T) {
	cur := NewTokenCursor(strings.NewReader("1 2 3 4</DataArray>"))

	p, err := newCDataParser(cur)
	require.NoError(t, err)

	v, err := p.Uint()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	require.NoError(t, p.Finish())
	assert.True(t, p.EOCD())

	p.Close()

	tag, err := cur.NextTag()
	require.NoError(t, err)
	assert.Equal(t, Tag{Name: "DataArray", Closing: true}, tag)
}
