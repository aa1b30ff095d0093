package vtu

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// base64Text adapts the cursor's character data to an io.Reader over the raw
// base64 alphabet. It ends at the first character outside the alphabet,
// leaving that character for the caller; '=' padding is deliberately outside
// the alphabet so that the header/body separator stays in the stream.
type base64Text struct {
	cur  *TokenCursor
	done bool
}

func isBase64(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/':
		return true
	default:
		return false
	}
}

// Read implements io.Reader.
func (t *base64Text) Read(p []byte) (int, error) {
	if t.done {
		return 0, io.EOF
	}

	n := 0

	for n < len(p) {
		ch, err := t.cur.ReadData()
		if err != nil {
			return n, err
		}

		if ch == EndOfData || !isBase64(byte(ch)) {
			t.cur.UnreadData(ch)
			t.done = true

			if n == 0 {
				return 0, io.EOF
			}

			return n, nil
		}

		p[n] = byte(ch)
		n++
	}

	return n, nil
}

// blockDecoder reads the binary encoding of a DataArray: a base64 block
// header, a literal "==" separator, and a base64 body holding the (possibly
// zlib compressed) value bytes.
type blockDecoder struct {
	cur        *TokenCursor
	byteOrder  binary.ByteOrder
	headerSize int
	compressed bool
}

func (d *blockDecoder) readHeaderWord(r io.Reader) (uint64, error) {
	var buf [8]byte

	b := buf[:d.headerSize]
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, grammarf("truncated block header")
	}

	if d.headerSize == 8 {
		return d.byteOrder.Uint64(b), nil
	}

	return uint64(d.byteOrder.Uint32(b)), nil
}

// readBlock decodes one binary data block and returns the raw value bytes.
func (d *blockDecoder) readBlock(name string) ([]byte, error) {
	if err := d.skipLeadingSpace(); err != nil {
		return nil, err
	}

	header := base64.NewDecoder(base64.RawStdEncoding, &base64Text{cur: d.cur})

	numBlocks, blockSize, lastBlockSize := uint64(1), uint64(0), uint64(0)

	if d.compressed {
		var err error

		if numBlocks, err = d.readHeaderWord(header); err != nil {
			return nil, err
		}

		if blockSize, err = d.readHeaderWord(header); err != nil {
			return nil, err
		}

		if lastBlockSize, err = d.readHeaderWord(header); err != nil {
			return nil, err
		}

		// The per-block compressed sizes are consumed even when the block
		// partitioning is later rejected.
		for i := uint64(0); i < numBlocks; i++ {
			if _, err := d.readHeaderWord(header); err != nil {
				return nil, err
			}
		}
	} else {
		size, err := d.readHeaderWord(header)
		if err != nil {
			return nil, err
		}

		blockSize, lastBlockSize = size, size
	}

	if err := d.readSeparator(); err != nil {
		return nil, err
	}

	if numBlocks != 1 || lastBlockSize != blockSize {
		return nil, dataArrayf(name, "multi-block binary data is not supported")
	}

	var body io.Reader = base64.NewDecoder(base64.RawStdEncoding, &base64Text{cur: d.cur})

	if d.compressed {
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, &DataArrayError{Name: name, Msg: fmt.Sprintf("invalid compressed data: %v", err), cause: err}
		}
		defer zr.Close()

		body = zr
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &DataArrayError{Name: name, Msg: fmt.Sprintf("invalid binary data: %v", err), cause: err}
	}

	return data, nil
}

func (d *blockDecoder) skipLeadingSpace() error {
	for {
		ch, err := d.cur.ReadData()
		if err != nil {
			return err
		}

		if ch == EndOfData {
			return nil
		}

		if !isSpace(byte(ch)) {
			d.cur.UnreadData(ch)

			return nil
		}
	}
}

// readSeparator consumes the "==" between the block header and the body.
func (d *blockDecoder) readSeparator() error {
	for i := 0; i < 2; i++ {
		ch, err := d.cur.ReadData()
		if err != nil {
			return err
		}

		if ch != '=' {
			return grammarf("malformed block header padding")
		}
	}

	return nil
}
