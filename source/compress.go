package source

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType identifies the compression algorithm used for spooled
// documents.
type CompressionType uint8

const (
	// CompressionNone disables compression.
	CompressionNone CompressionType = iota
	// CompressionLZ4 uses LZ4 block compression (fast, moderate ratio).
	CompressionLZ4
	// CompressionZSTD uses zstd compression (slower, better ratio).
	CompressionZSTD
)

// String implements fmt.Stringer.
func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// spoolHeaderSize is the fixed prefix of every spooled document:
// uncompressed size followed by compressed size, both little-endian
// uint32. A compressed size of zero marks data stored verbatim.
const spoolHeaderSize = 8

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
		)
		return dec
	},
}

// compressSpool encodes data for the spool. Documents that do not shrink
// by at least 10% are stored verbatim so decompression never pays for
// incompressible input.
func compressSpool(ctype CompressionType, data []byte) ([]byte, error) {
	if len(data) > maxSpoolSize {
		return nil, fmt.Errorf("document too large to spool: %d bytes", len(data))
	}

	switch ctype {
	case CompressionNone:
		return storeVerbatim(data), nil
	case CompressionLZ4:
		var c lz4.Compressor

		buf := make([]byte, spoolHeaderSize+lz4.CompressBlockBound(len(data)))

		n, err := c.CompressBlock(data, buf[spoolHeaderSize:])
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}

		if n == 0 || n >= incompressibleBound(len(data)) {
			return storeVerbatim(data), nil
		}

		binary.LittleEndian.PutUint32(buf[0:4], uint32(len(data)))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(n))

		return buf[:spoolHeaderSize+n], nil
	case CompressionZSTD:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)

		buf := make([]byte, spoolHeaderSize)
		binary.LittleEndian.PutUint32(buf[0:4], uint32(len(data)))

		buf = enc.EncodeAll(data, buf)

		n := len(buf) - spoolHeaderSize
		if n >= incompressibleBound(len(data)) {
			return storeVerbatim(data), nil
		}

		binary.LittleEndian.PutUint32(buf[4:8], uint32(n))

		return buf, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", ctype)
	}
}

// decompressSpool decodes a spooled document produced by compressSpool.
func decompressSpool(ctype CompressionType, data []byte) ([]byte, error) {
	if len(data) < spoolHeaderSize {
		return nil, fmt.Errorf("spooled document too short: %d bytes", len(data))
	}

	rawSize := binary.LittleEndian.Uint32(data[0:4])
	compSize := binary.LittleEndian.Uint32(data[4:8])
	payload := data[spoolHeaderSize:]

	if compSize == 0 {
		if uint32(len(payload)) != rawSize {
			return nil, fmt.Errorf("spooled document truncated: have %d bytes, want %d", len(payload), rawSize)
		}

		out := make([]byte, rawSize)
		copy(out, payload)

		return out, nil
	}

	if uint32(len(payload)) != compSize {
		return nil, fmt.Errorf("spooled document truncated: have %d bytes, want %d", len(payload), compSize)
	}

	switch ctype {
	case CompressionLZ4:
		out := make([]byte, rawSize)

		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}

		if uint32(n) != rawSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, want %d", n, rawSize)
		}

		return out, nil
	case CompressionZSTD:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}

		if uint32(len(out)) != rawSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, want %d", len(out), rawSize)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %d", ctype)
	}
}

// maxSpoolSize bounds spooled documents to what the uint32 size fields
// can express.
const maxSpoolSize = 1<<32 - 1

func storeVerbatim(data []byte) []byte {
	buf := make([]byte, spoolHeaderSize+len(data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[spoolHeaderSize:], data)

	return buf
}

func incompressibleBound(rawLen int) int {
	return rawLen - rawLen/10
}
