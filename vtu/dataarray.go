package vtu

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

type componentKind uint8

const (
	kindInt componentKind = iota
	kindUint
	kindFloat
)

// componentType is the parsed form of a DataArray type attribute such as
// "Float32" or "UInt64".
type componentType struct {
	kind componentKind
	size int // bytes per component value
}

// parseComponentType parses a type attribute value. The value is a letter
// prefix (Int, UInt or Float) followed by a size in bits; anything after the
// size digits is ignored.
func parseComponentType(name, s string) (componentType, error) {
	i := 0
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}

	prefix := s[:i]

	bits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		bits = bits*10 + int(s[i]-'0')
		i++
	}

	if bits != 8 && bits != 16 && bits != 32 && bits != 64 {
		return componentType{}, dataArrayf(name, "invalid type size %d", bits)
	}

	ct := componentType{size: bits / 8}

	switch prefix {
	case "Int":
		ct.kind = kindInt
	case "UInt":
		ct.kind = kindUint
	case "Float":
		ct.kind = kindFloat

		if bits < 32 {
			return componentType{}, dataArrayf(name, "invalid floating-point type size %d", bits)
		}
	default:
		return componentType{}, dataArrayf(name, "invalid type name %s", s)
	}

	return ct, nil
}

// arrayHeader is the parsed attribute set of a DataArray or PDataArray
// element.
type arrayHeader struct {
	name          string
	ctype         componentType
	hasType       bool
	numTuples     int
	numComponents int
	format        string
}

// readArrayHeader consumes the attribute list of the DataArray element whose
// opening tag has just been read. Unknown attributes are skipped. A missing
// type attribute is tolerated here because PDataArray headers only
// contribute a name and component count; it is rejected when values are
// read. After the call, the cursor's SelfClosing result is valid.
func (d *documentReader) readArrayHeader() (arrayHeader, error) {
	h := arrayHeader{numComponents: 1}

	for {
		name, value, ok, err := d.cur.NextAttr()
		if err != nil {
			return h, err
		}

		if !ok {
			break
		}

		switch name {
		case "Name":
			h.name = value
		case "type":
			ct, err := parseComponentType(h.name, value)
			if err != nil {
				return h, err
			}

			h.ctype = ct
			h.hasType = true
		case "NumberOfTuples":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return h, dataArrayf(h.name, "invalid number of tuples %q", value)
			}

			h.numTuples = n
		case "NumberOfComponents":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return h, dataArrayf(h.name, "invalid number of components %q", value)
			}

			h.numComponents = n
		case "format":
			h.format = value
		}
	}

	if h.numComponents < 1 {
		return h, dataArrayf(h.name, "invalid number of components %d", h.numComponents)
	}

	return h, nil
}

// ensureArrayData verifies that the DataArray element has character data
// content: the opening tag was not self-closing and the next token is not a
// tag.
func (d *documentReader) ensureArrayData(name string) error {
	if d.cur.SelfClosing() {
		return dataArrayf(name, "empty DataArray element")
	}

	ch, err := d.cur.ReadData()
	if err != nil {
		return err
	}

	if ch == EndOfData {
		return dataArrayf(name, "empty DataArray element")
	}

	d.cur.UnreadData(ch)

	return nil
}

// finishDataArray consumes the closing DataArray tag after the values have
// been read.
func (d *documentReader) finishDataArray() error {
	tag, err := d.cur.NextTag()
	if err != nil || !tag.Closing || tag.Name != "DataArray" {
		return structuralf("DataArray", "unterminated DataArray element")
	}

	return nil
}

// readFloatArray reads the values of a DataArray element as float32 and
// appends them to dst. When the header declares a tuple count, exactly
// numTuples*numComponents values are read and the rest of the character data
// is discarded; otherwise values are read until the data is exhausted.
func (d *documentReader) readFloatArray(h arrayHeader, dst []float32) ([]float32, error) {
	if !h.hasType {
		return dst, dataArrayf(h.name, "missing type attribute")
	}

	if err := d.ensureArrayData(h.name); err != nil {
		return dst, err
	}

	switch h.format {
	case "ascii":
		p, err := newCDataParser(d.cur)
		if err != nil {
			return dst, err
		}
		defer p.Close()

		readValue := func() error {
			switch h.ctype.kind {
			case kindInt:
				v, err := p.Int()
				if err != nil {
					return err
				}

				dst = append(dst, float32(v))
			case kindUint:
				v, err := p.Uint()
				if err != nil {
					return err
				}

				dst = append(dst, float32(v))
			default:
				v, err := p.Float()
				if err != nil {
					return err
				}

				dst = append(dst, float32(v))
			}

			return nil
		}

		if err := readASCIIValues(p, h, readValue); err != nil {
			return dst, err
		}
	case "binary":
		raw, err := d.newBlockDecoder().readBlock(h.name)
		if err != nil {
			return dst, err
		}

		dst, err = appendFloatValues(dst, raw, h.ctype, d.byteOrder, h.name)
		if err != nil {
			return dst, err
		}
	case "appended":
		return dst, dataArrayf(h.name, `"appended" data array format not supported`)
	default:
		return dst, dataArrayf(h.name, "invalid data array format %s", h.format)
	}

	return dst, d.finishDataArray()
}

// readIndexArray reads the values of a DataArray element as uint32 indices
// and appends them to dst. Values outside the uint32 range are rejected.
func (d *documentReader) readIndexArray(h arrayHeader, dst []uint32) ([]uint32, error) {
	if !h.hasType {
		return dst, dataArrayf(h.name, "missing type attribute")
	}

	if err := d.ensureArrayData(h.name); err != nil {
		return dst, err
	}

	switch h.format {
	case "ascii":
		p, err := newCDataParser(d.cur)
		if err != nil {
			return dst, err
		}
		defer p.Close()

		readValue := func() error {
			switch h.ctype.kind {
			case kindInt:
				v, err := p.Int()
				if err != nil {
					return err
				}

				if v < 0 || v > math.MaxUint32 {
					return dataArrayf(h.name, "integer value %d out of range", v)
				}

				dst = append(dst, uint32(v))
			case kindUint:
				v, err := p.Uint()
				if err != nil {
					return err
				}

				if v > math.MaxUint32 {
					return dataArrayf(h.name, "integer value %d out of range", v)
				}

				dst = append(dst, uint32(v))
			default:
				v, err := p.Float()
				if err != nil {
					return err
				}

				if v < 0 || v > math.MaxUint32 {
					return dataArrayf(h.name, "value %g out of range", v)
				}

				dst = append(dst, uint32(v))
			}

			return nil
		}

		if err := readASCIIValues(p, h, readValue); err != nil {
			return dst, err
		}
	case "binary":
		raw, err := d.newBlockDecoder().readBlock(h.name)
		if err != nil {
			return dst, err
		}

		dst, err = appendIndexValues(dst, raw, h.ctype, d.byteOrder, h.name)
		if err != nil {
			return dst, err
		}
	case "appended":
		return dst, dataArrayf(h.name, `"appended" data array format not supported`)
	default:
		return dst, dataArrayf(h.name, "invalid data array format %s", h.format)
	}

	return dst, d.finishDataArray()
}

// readASCIIValues drives the per-value callback over the character data,
// bounded by the declared tuple count when one is present.
func readASCIIValues(p *cdataParser, h arrayHeader, readValue func() error) error {
	if h.numTuples > 0 {
		for t := 0; t < h.numTuples; t++ {
			for j := 0; j < h.numComponents; j++ {
				if err := readValue(); err != nil {
					return err
				}
			}
		}

		return p.Finish()
	}

	for !p.EOCD() {
		for j := 0; j < h.numComponents; j++ {
			if err := readValue(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (d *documentReader) newBlockDecoder() *blockDecoder {
	return &blockDecoder{
		cur:        d.cur,
		byteOrder:  d.byteOrder,
		headerSize: d.headerSize,
		compressed: d.compressed,
	}
}

// appendFloatValues expands the raw bytes of a binary block into float32
// values in the declared byte order.
func appendFloatValues(dst []float32, raw []byte, ct componentType, bo binary.ByteOrder, name string) ([]float32, error) {
	if len(raw)%ct.size != 0 {
		return dst, dataArrayf(name, "truncated binary data")
	}

	n := len(raw) / ct.size

	switch ct.kind {
	case kindFloat:
		if ct.size == 4 {
			for i := 0; i < n; i++ {
				dst = append(dst, math.Float32frombits(bo.Uint32(raw[i*4:])))
			}
		} else {
			for i := 0; i < n; i++ {
				dst = append(dst, float32(math.Float64frombits(bo.Uint64(raw[i*8:]))))
			}
		}
	case kindUint:
		for i := 0; i < n; i++ {
			dst = append(dst, float32(readUnsignedWord(raw, i, ct.size, bo)))
		}
	case kindInt:
		for i := 0; i < n; i++ {
			dst = append(dst, float32(readSignedWord(raw, i, ct.size, bo)))
		}
	}

	return dst, nil
}

// appendIndexValues expands the raw bytes of a binary block into uint32
// indices in the declared byte order, rejecting values outside the uint32
// range.
func appendIndexValues(dst []uint32, raw []byte, ct componentType, bo binary.ByteOrder, name string) ([]uint32, error) {
	if len(raw)%ct.size != 0 {
		return dst, dataArrayf(name, "truncated binary data")
	}

	n := len(raw) / ct.size

	switch ct.kind {
	case kindFloat:
		for i := 0; i < n; i++ {
			var v float64
			if ct.size == 4 {
				v = float64(math.Float32frombits(bo.Uint32(raw[i*4:])))
			} else {
				v = math.Float64frombits(bo.Uint64(raw[i*8:]))
			}

			if v < 0 || v > math.MaxUint32 {
				return dst, dataArrayf(name, "value %g out of range", v)
			}

			dst = append(dst, uint32(v))
		}
	case kindUint:
		for i := 0; i < n; i++ {
			v := readUnsignedWord(raw, i, ct.size, bo)
			if v > math.MaxUint32 {
				return dst, dataArrayf(name, "integer value %d out of range", v)
			}

			dst = append(dst, uint32(v))
		}
	case kindInt:
		for i := 0; i < n; i++ {
			v := readSignedWord(raw, i, ct.size, bo)
			if v < 0 || v > math.MaxUint32 {
				return dst, dataArrayf(name, "integer value %d out of range", v)
			}

			dst = append(dst, uint32(v))
		}
	}

	return dst, nil
}

func readUnsignedWord(raw []byte, i, size int, bo binary.ByteOrder) uint64 {
	switch size {
	case 1:
		return uint64(raw[i])
	case 2:
		return uint64(bo.Uint16(raw[i*2:]))
	case 4:
		return uint64(bo.Uint32(raw[i*4:]))
	default:
		return bo.Uint64(raw[i*8:])
	}
}

func readSignedWord(raw []byte, i, size int, bo binary.ByteOrder) int64 {
	switch size {
	case 1:
		return int64(int8(raw[i]))
	case 2:
		return int64(int16(bo.Uint16(raw[i*2:])))
	case 4:
		return int64(int32(bo.Uint32(raw[i*4:])))
	default:
		return int64(bo.Uint64(raw[i*8:]))
	}
}
