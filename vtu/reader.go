// Package vtu reads VTK XML unstructured grid files.
//
// The package handles serial UnstructuredGrid documents as well as the
// header of parallel PUnstructuredGrid documents. Data arrays may be inline
// ascii or base64 encoded binary, optionally zlib compressed. Numeric
// character data follows a strict whitespace-separated grammar.
//
// ReadDocument returns the raw file content: vertex positions in file
// order, cell types and connectivity, and named per-vertex and per-cell
// properties. Welding coincident vertices into a shared-vertex mesh is the
// caller's concern.
package vtu

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"
	"strings"
)

// GridKind identifies the grid flavor of a document.
type GridKind int

const (
	// GridUnstructured is a serial UnstructuredGrid document carrying its
	// mesh data inline.
	GridUnstructured GridKind = iota

	// GridParallelUnstructured is a parallel PUnstructuredGrid document
	// that references external piece files.
	GridParallelUnstructured
)

// CellType is a VTK cell type code.
type CellType uint32

const (
	// LinearHexahedron is an eight-vertex hexahedral cell.
	LinearHexahedron CellType = 12

	// TriQuadraticHexahedron is a 27-vertex hexahedral cell whose first
	// eight connectivity entries are the corner vertices.
	TriQuadraticHexahedron CellType = 72
)

// IndexCount returns the number of connectivity indices a cell of this type
// consumes, or 0 for unsupported types.
func (t CellType) IndexCount() int {
	switch t {
	case LinearHexahedron:
		return 8
	case TriQuadraticHexahedron:
		return 27
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (t CellType) String() string {
	switch t {
	case LinearHexahedron:
		return "LinearHexahedron"
	case TriQuadraticHexahedron:
		return "TriQuadraticHexahedron"
	default:
		return "CellType(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// PropertyShape declares the name and component count of an expected
// property without any values.
type PropertyShape struct {
	Name          string
	NumComponents int
}

// Property is a named per-vertex or per-cell attribute. Values holds
// NumComponents consecutive float32 components per entity.
type Property struct {
	Name          string
	NumComponents int
	Values        []float32
}

// PieceDecl records the entity counts declared by one Piece element of a
// serial document.
type PieceDecl struct {
	NumPoints int
	NumCells  int
}

// Document is the raw content of a single VTK XML file. For a serial
// unstructured grid all mesh arrays are populated and piece-local
// connectivity has been shifted by the vertex base index of its piece. For a
// parallel grid only PieceRefs and the property declarations are populated.
//
// Positions and property values are raw file contents; vertex deduplication
// happens downstream.
type Document struct {
	Kind GridKind

	// Positions holds the x, y, z components of all vertices in file order.
	Positions []float32

	// VertexProperties and CellProperties are in declaration order.
	VertexProperties []*Property
	CellProperties   []*Property

	CellTypes    []CellType
	Connectivity []uint32

	// Pieces lists the declared entity counts of each Piece element of a
	// serial document, in document order.
	Pieces []PieceDecl

	// PieceRefs lists the Source references of a parallel document, in
	// document order.
	PieceRefs []string
}

// Options configure ReadDocument.
type Options struct {
	// VertexProperties and CellProperties pre-declare the properties the
	// document must provide, as a parallel grid header does for its pieces.
	// When empty, the document's own declarations are used.
	VertexProperties []PropertyShape
	CellProperties   []PropertyShape
}

// ReadDocument reads one VTK XML document from r.
func ReadDocument(r io.Reader, optFns ...func(o *Options)) (*Document, error) {
	var opts Options

	for _, fn := range optFns {
		fn(&opts)
	}

	doc := &Document{}

	for _, s := range opts.VertexProperties {
		doc.VertexProperties = append(doc.VertexProperties, &Property{Name: s.Name, NumComponents: s.NumComponents})
	}

	for _, s := range opts.CellProperties {
		doc.CellProperties = append(doc.CellProperties, &Property{Name: s.Name, NumComponents: s.NumComponents})
	}

	d := &documentReader{
		cur:        NewTokenCursor(r),
		byteOrder:  binary.NativeEndian,
		headerSize: 4,
		doc:        doc,
	}

	if err := d.read(); err != nil {
		return nil, err
	}

	return doc, nil
}

// documentReader drives the element state machine over a token cursor.
type documentReader struct {
	cur *TokenCursor

	// File level attributes. Byte order defaults to the host order and the
	// block header word size to 4 bytes.
	compressed bool
	byteOrder  binary.ByteOrder
	headerSize int
	gridType   string

	doc *Document
}

func (d *documentReader) read() error {
	if err := d.findRootElement(); err != nil {
		return err
	}

	if err := d.readRootAttrs(); err != nil {
		return err
	}

	if d.cur.SelfClosing() {
		return structuralf("VTKFile", "empty VTKFile element")
	}

	if d.gridType == "" {
		return structuralf("VTKFile", "missing type attribute in VTKFile element")
	}

	haveGrid := false

	err := d.forEachChild("VTKFile", func(name string) (bool, error) {
		if haveGrid || name != d.gridType {
			return false, nil
		}

		haveGrid = true

		switch d.gridType {
		case "UnstructuredGrid":
			d.doc.Kind = GridUnstructured

			return true, d.readUnstructuredGrid()
		case "PUnstructuredGrid":
			d.doc.Kind = GridParallelUnstructured

			return true, d.readParallelGrid()
		default:
			return true, structuralf("VTKFile", "unsupported grid type %s", d.gridType)
		}
	})
	if err != nil {
		return err
	}

	if !haveGrid {
		return structuralf("VTKFile", "no %s element found", d.gridType)
	}

	return nil
}

// findRootElement scans forward to the opening VTKFile tag, skipping any
// other top level elements.
func (d *documentReader) findRootElement() error {
	for {
		tag, err := d.cur.NextTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return structuralf("VTKFile", "no VTKFile element found")
			}

			return err
		}

		if tag.Closing {
			continue
		}

		if tag.Name == "VTKFile" {
			return nil
		}

		if err := d.skipChild(tag.Name); err != nil {
			return err
		}
	}
}

func (d *documentReader) readRootAttrs() error {
	for {
		name, value, ok, err := d.cur.NextAttr()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		switch name {
		case "type":
			d.gridType = value
		case "version":
			if value != "0.1" {
				return structuralf("VTKFile", "unsupported VTK file version %s", value)
			}
		case "compressor":
			if value != "vtkZLibDataCompressor" {
				return structuralf("VTKFile", "unsupported binary data compressor %s", value)
			}

			d.compressed = true
		case "byte_order":
			switch value {
			case "LittleEndian":
				d.byteOrder = binary.LittleEndian
			case "BigEndian":
				d.byteOrder = binary.BigEndian
			default:
				return structuralf("VTKFile", "unsupported binary data byte order %s", value)
			}
		case "header-type", "header_type":
			switch value {
			case "UInt32":
				d.headerSize = 4
			case "UInt64":
				d.headerSize = 8
			default:
				return structuralf("VTKFile", "unsupported header type %s", value)
			}
		}
	}
}

// enterElement drains the remaining attributes of the element whose opening
// tag has just been read and rejects self-closing elements.
func (d *documentReader) enterElement(name string) error {
	if err := d.cur.drainAttrs(); err != nil {
		return err
	}

	if d.cur.SelfClosing() {
		return structuralf(name, "empty %s element", name)
	}

	return nil
}

// forEachChild invokes handle for each opening child element until the
// matching closing tag of elem. Handlers that report handled == false leave
// the child to be skipped; handlers that report handled == true must have
// consumed the child completely.
func (d *documentReader) forEachChild(elem string, handle func(name string) (bool, error)) error {
	for {
		tag, err := d.cur.NextTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return structuralf(elem, "unterminated %s element", elem)
			}

			return err
		}

		if tag.Closing {
			if tag.Name != elem {
				return structuralf(elem, "mismatching closing tag %s in %s element", tag.Name, elem)
			}

			return nil
		}

		handled, err := handle(tag.Name)
		if err != nil {
			return err
		}

		if !handled {
			if err := d.skipChild(tag.Name); err != nil {
				return err
			}
		}
	}
}

// skipChild discards the element whose opening tag has just been read,
// including any unread attributes and nested content.
func (d *documentReader) skipChild(name string) error {
	if err := d.cur.drainAttrs(); err != nil {
		return err
	}

	return d.cur.SkipElement(name)
}

func (d *documentReader) readUnstructuredGrid() error {
	if err := d.enterElement("UnstructuredGrid"); err != nil {
		return err
	}

	return d.forEachChild("UnstructuredGrid", func(name string) (bool, error) {
		if name != "Piece" {
			return false, nil
		}

		return true, d.readPiece()
	})
}

func (d *documentReader) readPiece() error {
	numPoints, numCells := 0, 0

	for {
		name, value, ok, err := d.cur.NextAttr()
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		switch name {
		case "NumberOfPoints":
			if numPoints, err = parseCountAttr(name, value); err != nil {
				return err
			}
		case "NumberOfCells":
			if numCells, err = parseCountAttr(name, value); err != nil {
				return err
			}
		}
	}

	if d.cur.SelfClosing() {
		return structuralf("Piece", "empty Piece element")
	}

	// Connectivity read inside this piece refers to the piece's own vertex
	// numbering and is shifted into the document-wide numbering afterwards.
	vertexBase := uint32(len(d.doc.Positions) / 3)
	connBase := len(d.doc.Connectivity)

	var havePoints, havePointData, haveCells, haveCellData bool

	err := d.forEachChild("Piece", func(name string) (bool, error) {
		switch {
		case !havePoints && name == "Points":
			havePoints = true

			return true, d.readPoints(numPoints)
		case !havePointData && name == "PointData":
			havePointData = true

			return true, d.readEntityData(&d.doc.VertexProperties, numPoints, "PointData")
		case !haveCells && name == "Cells":
			haveCells = true

			return true, d.readCells(numCells)
		case !haveCellData && name == "CellData":
			haveCellData = true

			return true, d.readEntityData(&d.doc.CellProperties, numCells, "CellData")
		default:
			return false, nil
		}
	})
	if err != nil {
		return err
	}

	if !havePoints || !haveCells {
		return structuralf("Piece", "no Points or Cells element in Piece element")
	}

	if !havePointData && !haveCellData {
		return structuralf("Piece", "no PointData or CellData elements in Piece element")
	}

	for i := connBase; i < len(d.doc.Connectivity); i++ {
		d.doc.Connectivity[i] += vertexBase
	}

	d.doc.Pieces = append(d.doc.Pieces, PieceDecl{NumPoints: numPoints, NumCells: numCells})

	return nil
}

func parseCountAttr(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, structuralf("Piece", "invalid %s attribute %q in Piece element", name, value)
	}

	return n, nil
}

// readPoints reads the first DataArray of a Points element as vertex
// positions; any further children are skipped.
func (d *documentReader) readPoints(numPoints int) error {
	if err := d.enterElement("Points"); err != nil {
		return err
	}

	havePoints := false

	err := d.forEachChild("Points", func(name string) (bool, error) {
		if havePoints || name != "DataArray" {
			return false, nil
		}

		h, err := d.readArrayHeader()
		if err != nil {
			return true, err
		}

		if h.numComponents != 3 {
			return true, dataArrayf(h.name, "invalid number of components %d in vertex positions", h.numComponents)
		}

		before := len(d.doc.Positions)

		if d.doc.Positions, err = d.readFloatArray(h, d.doc.Positions); err != nil {
			return true, err
		}

		if len(d.doc.Positions)-before != numPoints*3 {
			return true, dataArrayf(h.name, "wrong number of vertices in DataArray element")
		}

		havePoints = true

		return true, nil
	})
	if err != nil {
		return err
	}

	if !havePoints {
		return structuralf("Points", "no DataArray element in Points element")
	}

	return nil
}

// readCells reads the first "connectivity" and "types" DataArray children of
// a Cells element; all other children are skipped. The per-cell index count
// is validated against the cell types during mesh assembly, not here.
func (d *documentReader) readCells(numCells int) error {
	if err := d.enterElement("Cells"); err != nil {
		return err
	}

	haveConnectivity, haveTypes := false, false

	err := d.forEachChild("Cells", func(name string) (bool, error) {
		if name != "DataArray" {
			return false, nil
		}

		h, err := d.readArrayHeader()
		if err != nil {
			return true, err
		}

		switch {
		case !haveConnectivity && h.name == "connectivity":
			if d.doc.Connectivity, err = d.readIndexArray(h, d.doc.Connectivity); err != nil {
				return true, err
			}

			haveConnectivity = true

			return true, nil
		case !haveTypes && h.name == "types":
			var vals []uint32

			if vals, err = d.readIndexArray(h, vals); err != nil {
				return true, err
			}

			if len(vals) != numCells {
				return true, dataArrayf(h.name, `wrong number of cells in "types" DataArray element`)
			}

			for _, v := range vals {
				ct := CellType(v)
				if ct != LinearHexahedron && ct != TriQuadraticHexahedron {
					return true, dataArrayf(h.name, "non-hexahedral cell type %d in grid", v)
				}

				d.doc.CellTypes = append(d.doc.CellTypes, ct)
			}

			haveTypes = true

			return true, nil
		default:
			// Header attributes are already consumed; skip the content.
			return false, nil
		}
	})
	if err != nil {
		return err
	}

	if !haveConnectivity || !haveTypes {
		return structuralf("Cells", "missing DataArray element(s) in Cells element")
	}

	return nil
}

// readEntityData reads a PointData or CellData element. With an empty
// property list every DataArray defines a new property; with a pre-populated
// list every DataArray must match a declared property by name and component
// count, at most one DataArray per property, and all declared properties
// must be provided.
func (d *documentReader) readEntityData(props *[]*Property, numValues int, elem string) error {
	if err := d.enterElement(elem); err != nil {
		return err
	}

	if len(*props) == 0 {
		return d.forEachChild(elem, func(name string) (bool, error) {
			if name != "DataArray" {
				return false, nil
			}

			h, err := d.readArrayHeader()
			if err != nil {
				return true, err
			}

			p := &Property{
				Name:          h.name,
				NumComponents: h.numComponents,
				Values:        make([]float32, 0, numValues*h.numComponents),
			}

			if p.Values, err = d.readFloatArray(h, p.Values); err != nil {
				return true, err
			}

			if len(p.Values) != numValues*h.numComponents {
				return true, dataArrayf(h.name, "wrong number of values in DataArray element for property %s", h.name)
			}

			*props = append(*props, p)

			return true, nil
		})
	}

	read := make([]bool, len(*props))

	err := d.forEachChild(elem, func(name string) (bool, error) {
		if name != "DataArray" {
			return false, nil
		}

		h, err := d.readArrayHeader()
		if err != nil {
			return true, err
		}

		idx := -1

		for i, p := range *props {
			if p.Name == h.name {
				idx = i

				break
			}
		}

		if idx < 0 {
			return true, dataArrayf(h.name, "property %s not found in property list", h.name)
		}

		if read[idx] {
			return true, dataArrayf(h.name, "multiple data arrays for property %s", h.name)
		}

		p := (*props)[idx]

		if h.numComponents != p.NumComponents {
			return true, dataArrayf(h.name, "property %s and data array have mismatching numbers of components", h.name)
		}

		before := len(p.Values)

		if p.Values, err = d.readFloatArray(h, p.Values); err != nil {
			return true, err
		}

		if len(p.Values)-before != numValues*h.numComponents {
			return true, dataArrayf(h.name, "wrong number of values in DataArray element for property %s", h.name)
		}

		read[idx] = true

		return true, nil
	})
	if err != nil {
		return err
	}

	for i, r := range read {
		if !r {
			return dataArrayf((*props)[i].Name, "missing DataArray element(s) in %s element", elem)
		}
	}

	return nil
}

// readParallelGrid collects the property declarations and piece source
// references of a PUnstructuredGrid element. Piece contents are not read
// here.
func (d *documentReader) readParallelGrid() error {
	if err := d.enterElement("PUnstructuredGrid"); err != nil {
		return err
	}

	var havePPointData, havePCellData bool

	return d.forEachChild("PUnstructuredGrid", func(name string) (bool, error) {
		switch {
		case !havePPointData && name == "PPointData":
			havePPointData = true

			return true, d.readParallelData(&d.doc.VertexProperties, "PPointData")
		case !havePCellData && name == "PCellData":
			havePCellData = true

			return true, d.readParallelData(&d.doc.CellProperties, "PCellData")
		case name == "Piece":
			return true, d.readPieceRef()
		default:
			return false, nil
		}
	})
}

// readPieceRef records the Source attribute of a parallel Piece element and
// skips its content.
func (d *documentReader) readPieceRef() error {
	var src string

	for {
		name, value, ok, err := d.cur.NextAttr()
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		if name == "Source" {
			src = value
		}
	}

	if src != "" {
		d.doc.PieceRefs = append(d.doc.PieceRefs, src)
	}

	return d.cur.SkipElement("Piece")
}

// readParallelData turns each PDataArray child into a property declaration
// without reading any values.
func (d *documentReader) readParallelData(props *[]*Property, elem string) error {
	if err := d.enterElement(elem); err != nil {
		return err
	}

	return d.forEachChild(elem, func(name string) (bool, error) {
		if name != "PDataArray" {
			return false, nil
		}

		h, err := d.readArrayHeader()
		if err != nil {
			return true, err
		}

		*props = append(*props, &Property{Name: h.name, NumComponents: h.numComponents})

		return true, d.cur.SkipElement("PDataArray")
	})
}
