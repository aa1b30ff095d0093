package meshgo

import (
	"fmt"

	"github.com/hupe1980/meshgo/vtu"
	"github.com/hupe1980/meshgo/weld"
)

// piecePart is the welded contribution of one piece file: canonical
// positions, remapped connectivity and witness-copied properties, ready to
// be concatenated with sibling pieces.
type piecePart struct {
	positions []float32
	conn      []uint32
	cellTypes []vtu.CellType
	vprops    []*vtu.Property
	cprops    []*vtu.Property

	raw       int
	tolerance float32
}

// weldDocument welds the vertices of a single parsed grid and remaps its
// connectivity onto the canonical indices. A tolerance <= 0 selects the
// scale-relative default derived from the document's bounding box.
func weldDocument(doc *vtu.Document, tolerance float32) (*piecePart, error) {
	raw := len(doc.Positions) / 3
	numCells := len(doc.CellTypes)

	// A piece read against declared properties may lack the data element
	// entirely, leaving a declared property without values.
	for _, p := range doc.VertexProperties {
		if len(p.Values) != raw*p.NumComponents {
			return nil, &vtu.DataArrayError{Name: p.Name, Msg: fmt.Sprintf("wrong number of values in DataArray element for property %s", p.Name)}
		}
	}

	for _, p := range doc.CellProperties {
		if len(p.Values) != numCells*p.NumComponents {
			return nil, &vtu.DataArrayError{Name: p.Name, Msg: fmt.Sprintf("wrong number of values in DataArray element for property %s", p.Name)}
		}
	}

	c, err := weld.New(doc.Positions)
	if err != nil {
		return nil, err
	}

	if tolerance <= 0 {
		tolerance = c.DefaultTolerance()
	}

	unique := c.Cluster(tolerance)

	conn := make([]uint32, len(doc.Connectivity))

	for i, v := range doc.Connectivity {
		if int(v) >= raw {
			return nil, &vtu.DataArrayError{Name: "connectivity", Msg: fmt.Sprintf("vertex index %d out of range", v)}
		}

		conn[i] = uint32(c.CanonicalIndex(int(v)))
	}

	return &piecePart{
		positions: c.AppendPositions(make([]float32, 0, unique*3)),
		conn:      conn,
		cellTypes: doc.CellTypes,
		vprops:    witnessCopy(c, doc.VertexProperties),
		cprops:    doc.CellProperties,
		raw:       raw,
		tolerance: tolerance,
	}, nil
}

// witnessCopy projects raw per-vertex properties onto the canonical
// vertices. Each canonical vertex takes the values of its cluster's witness
// vertex; values are never averaged across a cluster.
func witnessCopy(c *weld.Clusterer, props []*vtu.Property) []*vtu.Property {
	out := make([]*vtu.Property, len(props))
	unique := c.NumMerged()

	for j, p := range props {
		nc := p.NumComponents
		vals := make([]float32, unique*nc)

		for m := 0; m < unique; m++ {
			w := c.WitnessIndex(m)
			copy(vals[m*nc:(m+1)*nc], p.Values[w*nc:(w+1)*nc])
		}

		out[j] = &vtu.Property{Name: p.Name, NumComponents: nc, Values: vals}
	}

	return out
}

// mergeParts concatenates welded pieces in declaration order, shifting each
// piece's connectivity by the vertex count of the pieces before it.
// Properties start from the parent grid's declarations so an empty load
// still carries the declared names.
func mergeParts(head *vtu.Document, parts []*piecePart) *piecePart {
	out := &piecePart{
		vprops: make([]*vtu.Property, len(head.VertexProperties)),
		cprops: make([]*vtu.Property, len(head.CellProperties)),
	}

	for j, p := range head.VertexProperties {
		out.vprops[j] = &vtu.Property{Name: p.Name, NumComponents: p.NumComponents}
	}

	for j, p := range head.CellProperties {
		out.cprops[j] = &vtu.Property{Name: p.Name, NumComponents: p.NumComponents}
	}

	var base uint32

	for _, part := range parts {
		out.positions = append(out.positions, part.positions...)

		for j := range out.vprops {
			out.vprops[j].Values = append(out.vprops[j].Values, part.vprops[j].Values...)
		}

		for _, v := range part.conn {
			out.conn = append(out.conn, base+v)
		}

		out.cellTypes = append(out.cellTypes, part.cellTypes...)

		for j := range out.cprops {
			out.cprops[j].Values = append(out.cprops[j].Values, part.cprops[j].Values...)
		}

		out.raw += part.raw
		base += uint32(len(part.positions) / 3)
	}

	return out
}

// assembleMesh builds the final mesh from a welded part: cells are cut from
// the connectivity stream with their corners brought into canonical order,
// and the bounding box is computed over the welded positions.
func assembleMesh(part *piecePart, pieces []PieceStats) (*Mesh, error) {
	cells := make([]Cell, 0, len(part.cellTypes))
	cursor := 0

	for _, t := range part.cellTypes {
		n := t.IndexCount()
		if n == 0 {
			return nil, &vtu.DataArrayError{Name: "types", Msg: fmt.Sprintf("non-hexahedral cell type %d in grid", t)}
		}

		if cursor+n > len(part.conn) {
			return nil, &vtu.DataArrayError{Name: "connectivity", Msg: "wrong number of indices for the declared cells"}
		}

		cell := Cell{Type: t}

		// Only the 8 corner nodes of a cell become mesh corners; the
		// edge, face and body nodes of tri-quadratic cells are dropped.
		for i := 0; i < 8; i++ {
			cell.Vertices[hexCornerOrder[i]] = part.conn[cursor+i]
		}

		cursor += n

		cells = append(cells, cell)
	}

	if cursor != len(part.conn) {
		return nil, &vtu.DataArrayError{Name: "connectivity", Msg: "wrong number of indices for the declared cells"}
	}

	numVertices := len(part.positions) / 3

	var bboxMin, bboxMax [3]float32

	if numVertices > 0 {
		bboxMin = [3]float32{part.positions[0], part.positions[1], part.positions[2]}
		bboxMax = bboxMin

		for i := 1; i < numVertices; i++ {
			for j := 0; j < 3; j++ {
				v := part.positions[i*3+j]
				if v < bboxMin[j] {
					bboxMin[j] = v
				}

				if v > bboxMax[j] {
					bboxMax[j] = v
				}
			}
		}
	}

	vprops := make([]Property, len(part.vprops))
	for i, p := range part.vprops {
		vprops[i] = Property{Name: p.Name, NumComponents: p.NumComponents, Values: p.Values}
	}

	cprops := make([]Property, len(part.cprops))
	for i, p := range part.cprops {
		cprops[i] = Property{Name: p.Name, NumComponents: p.NumComponents, Values: p.Values}
	}

	return &Mesh{
		Positions:        part.positions,
		Cells:            cells,
		VertexProperties: vprops,
		CellProperties:   cprops,
		Stats: Stats{
			Pieces:            pieces,
			RawVertices:       part.raw,
			DuplicateVertices: part.raw - numVertices,
			BBoxMin:           bboxMin,
			BBoxMax:           bboxMax,
		},
	}, nil
}
