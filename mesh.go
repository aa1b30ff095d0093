package meshgo

import (
	"fmt"
	"math"

	"github.com/hupe1980/meshgo/vtu"
)

// CellType identifies the VTK cell type of a mesh cell.
type CellType = vtu.CellType

const (
	// LinearHexahedron is an 8-node hexahedral cell.
	LinearHexahedron = vtu.LinearHexahedron
	// TriQuadraticHexahedron is a 27-node hexahedral cell. Only its 8
	// corner nodes are kept in the mesh.
	TriQuadraticHexahedron = vtu.TriQuadraticHexahedron
)

// hexCornerOrder maps a cell's connectivity slot to the canonical corner
// index: the file walks each hexahedron face as a ring, the canonical
// order walks it row by row.
var hexCornerOrder = [8]int{0, 1, 3, 2, 4, 5, 7, 6}

// Cell is one hexahedral cell of the mesh. Vertices holds the canonical
// corner indices into the mesh vertex arrays.
type Cell struct {
	Type     CellType
	Vertices [8]uint32
}

// Property is a named per-vertex or per-cell attribute with NumComponents
// values per entity. Values is laid out entity-major, so entity i occupies
// Values[i*NumComponents : (i+1)*NumComponents].
type Property struct {
	Name          string
	NumComponents int
	Values        []float32
}

// Count returns the number of entities the property covers.
func (p *Property) Count() int {
	if p.NumComponents <= 0 {
		return 0
	}

	return len(p.Values) / p.NumComponents
}

// Value returns component c of entity i.
func (p *Property) Value(i, c int) float32 {
	return p.Values[i*p.NumComponents+c]
}

// SliceCount returns the number of scalar slices the property expands to.
// Scalars expand to themselves. Three-component vectors expand to four
// slices: the three components plus the Euclidean magnitude. Any other
// component count expands to one slice per component.
func (p *Property) SliceCount() int {
	switch p.NumComponents {
	case 1:
		return 1
	case 3:
		return 4
	default:
		return p.NumComponents
	}
}

// SliceName returns the display name of scalar slice i.
func (p *Property) SliceName(i int) string {
	if p.NumComponents == 1 {
		return p.Name
	}

	if p.NumComponents == 3 {
		switch i {
		case 0:
			return p.Name + " X"
		case 1:
			return p.Name + " Y"
		case 2:
			return p.Name + " Z"
		case 3:
			return p.Name + " Magnitude"
		}
	}

	return fmt.Sprintf("%s %d", p.Name, i)
}

// Slice materializes scalar slice i with one value per entity. For scalar
// properties slice 0 aliases Values; every other slice is newly allocated.
func (p *Property) Slice(i int) []float32 {
	if p.NumComponents == 1 && i == 0 {
		return p.Values
	}

	n := p.Count()
	out := make([]float32, n)

	if p.NumComponents == 3 && i == 3 {
		for e := 0; e < n; e++ {
			x := float64(p.Values[e*3])
			y := float64(p.Values[e*3+1])
			z := float64(p.Values[e*3+2])
			out[e] = float32(math.Sqrt(x*x + y*y + z*z))
		}

		return out
	}

	for e := 0; e < n; e++ {
		out[e] = p.Values[e*p.NumComponents+i]
	}

	return out
}

// PieceStats records the contribution of one source file to the mesh.
type PieceStats struct {
	// Name is the store name the piece was read from.
	Name string
	// RawVertices is the vertex count before welding.
	RawVertices int
	// Vertices is the canonical vertex count after welding.
	Vertices int
	// Cells is the number of cells the piece contributed.
	Cells int
	// Tolerance is the welding tolerance applied to this piece.
	Tolerance float32
}

// Stats summarizes how the mesh was assembled.
type Stats struct {
	Pieces []PieceStats
	// RawVertices is the total vertex count across all pieces before
	// welding.
	RawVertices int
	// DuplicateVertices is the number of raw vertices welded away.
	DuplicateVertices int
	BBoxMin           [3]float32
	BBoxMax           [3]float32
}

// Mesh is a shared-vertex hexahedral mesh. Cell corners reference the
// canonical vertex arrays; coincident input vertices have been welded, so
// cells that share a face share vertex indices.
type Mesh struct {
	// Positions holds interleaved x y z coordinates per canonical vertex.
	Positions []float32

	Cells []Cell

	VertexProperties []Property
	CellProperties   []Property

	Stats Stats
}

// NumVertices returns the number of canonical vertices.
func (m *Mesh) NumVertices() int { return len(m.Positions) / 3 }

// NumCells returns the number of cells.
func (m *Mesh) NumCells() int { return len(m.Cells) }

// Position returns the coordinates of canonical vertex i.
func (m *Mesh) Position(i int) [3]float32 {
	return [3]float32{m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2]}
}

// VertexProperty returns the named per-vertex property.
func (m *Mesh) VertexProperty(name string) (*Property, bool) {
	return findProperty(m.VertexProperties, name)
}

// CellProperty returns the named per-cell property.
func (m *Mesh) CellProperty(name string) (*Property, bool) {
	return findProperty(m.CellProperties, name)
}

func findProperty(props []Property, name string) (*Property, bool) {
	for i := range props {
		if props[i].Name == name {
			return &props[i], true
		}
	}

	return nil, false
}

// BoundingBox returns the axis-aligned bounding box of the canonical
// vertices. Both corners are zero for an empty mesh.
func (m *Mesh) BoundingBox() (min, max [3]float32) {
	return m.Stats.BBoxMin, m.Stats.BBoxMax
}
