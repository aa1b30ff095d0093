package meshgo_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshgo"
	"github.com/hupe1980/meshgo/catalog"
	"github.com/hupe1980/meshgo/resource"
	"github.com/hupe1980/meshgo/source"
	"github.com/hupe1980/meshgo/vtu"
)

// twoHexVTU holds two adjacent hexahedra written with their shared face
// vertices duplicated, the way partitioned writers emit them: 16 raw
// vertices for 12 distinct corner positions.
const twoHexVTU = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">
  <UnstructuredGrid>
    <Piece NumberOfPoints="16" NumberOfCells="2">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  1 1 0  0 1 0  0 0 1  1 0 1  1 1 1  0 1 1
          1 0 0  2 0 0  2 1 0  1 1 0  1 0 1  2 0 1  2 1 1  1 1 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">
          0 1 2 3 4 5 6 7
          8 9 10 11 12 13 14 15
        </DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12 12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="temperature" format="ascii">
          0 1 1 0 0 1 1 0  1 2 2 1 1 2 2 1
        </DataArray>
      </PointData>
      <CellData>
        <DataArray type="Float32" Name="pressure" format="ascii">10 20</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`

// pieceAVTU is one unit hexahedron at x in [0,1] with a ninth vertex
// duplicating corner 6, so an in-piece weld merges 9 raw vertices to 8.
const pieceAVTU = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="9" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  1 1 0  0 1 0  0 0 1  1 0 1  1 1 1  0 1 1  1 1 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3 4 5 6 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="velocity" NumberOfComponents="3" format="ascii">
          0 0 2  1 2 2  1 2 2  0 0 2  0 0 2  1 2 2  1 2 2  0 0 2  1 2 2
        </DataArray>
      </PointData>
      <CellData>
        <DataArray type="Float32" Name="rank" format="ascii">0</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`

// pieceBVTU is the neighboring hexahedron at x in [1,2]. Its x = 1 face
// coincides with piece A's but lives in a different file.
const pieceBVTU = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="8" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          1 0 0  2 0 0  2 1 0  1 1 0  1 0 1  2 0 1  2 1 1  1 1 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3 4 5 6 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="velocity" NumberOfComponents="3" format="ascii">
          1 2 2  2 4 2  2 4 2  1 2 2  1 2 2  2 4 2  2 4 2  1 2 2
        </DataArray>
      </PointData>
      <CellData>
        <DataArray type="Float32" Name="rank" format="ascii">1</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`

const runPVTU = `<?xml version="1.0"?>
<VTKFile type="PUnstructuredGrid" version="0.1">
  <PUnstructuredGrid GhostLevel="0">
    <PPointData>
      <PDataArray type="Float32" Name="velocity" NumberOfComponents="3"/>
    </PPointData>
    <PCellData>
      <PDataArray type="Float32" Name="rank"/>
    </PCellData>
    <Piece Source="piece_a.vtu"/>
    <Piece Source="piece_b.vtu"/>
  </PUnstructuredGrid>
</VTKFile>
`

func newStore(t *testing.T, docs map[string]string) *source.MemoryStore {
	t.Helper()

	store := source.NewMemoryStore()
	for name, content := range docs {
		store.Put(name, []byte(content))
	}

	return store
}

func TestLoadSingleDocument(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"mesh.vtu": twoHexVTU})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)

	assert.Equal(t, 12, mesh.NumVertices())
	assert.Equal(t, 2, mesh.NumCells())
	assert.Equal(t, 16, mesh.Stats.RawVertices)
	assert.Equal(t, 4, mesh.Stats.DuplicateVertices)

	require.Len(t, mesh.Stats.Pieces, 1)
	assert.Equal(t, "mesh.vtu", mesh.Stats.Pieces[0].Name)
	assert.Equal(t, 16, mesh.Stats.Pieces[0].RawVertices)
	assert.Equal(t, 12, mesh.Stats.Pieces[0].Vertices)
	assert.Equal(t, 2, mesh.Stats.Pieces[0].Cells)
	assert.Greater(t, mesh.Stats.Pieces[0].Tolerance, float32(0))

	min, max := mesh.BoundingBox()
	assert.Equal(t, [3]float32{0, 0, 0}, min)
	assert.Equal(t, [3]float32{2, 1, 1}, max)

	// The two cells were written with duplicated face vertices; after
	// welding they must reference the same four vertices on the x = 1
	// plane.
	used := make(map[uint32]bool)
	for _, v := range mesh.Cells[0].Vertices {
		used[v] = true
	}

	shared := 0

	for _, v := range mesh.Cells[1].Vertices {
		if used[v] {
			shared++
		}
	}

	assert.Equal(t, 4, shared)
}

func TestLoadCornerOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"mesh.vtu": twoHexVTU})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)

	// The file writes each hexahedron face as a ring; the mesh orders
	// corners row by row, so corner k of the unit cell sits at the
	// coordinates spelled by the bits of k.
	cell := mesh.Cells[0]
	assert.Equal(t, meshgo.LinearHexahedron, cell.Type)

	for k := 0; k < 8; k++ {
		want := [3]float32{float32(k & 1), float32((k >> 1) & 1), float32((k >> 2) & 1)}
		assert.Equal(t, want, mesh.Position(int(cell.Vertices[k])), "corner %d", k)
	}
}

func TestLoadSingleProperties(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"mesh.vtu": twoHexVTU})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)

	// Duplicated vertices carry identical values, so whichever member of a
	// cluster supplied the canonical value, it matches the x coordinate the
	// fixture encodes in it.
	temp, ok := mesh.VertexProperty("temperature")
	require.True(t, ok)
	require.Equal(t, 12, temp.Count())

	for i := 0; i < mesh.NumVertices(); i++ {
		assert.Equal(t, mesh.Position(i)[0], temp.Value(i, 0), "vertex %d", i)
	}

	pressure, ok := mesh.CellProperty("pressure")
	require.True(t, ok)
	assert.Equal(t, []float32{10, 20}, pressure.Values)

	_, ok = mesh.VertexProperty("no such property")
	assert.False(t, ok)
}

func TestLoadParallelDocument(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"run/mesh.pvtu":   runPVTU,
		"run/piece_a.vtu": pieceAVTU,
		"run/piece_b.vtu": pieceBVTU,
	})

	mesh, err := meshgo.Load(ctx, store, "run/mesh.pvtu")
	require.NoError(t, err)

	// Each piece welds internally (piece A: 9 raw to 8) but coincident
	// vertices on the piece boundary stay separate.
	assert.Equal(t, 16, mesh.NumVertices())
	assert.Equal(t, 2, mesh.NumCells())
	assert.Equal(t, 17, mesh.Stats.RawVertices)
	assert.Equal(t, 1, mesh.Stats.DuplicateVertices)

	require.Len(t, mesh.Stats.Pieces, 2)
	assert.Equal(t, "run/piece_a.vtu", mesh.Stats.Pieces[0].Name)
	assert.Equal(t, "run/piece_b.vtu", mesh.Stats.Pieces[1].Name)
	assert.Equal(t, 9, mesh.Stats.Pieces[0].RawVertices)
	assert.Equal(t, 8, mesh.Stats.Pieces[0].Vertices)
	assert.Equal(t, 8, mesh.Stats.Pieces[1].RawVertices)

	onBoundary := 0

	for i := 0; i < mesh.NumVertices(); i++ {
		if mesh.Position(i)[0] == 1 {
			onBoundary++
		}
	}

	assert.Equal(t, 8, onBoundary, "boundary vertices must stay duplicated across pieces")

	// Piece B's cell references only piece B's vertex range.
	for _, v := range mesh.Cells[1].Vertices {
		assert.GreaterOrEqual(t, v, uint32(8))
	}

	velocity, ok := mesh.VertexProperty("velocity")
	require.True(t, ok)
	require.Equal(t, 3, velocity.NumComponents)
	require.Equal(t, 16, velocity.Count())

	// The fixtures encode (x, 2x, 2) at every vertex.
	for i := 0; i < mesh.NumVertices(); i++ {
		x := mesh.Position(i)[0]
		assert.Equal(t, x, velocity.Value(i, 0))
		assert.Equal(t, 2*x, velocity.Value(i, 1))
		assert.Equal(t, float32(2), velocity.Value(i, 2))
	}

	rank, ok := mesh.CellProperty("rank")
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, rank.Values)
}

func TestLoadParallelDeterministicMerge(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"mesh.pvtu":   runPVTU,
		"piece_a.vtu": pieceAVTU,
		"piece_b.vtu": pieceBVTU,
	})

	serial, err := meshgo.Load(ctx, store, "mesh.pvtu", meshgo.WithMaxConcurrency(1))
	require.NoError(t, err)

	concurrent, err := meshgo.Load(ctx, store, "mesh.pvtu")
	require.NoError(t, err)

	assert.Equal(t, serial.Positions, concurrent.Positions)
	assert.Equal(t, serial.Cells, concurrent.Cells)
	assert.Equal(t, serial.VertexProperties, concurrent.VertexProperties)
	assert.Equal(t, serial.CellProperties, concurrent.CellProperties)
}

func TestLoadMissingPiece(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"mesh.pvtu": `<?xml version="1.0"?>
<VTKFile type="PUnstructuredGrid" version="0.1">
  <PUnstructuredGrid>
    <PPointData>
      <PDataArray type="Float32" Name="velocity" NumberOfComponents="3"/>
    </PPointData>
    <PCellData>
      <PDataArray type="Float32" Name="rank"/>
    </PCellData>
    <Piece Source="piece_a.vtu"/>
    <Piece Source="missing.vtu"/>
    <Piece Source="piece_b.vtu"/>
  </PUnstructuredGrid>
</VTKFile>
`,
		"piece_a.vtu": pieceAVTU,
		"piece_b.vtu": pieceBVTU,
	})

	metrics := &meshgo.BasicMetricsCollector{}

	mesh, err := meshgo.Load(ctx, store, "mesh.pvtu", meshgo.WithMetricsCollector(metrics))
	require.Error(t, err)
	assert.Nil(t, mesh, "no partial mesh on failure")

	var agg *meshgo.AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Pieces, 1)
	assert.Equal(t, "missing.vtu", agg.Pieces[0].Piece)
	assert.ErrorIs(t, agg.Pieces[0].Err, source.ErrNotFound)

	// The healthy siblings were still read to completion.
	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.PieceCount)
	assert.Equal(t, int64(1), stats.PieceErrors)
	assert.Equal(t, int64(1), stats.LoadErrors)
}

func TestLoadMalformedNumber(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"mesh.vtu": `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="8" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 zero  1 1 0  0 1 0  0 0 1  1 0 1  1 1 1  0 1 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3 4 5 6 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="temperature" format="ascii">0 0 0 0 0 0 0 0</DataArray>
      </PointData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.Error(t, err)
	assert.Nil(t, mesh)

	var ge *vtu.GrammarError
	assert.ErrorAs(t, err, &ge)
}

func TestLoadNotFound(t *testing.T) {
	ctx := context.Background()

	mesh, err := meshgo.Load(ctx, source.NewMemoryStore(), "absent.vtu")
	require.Error(t, err)
	assert.Nil(t, mesh)
	assert.ErrorIs(t, err, meshgo.ErrNotFound)
}

func TestLoadNestedParallel(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"outer.pvtu": `<?xml version="1.0"?>
<VTKFile type="PUnstructuredGrid" version="0.1">
  <PUnstructuredGrid>
    <PPointData>
      <PDataArray type="Float32" Name="velocity" NumberOfComponents="3"/>
    </PPointData>
    <Piece Source="inner.pvtu"/>
  </PUnstructuredGrid>
</VTKFile>
`,
		"inner.pvtu":  runPVTU,
		"piece_a.vtu": pieceAVTU,
		"piece_b.vtu": pieceBVTU,
	})

	_, err := meshgo.Load(ctx, store, "outer.pvtu")
	require.Error(t, err)

	var agg *meshgo.AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Pieces, 1)
	assert.Equal(t, "inner.pvtu", agg.Pieces[0].Piece)

	var se *vtu.StructuralError
	assert.ErrorAs(t, agg.Pieces[0].Err, &se)
}

func TestLoadEmptyParallel(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"empty.pvtu": `<?xml version="1.0"?>
<VTKFile type="PUnstructuredGrid" version="0.1">
  <PUnstructuredGrid>
    <PPointData>
      <PDataArray type="Float32" Name="velocity" NumberOfComponents="3"/>
    </PPointData>
  </PUnstructuredGrid>
</VTKFile>
`})

	mesh, err := meshgo.Load(ctx, store, "empty.pvtu")
	require.NoError(t, err)

	assert.Equal(t, 0, mesh.NumVertices())
	assert.Equal(t, 0, mesh.NumCells())
	assert.Empty(t, mesh.Stats.Pieces)

	// The declared layout survives even without pieces.
	require.Len(t, mesh.VertexProperties, 1)
	assert.Equal(t, "velocity", mesh.VertexProperties[0].Name)
	assert.Empty(t, mesh.VertexProperties[0].Values)
}

func TestLoadTolerance(t *testing.T) {
	ctx := context.Background()

	// A unit hexahedron plus a ninth vertex 0.01 away from corner 7: far
	// apart at the default tolerance, merged at 0.05.
	store := newStore(t, map[string]string{"mesh.vtu": `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="9" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  1 1 0  0 1 0  0 0 1  1 0 1  1 1 1  0 1 1  0 1 1.01
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3 4 5 6 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="temperature" format="ascii">0 0 0 0 0 0 0 0 0</DataArray>
      </PointData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)
	assert.Equal(t, 9, mesh.NumVertices())
	assert.Equal(t, 0, mesh.Stats.DuplicateVertices)

	mesh, err = meshgo.Load(ctx, store, "mesh.vtu", meshgo.WithTolerance(0.05))
	require.NoError(t, err)
	assert.Equal(t, 8, mesh.NumVertices())
	assert.Equal(t, 1, mesh.Stats.DuplicateVertices)
	assert.Equal(t, float32(0.05), mesh.Stats.Pieces[0].Tolerance)
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mesh.vtu"), []byte(twoHexVTU), 0o644))

	mesh, err := meshgo.LoadFile(ctx, filepath.Join(dir, "mesh.vtu"))
	require.NoError(t, err)
	assert.Equal(t, 12, mesh.NumVertices())
	assert.Equal(t, 2, mesh.NumCells())
}

func TestLoadFileParallel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mesh.pvtu"), []byte(runPVTU), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "piece_a.vtu"), []byte(pieceAVTU), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "piece_b.vtu"), []byte(pieceBVTU), 0o644))

	mesh, err := meshgo.LoadFile(ctx, filepath.Join(dir, "mesh.pvtu"))
	require.NoError(t, err)
	assert.Equal(t, 16, mesh.NumVertices())
	assert.Equal(t, 2, mesh.NumCells())
}

func TestLoadCatalogManifest(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{"mesh.vtu": twoHexVTU})
	cat := catalog.NewMemoryCatalog()

	_, err := meshgo.Load(ctx, store, "mesh.vtu", meshgo.WithCatalog(cat, "run-42"))
	require.NoError(t, err)

	_, err = meshgo.Load(ctx, store, "mesh.vtu", meshgo.WithCatalog(cat, "run-42"))
	require.NoError(t, err)

	m, err := cat.Latest(ctx, "run-42")
	require.NoError(t, err)

	assert.Equal(t, uint64(2), m.Version)
	assert.Equal(t, 12, m.TotalVertices)
	assert.Equal(t, 2, m.TotalCells)
	assert.Equal(t, 4, m.DuplicateVertices)
	assert.Equal(t, [3]float32{2, 1, 1}, m.BBoxMax)
	require.Len(t, m.Pieces, 1)
	assert.Equal(t, "mesh.vtu", m.Pieces[0].Name)

	// An empty dataset name falls back to the document name.
	_, err = meshgo.Load(ctx, store, "mesh.vtu", meshgo.WithCatalog(cat, ""))
	require.NoError(t, err)

	m, err = cat.Latest(ctx, "mesh.vtu")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Version)
}

func TestLoadMetrics(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"mesh.pvtu":   runPVTU,
		"piece_a.vtu": pieceAVTU,
		"piece_b.vtu": pieceBVTU,
	})

	metrics := &meshgo.BasicMetricsCollector{}

	_, err := meshgo.Load(ctx, store, "mesh.pvtu", meshgo.WithMetricsCollector(metrics))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(0), stats.LoadErrors)
	assert.Equal(t, int64(2), stats.PieceCount)
	assert.Equal(t, int64(0), stats.PieceErrors)
	assert.Equal(t, int64(2), stats.WeldCount)
	assert.Equal(t, int64(17), stats.WeldRawVertices)
	assert.Equal(t, int64(16), stats.WeldUniqueVertices)
}

func TestLoadResources(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, map[string]string{
		"mesh.pvtu":   runPVTU,
		"piece_a.vtu": pieceAVTU,
		"piece_b.vtu": pieceBVTU,
	})

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   1 << 20,
		MaxWorkers:         1,
		IOLimitBytesPerSec: 1 << 20,
	})

	mesh, err := meshgo.Load(ctx, store, "mesh.pvtu", meshgo.WithResources(rc))
	require.NoError(t, err)
	assert.Equal(t, 16, mesh.NumVertices())

	assert.Equal(t, int64(0), rc.MemoryUsage(), "all piece buffers released")
}

func TestLoadTriQuadratic(t *testing.T) {
	ctx := context.Background()

	// All 27 lattice points of a 2x2x2 cube; the first eight are the
	// corners in file ring order and only they become cell corners.
	store := newStore(t, map[string]string{"mesh.vtu": `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="27" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  2 0 0  2 2 0  0 2 0  0 0 2  2 0 2  2 2 2  0 2 2
          1 0 0  0 1 0  1 1 0  2 1 0  1 2 0
          0 0 1  1 0 1  2 0 1  0 1 1  1 1 1  2 1 1  0 2 1  1 2 1  2 2 1
          1 0 2  0 1 2  1 1 2  2 1 2  1 2 2
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">
          0 1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20 21 22 23 24 25 26
        </DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">72</DataArray>
      </Cells>
      <CellData>
        <DataArray type="Float32" Name="rank" format="ascii">7</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)

	assert.Equal(t, 27, mesh.NumVertices())
	require.Equal(t, 1, mesh.NumCells())

	cell := mesh.Cells[0]
	assert.Equal(t, meshgo.TriQuadraticHexahedron, cell.Type)

	for k := 0; k < 8; k++ {
		want := [3]float32{float32(2 * (k & 1)), float32(2 * ((k >> 1) & 1)), float32(2 * ((k >> 2) & 1))}
		assert.Equal(t, want, mesh.Position(int(cell.Vertices[k])), "corner %d", k)
	}
}

func TestPropertySlices(t *testing.T) {
	ctx := context.Background()

	// velocity encodes (3i, 4i, 0) at vertex i, so the magnitude slice is
	// exactly 5i.
	store := newStore(t, map[string]string{"mesh.vtu": `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="8" NumberOfCells="1">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  1 1 0  0 1 0  0 0 1  1 0 1  1 1 1  0 1 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">0 1 2 3 4 5 6 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">12</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="velocity" NumberOfComponents="3" format="ascii">
          0 0 0  3 4 0  6 8 0  9 12 0  12 16 0  15 20 0  18 24 0  21 28 0
        </DataArray>
        <DataArray type="Float32" Name="temperature" format="ascii">0 1 2 3 4 5 6 7</DataArray>
      </PointData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`})

	mesh, err := meshgo.Load(ctx, store, "mesh.vtu")
	require.NoError(t, err)

	velocity, ok := mesh.VertexProperty("velocity")
	require.True(t, ok)

	require.Equal(t, 4, velocity.SliceCount())
	assert.Equal(t, "velocity X", velocity.SliceName(0))
	assert.Equal(t, "velocity Y", velocity.SliceName(1))
	assert.Equal(t, "velocity Z", velocity.SliceName(2))
	assert.Equal(t, "velocity Magnitude", velocity.SliceName(3))

	for i := 0; i < 8; i++ {
		assert.Equal(t, float32(3*i), velocity.Slice(0)[i])
		assert.Equal(t, float32(4*i), velocity.Slice(1)[i])
		assert.Equal(t, float32(0), velocity.Slice(2)[i])
		assert.Equal(t, float32(5*i), velocity.Slice(3)[i])
	}

	temp, ok := mesh.VertexProperty("temperature")
	require.True(t, ok)

	require.Equal(t, 1, temp.SliceCount())
	assert.Equal(t, "temperature", temp.SliceName(0))
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5, 6, 7}, temp.Slice(0))
}
