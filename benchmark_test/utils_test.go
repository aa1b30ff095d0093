package benchmark_test

import (
	"fmt"
	"strings"
)

// hexCorners enumerates the corner offsets of one hexahedral cell in the
// ring order the file format uses: the bottom face counterclockwise, then
// the top face.
var hexCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// latticeVTU renders an nx by ny by nz cell lattice as a serial document the
// way partitioned writers emit geometry: every cell carries its own eight
// corner vertices, so interior corners are duplicated up to eight times.
func latticeVTU(nx, ny, nz int, origin [3]float32) string {
	numCells := nx * ny * nz
	numPoints := numCells * 8

	var pts, conn, types, temp, region strings.Builder

	idx := 0

	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, c := range hexCorners {
					x := origin[0] + float32(i+c[0])
					y := origin[1] + float32(j+c[1])
					z := origin[2] + float32(k+c[2])

					fmt.Fprintf(&pts, "%g %g %g\n", x, y, z)
					fmt.Fprintf(&temp, "%g ", x+y+z)
					fmt.Fprintf(&conn, "%d ", idx)
					idx++
				}

				conn.WriteByte('\n')
				types.WriteString("12 ")
				fmt.Fprintf(&region, "%d ", idx/8-1)
			}
		}
	}

	return fmt.Sprintf(`<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1">
  <UnstructuredGrid>
    <Piece NumberOfPoints="%d" NumberOfCells="%d">
      <Points>
        <DataArray type="Float32" Name="Points" NumberOfComponents="3" format="ascii">
%s</DataArray>
      </Points>
      <Cells>
        <DataArray type="Int32" Name="connectivity" format="ascii">
%s</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">%s</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float32" Name="temperature" format="ascii">%s</DataArray>
      </PointData>
      <CellData>
        <DataArray type="Float32" Name="region" format="ascii">%s</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`, numPoints, numCells, pts.String(), conn.String(), types.String(), temp.String(), region.String())
}

// latticePVTU renders a parallel index document referencing the given piece
// files, declaring the properties latticeVTU emits.
func latticePVTU(pieces []string) string {
	var refs strings.Builder

	for _, p := range pieces {
		fmt.Fprintf(&refs, "    <Piece Source=%q/>\n", p)
	}

	return fmt.Sprintf(`<?xml version="1.0"?>
<VTKFile type="PUnstructuredGrid" version="0.1">
  <PUnstructuredGrid GhostLevel="0">
    <PPointData>
      <PDataArray type="Float32" Name="temperature"/>
    </PPointData>
    <PCellData>
      <PDataArray type="Float32" Name="region"/>
    </PCellData>
%s  </PUnstructuredGrid>
</VTKFile>
`, refs.String())
}
