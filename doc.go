// Package meshgo ingests partitioned VTK XML unstructured grids into a
// single deduplicated shared-vertex mesh.
//
// Simulation writers split hexahedral meshes into per-rank piece files and
// duplicate the vertices along the cuts. Meshgo streams the XML back in,
// welds coincident vertices with a tolerance-based clustering pass and
// rebuilds one mesh whose cells share vertex indices across former piece
// boundaries.
//
// # Quick Start
//
// Local files:
//
//	ctx := context.Background()
//	mesh, _ := meshgo.LoadFile(ctx, "./run/result.pvtu")
//	fmt.Println(mesh.NumVertices(), mesh.NumCells())
//
// Any storage backend through a Store:
//
//	store, _ := s3.NewFromDefaultConfig(ctx, "my-bucket", "runs/42")
//	mesh, _ := meshgo.Load(ctx, store, "result.pvtu")
//
// # Documents
//
// Serial documents (.vtu, UnstructuredGrid) hold the grid inline. Parallel
// documents (.pvtu, PUnstructuredGrid) declare the property layout and
// reference piece files, which are read concurrently and merged in
// declaration order. Supported cells are linear and tri-quadratic
// hexahedra; only the 8 corner nodes enter the mesh.
//
// # Welding
//
// Vertices closer than the tolerance are merged into one canonical vertex
// at the cluster centroid. The default tolerance is scale-relative, about
// one float32 ulp at the mesh extents, and can be overridden per load:
//
//	mesh, _ := meshgo.Load(ctx, store, "result.vtu", meshgo.WithTolerance(1e-6))
//
// Properties are carried over from one witness vertex per cluster, never
// averaged. In parallel loads each piece welds independently; vertices are
// not merged across piece boundaries.
//
// # Failure Model
//
// A load either returns the complete mesh or an error, never a partial
// mesh. When piece files fail, the remaining pieces are still read to
// completion and the returned *AggregateError names every failing piece.
//
// # Key Features
//
//   - Streaming XML parse (ascii and base64 binary, zlib compressed)
//   - kd-tree based vertex welding with deterministic canonical order
//   - Concurrent piece ingestion with deterministic merge order
//   - Pluggable storage (local, in-memory, S3, MinIO, spooled remote)
//   - Load manifests in a version catalog (in-memory, DynamoDB)
//   - Resource controller for memory, worker and bandwidth budgets
package meshgo
