package meshgo

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/hupe1980/meshgo/catalog"
	"github.com/hupe1980/meshgo/source"
	"github.com/hupe1980/meshgo/vtu"
)

// Load reads the named grid document from store and returns the assembled
// shared-vertex mesh.
//
// A serial document (.vtu) is parsed, welded and assembled directly. A
// parallel document (.pvtu) has its piece files read concurrently, each
// welded on its own, and the pieces merged in declaration order; relative
// piece references resolve against the document's directory within the
// store.
//
// On failure no partial mesh is returned. If one or more piece files fail,
// the remaining pieces are still read to completion and the error is an
// *AggregateError naming every failing piece.
func Load(ctx context.Context, store source.Store, name string, optFns ...Option) (*Mesh, error) {
	opts := applyOptions(optFns)

	start := time.Now()

	mesh, err := load(ctx, store, name, &opts)

	duration := time.Since(start)

	err = translateError(err)

	opts.metricsCollector.RecordLoad(duration, err)

	vertices, cells := 0, 0
	if mesh != nil {
		vertices, cells = mesh.NumVertices(), mesh.NumCells()
	}

	opts.logger.LogLoad(ctx, name, vertices, cells, err)

	if err != nil {
		return nil, err
	}

	recordManifest(ctx, name, mesh, &opts)

	return mesh, nil
}

// LoadFile loads a grid document from the local filesystem. Piece
// references of a parallel document resolve against the file's directory.
func LoadFile(ctx context.Context, path string, optFns ...Option) (*Mesh, error) {
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	return Load(ctx, source.NewLocalStore(dir), file, optFns...)
}

func load(ctx context.Context, store source.Store, name string, opts *options) (*Mesh, error) {
	doc, err := readDocument(ctx, store, name, opts, nil)
	if err != nil {
		return nil, err
	}

	if doc.Kind == vtu.GridParallelUnstructured {
		return loadParallel(ctx, store, name, doc, opts)
	}

	return assembleSingle(ctx, name, doc, opts)
}

// readDocument opens and parses one document, accounting the file size
// against the memory budget for the duration of the parse.
func readDocument(ctx context.Context, store source.Store, name string, opts *options, readOpts []func(*vtu.Options)) (*vtu.Document, error) {
	piece, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer piece.Close()

	size := piece.Size()

	if err := opts.resources.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	defer opts.resources.ReleaseMemory(size)

	return vtu.ReadDocument(opts.resources.WrapReader(ctx, piece), readOpts...)
}

func assembleSingle(ctx context.Context, name string, doc *vtu.Document, opts *options) (*Mesh, error) {
	start := time.Now()

	part, err := weldDocument(doc, opts.tolerance)
	if err != nil {
		return nil, err
	}

	unique := len(part.positions) / 3

	opts.metricsCollector.RecordWeld(part.raw, unique, time.Since(start))
	opts.logger.LogWeld(ctx, part.raw, unique, part.tolerance)

	pieces := []PieceStats{{
		Name:        name,
		RawVertices: part.raw,
		Vertices:    unique,
		Cells:       len(part.cellTypes),
		Tolerance:   part.tolerance,
	}}

	return assembleMesh(part, pieces)
}

// recordManifest writes a manifest of the finished load to the configured
// catalog. A lost version race is retried with a freshly computed version;
// a persistently failing catalog does not fail the load.
func recordManifest(ctx context.Context, name string, mesh *Mesh, opts *options) {
	if opts.catalog == nil {
		return
	}

	dataset := opts.dataset
	if dataset == "" {
		dataset = name
	}

	m := &catalog.Manifest{
		Dataset:           dataset,
		TotalVertices:     mesh.NumVertices(),
		TotalCells:        mesh.NumCells(),
		DuplicateVertices: mesh.Stats.DuplicateVertices,
		BBoxMin:           mesh.Stats.BBoxMin,
		BBoxMax:           mesh.Stats.BBoxMax,
	}

	for _, ps := range mesh.Stats.Pieces {
		m.Pieces = append(m.Pieces, catalog.PieceInfo{Name: ps.Name, Vertices: ps.Vertices, Cells: ps.Cells})
	}

	var err error

	for attempt := 0; attempt < 3; attempt++ {
		if err = opts.catalog.Put(ctx, m); !errors.Is(err, catalog.ErrConcurrentUpdate) {
			break
		}
	}

	opts.logger.LogCatalog(ctx, dataset, m.Version, err)
}
