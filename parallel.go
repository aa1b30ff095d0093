package meshgo

import (
	"context"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/meshgo/source"
	"github.com/hupe1980/meshgo/vtu"
)

// loadParallel reads every piece of a parallel grid concurrently, welds
// each piece independently and merges the results in declaration order.
// Vertices are welded within a piece only; the merge concatenates pieces
// without clustering across their boundaries.
func loadParallel(ctx context.Context, store source.Store, name string, head *vtu.Document, opts *options) (*Mesh, error) {
	names := make([]string, len(head.PieceRefs))
	for i, ref := range head.PieceRefs {
		names[i] = resolveRef(name, ref)
	}

	if pf, ok := store.(source.Prefetcher); ok && len(names) > 0 {
		err := pf.Prefetch(ctx, names)
		opts.logger.LogPrefetch(ctx, len(names), err)
	}

	// The parent grid declares the property layout every piece must match.
	vshapes := make([]vtu.PropertyShape, len(head.VertexProperties))
	for i, p := range head.VertexProperties {
		vshapes[i] = vtu.PropertyShape{Name: p.Name, NumComponents: p.NumComponents}
	}

	cshapes := make([]vtu.PropertyShape, len(head.CellProperties))
	for i, p := range head.CellProperties {
		cshapes[i] = vtu.PropertyShape{Name: p.Name, NumComponents: p.NumComponents}
	}

	readOpts := []func(*vtu.Options){func(o *vtu.Options) {
		o.VertexProperties = vshapes
		o.CellProperties = cshapes
	}}

	parts := make([]*piecePart, len(names))
	pieceErrs := make([]*PieceError, len(names))

	// Workers record failures in their slot instead of returning an error:
	// a broken piece must not cancel its siblings, and the aggregate needs
	// every failure, not just the first.
	var g errgroup.Group

	if opts.maxConcurrency > 0 {
		g.SetLimit(opts.maxConcurrency)
	}

	for i, pieceName := range names {
		g.Go(func() error {
			start := time.Now()

			part, err := readPiece(ctx, store, pieceName, readOpts, opts)

			opts.metricsCollector.RecordPiece(time.Since(start), err)

			vertices, cells := 0, 0
			if part != nil {
				vertices, cells = len(part.positions)/3, len(part.cellTypes)
			}

			opts.logger.LogPiece(ctx, pieceName, vertices, cells, err)

			if err != nil {
				pieceErrs[i] = &PieceError{Piece: pieceName, Err: err}
				return nil
			}

			parts[i] = part

			return nil
		})
	}

	_ = g.Wait()

	var failed []*PieceError

	for _, pe := range pieceErrs {
		if pe != nil {
			failed = append(failed, pe)
		}
	}

	if len(failed) > 0 {
		return nil, &AggregateError{Pieces: failed}
	}

	pieces := make([]PieceStats, len(parts))
	for i, part := range parts {
		pieces[i] = PieceStats{
			Name:        names[i],
			RawVertices: part.raw,
			Vertices:    len(part.positions) / 3,
			Cells:       len(part.cellTypes),
			Tolerance:   part.tolerance,
		}
	}

	return assembleMesh(mergeParts(head, parts), pieces)
}

// readPiece fetches, parses and welds one piece file.
func readPiece(ctx context.Context, store source.Store, name string, readOpts []func(*vtu.Options), opts *options) (*piecePart, error) {
	if err := opts.resources.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer opts.resources.ReleaseWorker()

	doc, err := readDocument(ctx, store, name, opts, readOpts)
	if err != nil {
		return nil, err
	}

	if doc.Kind != vtu.GridUnstructured {
		return nil, &vtu.StructuralError{Element: "VTKFile", Msg: "piece document is itself a parallel grid"}
	}

	start := time.Now()

	part, err := weldDocument(doc, opts.tolerance)
	if err != nil {
		return nil, err
	}

	unique := len(part.positions) / 3

	opts.metricsCollector.RecordWeld(part.raw, unique, time.Since(start))
	opts.logger.LogWeld(ctx, part.raw, unique, part.tolerance)

	return part, nil
}

// resolveRef resolves a piece reference against the directory of the
// parallel document that declares it. Store names use forward slashes
// regardless of platform; an absolute reference is taken relative to the
// store root.
func resolveRef(parent, ref string) string {
	if path.IsAbs(ref) {
		return strings.TrimPrefix(path.Clean(ref), "/")
	}

	return path.Join(path.Dir(parent), ref)
}
