// Package catalog records completed mesh ingests as versioned manifests.
//
// A Manifest captures what was assembled from one dataset: the pieces
// read, vertex and cell totals, how many duplicate vertices were welded
// away, and the bounding box. Versions per dataset are monotonically
// increasing; concurrent writers race on the next version and the loser
// receives ErrConcurrentUpdate.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a dataset has no recorded manifest.
var ErrNotFound = errors.New("manifest not found")

// ErrConcurrentUpdate is returned when another writer committed the same
// version first. The caller may retry.
var ErrConcurrentUpdate = errors.New("concurrent catalog update detected")

// PieceInfo records per-piece counts for one ingested document.
type PieceInfo struct {
	Name     string `json:"name"`
	Vertices int    `json:"vertices"`
	Cells    int    `json:"cells"`
}

// Manifest records one completed mesh ingest.
type Manifest struct {
	Dataset           string      `json:"dataset"`
	Version           uint64      `json:"version,omitempty"`
	Pieces            []PieceInfo `json:"pieces,omitempty"`
	TotalVertices     int         `json:"total_vertices"`
	TotalCells        int         `json:"total_cells"`
	DuplicateVertices int         `json:"duplicate_vertices"`
	BBoxMin           [3]float32  `json:"bbox_min"`
	BBoxMax           [3]float32  `json:"bbox_max"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Catalog stores ingest manifests.
//
// Implementations must be safe for concurrent use.
type Catalog interface {
	// Put commits m as the next version of its dataset and sets
	// m.Version. A zero CreatedAt is set to the commit time.
	Put(ctx context.Context, m *Manifest) error

	// Latest returns the manifest with the highest version for the
	// dataset, or ErrNotFound.
	Latest(ctx context.Context, dataset string) (*Manifest, error)

	// Versions returns the committed versions for the dataset in
	// ascending order. An unknown dataset yields an empty slice.
	Versions(ctx context.Context, dataset string) ([]uint64, error)
}
