package source

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named document does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for opening mesh documents by name. Names use
// forward slashes as separators regardless of the backing store.
type Store interface {
	// Open opens the named document for reading.
	Open(ctx context.Context, name string) (Piece, error)
}

// Piece is a read-only handle to one document.
type Piece interface {
	io.ReadCloser

	// Size returns the size of the document in bytes.
	Size() int64
}

// Prefetcher is an optional interface for stores that can warm documents
// ahead of sequential reads, such as a spool cache in front of object
// storage.
type Prefetcher interface {
	// Prefetch makes the named documents cheap to open. Missing names are
	// not an error here; they surface on Open.
	Prefetch(ctx context.Context, names []string) error
}

// Downloader is an optional interface for stores that can fetch a whole
// document more efficiently than a sequential read, for example with
// concurrent ranged requests.
type Downloader interface {
	// Download returns the full content of the named document.
	Download(ctx context.Context, name string) ([]byte, error)
}
