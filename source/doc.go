// Package source provides storage abstraction for mesh documents.
//
// Store is the interface for opening documents by name. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory documents for tests and generated data
//   - SpoolStore: compressed local cache in front of another store
//   - s3.Store: Amazon S3 with parallel ranged downloads
//   - minio.Store: MinIO and S3-compatible endpoints
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx context.Context, name string) (Piece, error)
//	}
//
// Stores that can warm a cache ahead of sequential reads should also
// implement Prefetcher. Stores that can fetch whole documents with
// concurrent ranged requests should implement Downloader; SpoolStore
// prefers it over a sequential read when filling the spool.
package source
