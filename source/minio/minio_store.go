package minio

import (
	"context"
	"fmt"
	"path"

	"github.com/hupe1980/meshgo/source"
	"github.com/minio/minio-go/v7"
)

// Store implements source.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO document store.
// rootPrefix is prepended to all names (e.g. "results/run-42/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open implements source.Store.
func (s *Store) Open(ctx context.Context, name string) (source.Piece, error) {
	key := s.key(name)

	// Get object info to verify existence and size
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("open %s: %w", name, source.ErrNotFound)
		}

		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	return &minioPiece{
		obj:  obj,
		size: info.Size,
	}, nil
}

func isNotFound(err error) bool {
	errResp := minio.ToErrorResponse(err)
	return errResp.Code == "NoSuchKey" || errResp.Code == "NotFound"
}

// minioPiece implements source.Piece over a streaming object handle.
type minioPiece struct {
	obj  *minio.Object
	size int64
}

func (p *minioPiece) Read(b []byte) (int, error) {
	return p.obj.Read(b)
}

func (p *minioPiece) Size() int64 {
	return p.size
}

func (p *minioPiece) Close() error {
	return p.obj.Close()
}
