package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/meshgo/source"
)

// Store implements source.Store for S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore creates a new S3 document store.
// rootPrefix is prepended to all names (e.g. "results/run-42/").
func NewStore(client *s3.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewFromDefaultConfig creates a store with a client built from the
// default AWS credential and region chain.
func NewFromDefaultConfig(ctx context.Context, bucket, rootPrefix string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open implements source.Store.
func (s *Store) Open(ctx context.Context, name string) (source.Piece, error) {
	key := s.key(name)

	// Get metadata to verify existence and size
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("open %s: %w", name, source.ErrNotFound)
		}

		return nil, err
	}

	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("open %s: %w", name, source.ErrNotFound)
		}

		return nil, err
	}

	return &s3Piece{
		body: obj.Body,
		size: aws.ToInt64(head.ContentLength),
	}, nil
}

// Download implements source.Downloader. The transfer manager splits the
// object into concurrent ranged requests.
func (s *Store) Download(ctx context.Context, name string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)

	downloader := manager.NewDownloader(s.client)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	}); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("download %s: %w", name, source.ErrNotFound)
		}

		return nil, err
	}

	return buf.Bytes(), nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var nsk *types.NoSuchKey

	return errors.As(err, &nsk)
}

// s3Piece implements source.Piece over a streaming object body.
type s3Piece struct {
	body io.ReadCloser
	size int64
}

func (p *s3Piece) Read(b []byte) (int, error) {
	return p.body.Read(b)
}

func (p *s3Piece) Size() int64 {
	return p.size
}

func (p *s3Piece) Close() error {
	return p.body.Close()
}
