package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// SpoolStoreOptions configures a SpoolStore.
type SpoolStoreOptions struct {
	// Compression selects the codec for spooled documents.
	Compression CompressionType

	// PrefetchConcurrency limits parallel remote fetches during Prefetch.
	PrefetchConcurrency int
}

// SpoolStore caches remote documents in a local spool directory, with
// optional compression. Reads hit the spool first and fall back to the
// remote store on a miss; fetched documents are spooled for the next
// reader. Spool writes use rename for atomicity, so concurrent misses on
// the same document are safe and at worst fetch it twice.
type SpoolStore struct {
	remote Store
	dir    string
	ctype  CompressionType
	limit  int
}

// NewSpoolStore creates a spool in dir for documents from remote.
func NewSpoolStore(remote Store, dir string, optFns ...func(o *SpoolStoreOptions)) (*SpoolStore, error) {
	opts := SpoolStoreOptions{
		Compression:         CompressionZSTD,
		PrefetchConcurrency: 16,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.PrefetchConcurrency <= 0 {
		opts.PrefetchConcurrency = 16
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}

	return &SpoolStore{
		remote: remote,
		dir:    dir,
		ctype:  opts.Compression,
		limit:  opts.PrefetchConcurrency,
	}, nil
}

// Open implements Store.
func (s *SpoolStore) Open(ctx context.Context, name string) (Piece, error) {
	if data, ok := s.readSpool(name); ok {
		return &memoryPiece{r: bytes.NewReader(data)}, nil
	}

	data, err := s.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	return &memoryPiece{r: bytes.NewReader(data)}, nil
}

// Prefetch implements Prefetcher. It fetches the named documents that are
// not yet spooled. Names missing on the remote are skipped; they fail on
// Open instead.
func (s *SpoolStore) Prefetch(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	// Limit concurrency to avoid FD exhaustion or rate limits.
	g.SetLimit(s.limit)

	for _, name := range names {
		if s.spooled(name) {
			continue
		}

		g.Go(func() error {
			_, err := s.fetch(ctx, name)
			if errors.Is(err, ErrNotFound) {
				return nil
			}

			return err
		})
	}

	return g.Wait()
}

// spoolPath maps a document name to its spool file, preserving the
// directory structure of the name.
func (s *SpoolStore) spoolPath(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name)+".spool")
}

func (s *SpoolStore) spooled(name string) bool {
	_, err := os.Stat(s.spoolPath(name))
	return err == nil
}

// readSpool returns the decoded document if it is spooled. A corrupt
// spool file is removed and reported as a miss.
func (s *SpoolStore) readSpool(name string) ([]byte, bool) {
	path := s.spoolPath(name)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			_ = os.Remove(path)
		}

		return nil, false
	}

	data, err := decompressSpool(s.ctype, raw)
	if err != nil {
		_ = os.Remove(path)
		return nil, false
	}

	return data, true
}

// fetch reads a document from the remote store and spools it. Spool
// write failures are ignored; the spool is a cache, not critical.
func (s *SpoolStore) fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := s.readRemote(ctx, name)
	if err != nil {
		return nil, err
	}

	if encoded, err := compressSpool(s.ctype, data); err == nil {
		s.writeSpool(name, encoded)
	}

	return data, nil
}

func (s *SpoolStore) readRemote(ctx context.Context, name string) ([]byte, error) {
	if d, ok := s.remote.(Downloader); ok {
		return d.Download(ctx, name)
	}

	p, err := s.remote.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	data, err := io.ReadAll(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return data, nil
}

func (s *SpoolStore) writeSpool(name string, encoded []byte) {
	path := s.spoolPath(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-spool-*")
	if err != nil {
		return
	}
	tmpName := tmp.Name()

	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(encoded); err != nil {
		_ = tmp.Close()
		return
	}

	if err := tmp.Close(); err != nil {
		return
	}

	_ = os.Rename(tmpName, path)
}
