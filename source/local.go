package source

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/meshgo/internal/mmap"
)

// LocalStore serves documents from a directory tree on the local
// filesystem. Files are memory mapped, so concurrent readers share pages.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open implements Store.
func (s *LocalStore) Open(_ context.Context, name string) (Piece, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	return &localPiece{
		m: m,
		r: bytes.NewReader(m.Data),
	}, nil
}

type localPiece struct {
	m *mmap.File
	r *bytes.Reader
}

func (p *localPiece) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *localPiece) Size() int64 {
	return p.r.Size()
}

func (p *localPiece) Close() error {
	return p.m.Close()
}
