package source

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in memory. It is primarily useful for tests
// and for assembling small meshes from generated data.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string][]byte),
	}
}

// Put stores a document under the given name, replacing any previous
// content. The data is copied.
func (s *MemoryStore) Put(name string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[name] = buf
}

// Delete removes the named document. Deleting a missing name is a no-op.
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, name)
}

// Open implements Store.
func (s *MemoryStore) Open(_ context.Context, name string) (Piece, error) {
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("open %s: %w", name, ErrNotFound)
	}

	return &memoryPiece{r: bytes.NewReader(data)}, nil
}

type memoryPiece struct {
	r *bytes.Reader
}

func (p *memoryPiece) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *memoryPiece) Size() int64 {
	return p.r.Size()
}

func (p *memoryPiece) Close() error {
	return nil
}
