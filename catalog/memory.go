package catalog

import (
	"context"
	"sync"
	"time"
)

// MemoryCatalog keeps manifests in memory. It is useful for tests and
// for embedded use where no shared catalog exists.
type MemoryCatalog struct {
	mu       sync.RWMutex
	datasets map[string][]*Manifest
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		datasets: make(map[string][]*Manifest),
	}
}

// Put implements Catalog. Writes are serialized, so no version conflict
// can occur.
func (c *MemoryCatalog) Put(_ context.Context, m *Manifest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m.Version = uint64(len(c.datasets[m.Dataset])) + 1
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	stored := *m
	c.datasets[m.Dataset] = append(c.datasets[m.Dataset], &stored)

	return nil
}

// Latest implements Catalog.
func (c *MemoryCatalog) Latest(_ context.Context, dataset string) (*Manifest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	manifests := c.datasets[dataset]
	if len(manifests) == 0 {
		return nil, ErrNotFound
	}

	m := *manifests[len(manifests)-1]

	return &m, nil
}

// Versions implements Catalog.
func (c *MemoryCatalog) Versions(_ context.Context, dataset string) ([]uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	manifests := c.datasets[dataset]

	versions := make([]uint64, len(manifests))
	for i, m := range manifests {
		versions[i] = m.Version
	}

	return versions, nil
}
