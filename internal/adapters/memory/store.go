package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/hbnb/pkg/ports"
)

// Store implements ports.Backend in memory.
// Safe for concurrent use.
type Store struct {
	data ports.Snapshot
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(ports.Snapshot),
	}
}

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snapshot ports.Snapshot) error {
	// Copy to ensure isolation, similar to serialization
	copied := copySnapshot(snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = copied
	return nil
}

// Load returns a copy of the stored snapshot so callers can't mutate it by reference.
func (s *Store) Load(ctx context.Context) (ports.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.data), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func copySnapshot(in ports.Snapshot) ports.Snapshot {
	out := make(ports.Snapshot, len(in))
	for k, v := range in {
		out[k] = maps.Clone(v)
	}
	return out
}
