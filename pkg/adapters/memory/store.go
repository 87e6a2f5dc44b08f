package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/screengraph/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Snapshot),
	}
}

// Save copies the snapshot so later changes by the caller are not visible.
func (s *Store) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = clone(snap)
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[sessionID]
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return clone(snap), nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data)), nil
}

func clone(snap domain.Snapshot) domain.Snapshot {
	snap.Values = maps.Clone(snap.Values)
	snap.History = slices.Clone(snap.History)
	return snap
}
