package persist

import (
	"context"

	"github.com/crimecore/server/internal/world"
)

// MemoryStore keeps the last snapshot in process memory. Used when no
// database is configured, and by tests.
type MemoryStore struct {
	snapshot *world.State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadAll(ctx context.Context) (*world.State, error) {
	if m.snapshot == nil {
		return world.NewState(), nil
	}
	st := m.snapshot.Clone()
	st.Reconcile()
	return st, nil
}

func (m *MemoryStore) SaveAll(ctx context.Context, s *world.State) error {
	m.snapshot = s.Clone()
	return nil
}

func (m *MemoryStore) ClearAll(ctx context.Context) error {
	m.snapshot = nil
	return nil
}
