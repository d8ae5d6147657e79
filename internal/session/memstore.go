package session

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store for tests and local development.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]json.RawMessage
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]map[string]json.RawMessage)}
}

func (m *MemStore) Load(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.sessions[id]
	if !ok {
		return New(id), nil
	}

	// Copy so the caller's mutations stay invisible until Save. This is
	// also what gives two concurrent requests independent snapshots.
	values := make(map[string]json.RawMessage, len(stored))
	for k, v := range stored {
		values[k] = v
	}
	return Restore(id, values), nil
}

func (m *MemStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make(map[string]json.RawMessage, len(s.Values()))
	for k, v := range s.Values() {
		values[k] = v
	}
	m.sessions[s.ID()] = values
	return nil
}
