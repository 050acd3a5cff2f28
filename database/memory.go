package database

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a volatile Store, used in tests and with STORE_DRIVER=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), v...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append(json.RawMessage(nil), value...)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
