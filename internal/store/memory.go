package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process [Store], used by tests and the --ephemeral flag.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Read implements [Store].
func (m *MemoryStore) Read(key string, dst any) bool {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()

	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

// Write implements [Store].
func (m *MemoryStore) Write(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	m.mu.Lock()
	m.data[key] = string(data)
	m.mu.Unlock()
	return nil
}

// Remove implements [Store].
func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// SetRaw stores text at key without encoding it, so tests can plant corrupt records.
func (m *MemoryStore) SetRaw(key, text string) {
	m.mu.Lock()
	m.data[key] = text
	m.mu.Unlock()
}

// Raw returns the stored text at key.
func (m *MemoryStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}
