package store

import (
	"context"
	"sync"

	"github.com/nathoo/parley/engine/state"
)

// Memory keeps encoded records in a map. Loaded players never share memory
// with the stored copy.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, name string) (*state.Player, error) {
	m.mu.RLock()
	b, ok := m.records[key(name)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(name, b)
}

func (m *Memory) Save(_ context.Context, p *state.Player) error {
	b, err := encode(p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key(p.Name())] = b
	return nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key(name)]; !ok {
		return ErrNotFound
	}
	delete(m.records, key(name))
	return nil
}

func (m *Memory) Close() error { return nil }
