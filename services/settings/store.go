// Package settings persists the operator configuration and serves the
// in-memory copy to the rest of the controller.
package settings

import (
	"context"
	"sync"

	"habitat-go/errcode"
	"habitat-go/types"
)

// Store persists settings. Load returns errcode.NotFound when nothing has
// been saved yet.
type Store interface {
	Load(ctx context.Context) (types.SystemSettings, error)
	Save(ctx context.Context, s types.SystemSettings) error
}

// MemoryStore keeps the persisted image in RAM.
type MemoryStore struct {
	mu    sync.Mutex
	kvs   []KV
	saves int
	// Fail, when set, is returned by Save.
	Fail error
}

func (m *MemoryStore) Load(context.Context) (types.SystemSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kvs == nil {
		return types.SystemSettings{}, errcode.NotFound
	}
	return Decode(m.kvs, types.DefaultSettings())
}

func (m *MemoryStore) Save(_ context.Context, s types.SystemSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.kvs = Encode(s)
	m.saves++
	return nil
}

// Saves returns the number of successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
