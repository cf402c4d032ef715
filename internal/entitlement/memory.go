package entitlement

import (
	"context"
	"sync"
)

// MemoryBackend keeps entitlements for the lifetime of the process.
type MemoryBackend struct {
	mu    sync.RWMutex
	codes map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{codes: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.codes[key]
	if !ok {
		return "", ErrNotFound
	}
	return code, nil
}

func (m *MemoryBackend) Put(_ context.Context, key, code string) error {
	m.mu.Lock()
	m.codes[key] = code
	m.mu.Unlock()
	return nil
}
