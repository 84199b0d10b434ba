package settings

import (
	"context"
	"sync"

	"github.com/kapu/planning-center-groups-go/internal/domain"
)

// MemoryStore keeps options in process. It backs single-instance
// deployments and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	settings domain.Settings
}

func NewMemoryStore(initial domain.Settings) *MemoryStore {
	return &MemoryStore{settings: initial}
}

func (m *MemoryStore) Load(_ context.Context) (domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MemoryStore) Save(_ context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
