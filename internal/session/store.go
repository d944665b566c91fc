// Package session persists conversation state and serializes access to it.
package session

import (
	"context"
	"sync"

	"loan-assistant/internal/models"
)

// Store is the session persistence interface. Get returns (nil, nil) when
// the session does not exist.
type Store interface {
	Get(ctx context.Context, id string) (*models.SessionContext, error)
	Save(ctx context.Context, s *models.SessionContext) error
	Delete(ctx context.Context, id string) error
}

// ==========================
// 1. In-Memory Store
// ==========================

// MemoryStore keeps sessions in a map. Suitable for single-instance
// deployments and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.SessionContext
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.SessionContext)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.SessionContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.SessionContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are held. Used for the active-sessions gauge.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
