package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Manager serializes all access to a session. Two concurrent requests for
// the same session id run their callbacks one after the other; requests for
// different sessions proceed in parallel.
type Manager struct {
	store Store
	log   logger.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(store Store, log logger.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		locks: make(map[string]*sessionLock),
	}
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// WithSession loads (or creates) the session, runs fn under the per-session
// lock, and saves the mutated state back when fn succeeds.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(s *models.SessionContext) error) (*models.SessionContext, error) {
	lock := m.acquire(id)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		m.release(id)
	}()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = models.NewSessionContext(id)
		m.log.Debug("Session created", map[string]interface{}{
			"sessionId": id,
		})
	}

	if err := fn(s); err != nil {
		return s, err
	}

	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return s, err
	}
	return s, nil
}

// Reset discards any stored state for the session.
func (m *Manager) Reset(ctx context.Context, id string) error {
	lock := m.acquire(id)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		m.release(id)
	}()

	m.log.Info("Session reset", map[string]interface{}{
		"sessionId": id,
	})
	return m.store.Delete(ctx, id)
}

func (m *Manager) acquire(id string) *sessionLock {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	return l
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
