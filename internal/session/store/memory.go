package store

import (
	"context"
	"sync"

	sessiondomain "mallops-console/internal/session/domain"
)

// MemoryStore is an in-memory Store implementation for tests and ephemeral
// (storage-less) sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	sess *sessiondomain.Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored session.
func (s *MemoryStore) Save(ctx context.Context, sess *sessiondomain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	copied.Profile = sess.Profile.Clone()
	s.sess = &copied
	return nil
}

// Load returns the stored session, or (nil, nil) when empty.
func (s *MemoryStore) Load(ctx context.Context) (*sessiondomain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return nil, nil
	}
	copied := *s.sess
	copied.Profile = s.sess.Profile.Clone()
	return &copied, nil
}

// Clear drops the stored session.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
