package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps flows in memory. Suitable for tests and single-instance
// deployments.
type MemoryStore struct {
	mu    sync.Mutex
	flows map[string]Flow
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory flow store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flows: make(map[string]Flow),
		now:   time.Now,
	}
}

// SetClock overrides the expiry clock.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create stores a new flow.
func (s *MemoryStore) Create(_ context.Context, f Flow) error {
	if f.ID == "" {
		return fmt.Errorf("session: missing flow id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f
	return nil
}

// Get returns the flow, or nil when unknown or expired.
func (s *MemoryStore) Get(_ context.Context, id string) (*Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flows[id]
	if !ok {
		return nil, nil
	}
	if !f.ExpiresAt.IsZero() && !s.now().Before(f.ExpiresAt) {
		delete(s.flows, id)
		return nil, nil
	}
	cp := f
	return &cp, nil
}

// Update replaces a stored flow.
func (s *MemoryStore) Update(_ context.Context, f Flow) error {
	if f.ID == "" {
		return fmt.Errorf("session: missing flow id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[f.ID] = f
	return nil
}

// Delete removes a flow.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	return nil
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
