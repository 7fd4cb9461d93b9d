package profile

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store in memory for unit tests.
type MemoryStore struct {
	mu         sync.RWMutex
	developers map[string]*DeveloperProfile
	recruiters map[string]*RecruiterProfile
	now        func() time.Time
	nextErr    error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		developers: make(map[string]*DeveloperProfile),
		recruiters: make(map[string]*RecruiterProfile),
		now:        time.Now,
	}
}

// SetClock overrides the timestamp source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNextWith makes the next Upsert or Get return err, then clears it.
func (s *MemoryStore) FailNextWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

func (s *MemoryStore) takeErr() error {
	err := s.nextErr
	s.nextErr = nil
	return err
}

// Upsert stores a copy of the profile, managing timestamps the same way the
// Firestore implementation does.
func (s *MemoryStore) Upsert(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr(); err != nil {
		return err
	}

	base := BaseOf(p)
	now := s.now().UTC()

	switch v := p.(type) {
	case *DeveloperProfile:
		cp := *v
		cp.Skills = append([]string(nil), v.Skills...)
		cp.Base.Email = strings.ToLower(strings.TrimSpace(base.Email))
		cp.Base.CreatedAt = now
		if prior, ok := s.developers[base.ID]; ok {
			cp.Base.CreatedAt = prior.Base.CreatedAt
		}
		cp.Base.UpdatedAt = now
		s.developers[base.ID] = &cp
	case *RecruiterProfile:
		cp := *v
		cp.Base.Email = strings.ToLower(strings.TrimSpace(base.Email))
		cp.Base.CreatedAt = now
		if prior, ok := s.recruiters[base.ID]; ok {
			cp.Base.CreatedAt = prior.Base.CreatedAt
		}
		cp.Base.UpdatedAt = now
		s.recruiters[base.ID] = &cp
	}
	return nil
}

// Get returns a copy of the stored profile or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string, role Role) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeErr(); err != nil {
		return nil, err
	}

	switch role {
	case RoleDeveloper:
		p, ok := s.developers[id]
		if !ok {
			return nil, ErrNotFound
		}
		cp := *p
		cp.Skills = append([]string(nil), p.Skills...)
		return &cp, nil
	case RoleRecruiter:
		p, ok := s.recruiters[id]
		if !ok {
			return nil, ErrNotFound
		}
		cp := *p
		return &cp, nil
	default:
		return nil, ErrNotFound
	}
}

// Clear removes all profiles (useful for test cleanup).
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.developers = make(map[string]*DeveloperProfile)
	s.recruiters = make(map[string]*RecruiterProfile)
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
