package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemStore struct {
	mu         sync.RWMutex
	byUsername map[string]Credential
}

// NewMemStore indexes creds by username; the first record for a username
// wins. Credentials without a valid UUID ID are given a fresh one.
func NewMemStore(creds []Credential) *MemStore {
	s := &MemStore{byUsername: make(map[string]Credential, len(creds))}
	for _, c := range creds {
		if _, dup := s.byUsername[c.Username]; dup {
			continue
		}
		if _, err := uuid.Parse(c.ID); err != nil {
			c.ID = uuid.NewString()
		}
		s.byUsername[c.Username] = c
	}
	return s
}

func (s *MemStore) Verify(ctx context.Context, username, password string) (Credential, error) {
	s.mu.RLock()
	c, ok := s.byUsername[username]
	s.mu.RUnlock()

	if !ok || c.Password != password {
		return Credential{}, ErrInvalidCredentials
	}
	return c, nil
}

func (s *MemStore) Lookup(ctx context.Context, username string) (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byUsername[username]
	return c, ok, nil
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUsername)
}
