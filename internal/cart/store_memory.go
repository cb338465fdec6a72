package cart

import (
	"context"
	"slices"
	"sync"
)

type MemStore struct {
	mu    sync.Mutex
	carts map[string][]Line
}

func NewMemStore(carts map[string][]Line) *MemStore {
	s := &MemStore{carts: make(map[string][]Line, len(carts))}
	for user, lines := range carts {
		s.carts[user] = cloneLines(lines)
	}
	return s
}

func (s *MemStore) Get(ctx context.Context, username string) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.carts[username]), nil
}

func (s *MemStore) Update(ctx context.Context, username string, fn func([]Line) ([]Line, error)) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneLines(s.carts[username]))
	if err != nil {
		return nil, err
	}

	s.carts[username] = cloneLines(next)
	return cloneLines(next), nil
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.ImageURLs = slices.Clone(l.ImageURLs)
		out[i] = l
	}
	return out
}
