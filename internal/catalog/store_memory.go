package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var ErrEmptyCatalog = errors.New("catalog has no products")

type MemStore struct {
	mu       sync.RWMutex
	brands   []Brand
	products []Product
	byID     map[string]int
}

// NewMemStore keeps brands and products in their given order. A later
// product with an ID already seen replaces the earlier one in lookups.
func NewMemStore(brands []Brand, products []Product) *MemStore {
	s := &MemStore{
		brands:   slices.Clone(brands),
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		p.ImageURLs = slices.Clone(p.ImageURLs)
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

// Ping reports ErrEmptyCatalog when no products were loaded.
func (s *MemStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.products) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

func (s *MemStore) ListBrands(ctx context.Context) ([]Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Brand, len(s.brands))
	copy(out, s.brands)
	return out, nil
}

func (s *MemStore) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, clone(p))
	}
	return out, nil
}

func (s *MemStore) ProductsByBrand(ctx context.Context, brandID string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range s.products {
		if p.CategoryID == brandID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (s *MemStore) FindProduct(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false, nil
	}
	return clone(s.products[i]), true, nil
}

func (s *MemStore) Counts() (brands, products int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.brands), len(s.products)
}

func clone(p Product) Product {
	p.ImageURLs = slices.Clone(p.ImageURLs)
	return p
}
