package cart

import (
	"context"
	"errors"
	"fmt"

	"ShadesStore/internal/catalog"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrDuplicateItem   = errors.New("product already in cart")
	ErrNotFound        = errors.New("product not found")

	ErrProductNotFound = fmt.Errorf("%w: unknown product id", ErrNotFound)
	ErrLineNotFound    = fmt.Errorf("%w: not in cart", ErrNotFound)
)

type Catalog interface {
	FindProduct(ctx context.Context, id string) (catalog.Product, bool, error)
}

// Manager applies cart mutations for an already authenticated username.
type Manager struct {
	store   Store
	catalog Catalog
	metrics *Metrics
}

func NewManager(store Store, cat Catalog, m *Metrics) *Manager {
	return &Manager{store: store, catalog: cat, metrics: m}
}

func (m *Manager) Get(ctx context.Context, username string) ([]Line, error) {
	return m.store.Get(ctx, username)
}

// Add appends productID with quantity 1 and returns the whole cart.
func (m *Manager) Add(ctx context.Context, username, productID string) ([]Line, error) {
	return m.mutate(ctx, opAdd, username, func(lines []Line) ([]Line, error) {
		if indexOf(lines, productID) >= 0 {
			return nil, ErrDuplicateItem
		}

		p, ok, err := m.catalog.FindProduct(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("find product %s: %w", productID, err)
		}
		if !ok {
			return nil, ErrProductNotFound
		}

		return append(lines, Line{Product: p, Quantity: 1}), nil
	})
}

func (m *Manager) UpdateQuantity(ctx context.Context, username, productID string, qty int) ([]Line, error) {
	return m.mutate(ctx, opUpdate, username, func(lines []Line) ([]Line, error) {
		if len(lines) == 0 {
			return nil, ErrEmptyCart
		}
		if qty < 1 {
			return nil, ErrInvalidQuantity
		}

		i := indexOf(lines, productID)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		lines[i].Quantity = qty
		return lines, nil
	})
}

func (m *Manager) Remove(ctx context.Context, username, productID string) ([]Line, error) {
	return m.mutate(ctx, opRemove, username, func(lines []Line) ([]Line, error) {
		if len(lines) == 0 {
			return nil, ErrEmptyCart
		}

		i := indexOf(lines, productID)
		if i < 0 {
			return nil, ErrLineNotFound
		}
		return append(lines[:i], lines[i+1:]...), nil
	})
}

func (m *Manager) mutate(ctx context.Context, op, username string, fn func([]Line) ([]Line, error)) ([]Line, error) {
	lines, err := m.store.Update(ctx, username, fn)
	m.metrics.observe(op, err)
	return lines, err
}

func indexOf(lines []Line, productID string) int {
	for i, l := range lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}
