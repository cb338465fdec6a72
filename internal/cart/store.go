package cart

import (
	"context"

	"ShadesStore/internal/catalog"
)

// Line is a product record in a cart together with its quantity. At most
// one line per product ID exists in a cart.
type Line struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Store owns every user's cart. Update applies fn to a private copy of the
// cart and commits the result only when fn succeeds; calls for all users
// are serialized.
type Store interface {
	Get(ctx context.Context, username string) ([]Line, error)
	Update(ctx context.Context, username string, fn func(lines []Line) ([]Line, error)) ([]Line, error)
}
