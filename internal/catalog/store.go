package catalog

import "context"

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product.CategoryID is the ID of the brand the product belongs to.
type Product struct {
	ID          string   `json:"id"`
	CategoryID  string   `json:"categoryId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURLs   []string `json:"imageUrls"`
}

// Store is read-only reference data, loaded once at startup.
type Store interface {
	ListBrands(ctx context.Context) ([]Brand, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ProductsByBrand(ctx context.Context, brandID string) ([]Product, error)
	FindProduct(ctx context.Context, id string) (Product, bool, error)
	Ping(ctx context.Context) error
}
