package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second

	pgUndefinedTable = "42P01"
)

var ErrNoSchema = errors.New("catalog tables missing")

// OpenPostgres opens and pings a database/sql handle backed by pgx.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	err = withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// LoadFromPostgres takes a one-shot snapshot of the brands and products
// tables. The database is not consulted again after it returns.
func LoadFromPostgres(ctx context.Context, db *sql.DB) (*MemStore, error) {
	var (
		brands   []Brand
		products []Product
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		if brands, err = queryBrands(ctx, db); err != nil {
			return err
		}
		products, err = queryProducts(ctx, db)
		return err
	})
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoSchema, err)
		}
		return nil, err
	}

	return NewMemStore(brands, products), nil
}

func queryBrands(ctx context.Context, db *sql.DB) ([]Brand, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name
		FROM brands
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Brand, 0, 16)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func queryProducts(ctx context.Context, db *sql.DB) ([]Product, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, category_id, name, description, price, image_urls
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, 16)
	for rows.Next() {
		var (
			p    Product
			urls []byte
		)
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &urls); err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			if err := json.Unmarshal(urls, &p.ImageURLs); err != nil {
				return nil, fmt.Errorf("product %s image_urls: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
