package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/products"
)

const healthCheckTimeout = 2 * time.Second

const productColumns = `id, name, description, price`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (products.Product, error) {
	var p products.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price)
	return p, err
}

func (r *PostgresRepository) Save(ctx context.Context, p products.Product) (products.Product, error) {
	query := `
		INSERT INTO products (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	saved, err := scanProduct(r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price))
	if err != nil {
		return products.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("select product %d: %w", id, err)
	}
	return p, nil
}

// FindByName returns the lowest-id product with the given name.
func (r *PostgresRepository) FindByName(ctx context.Context, name string) (products.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name = $1
		ORDER BY id
		LIMIT 1
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("select product by name: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	list := make([]products.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product %d: %w", id, err)
	}
	return exists, nil
}

// Update overwrites name, description and price in one statement and reports
// ErrNotFound when no row has the product's id.
func (r *PostgresRepository) Update(ctx context.Context, p products.Product) (products.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4
		WHERE id = $1
		RETURNING ` + productColumns

	updated, err := scanProduct(r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description, p.Price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return updated, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func (r *PostgresRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
