// Package seed loads a fixed set of sample products into a store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"product-catalog/internal/products"

	"github.com/shopspring/decimal"
)

type Store interface {
	Save(ctx context.Context, p products.Product) (products.Product, error)
	FindByName(ctx context.Context, name string) (products.Product, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type Result struct {
	Inserted []string
	Skipped  []string
	Total    int64
}

func Samples() []products.Product {
	return []products.Product{
		sample("Test Product 1", "Description for test product 1", "10.99"),
		sample("Test Product 2", "Description for test product 2", "20.99"),
		sample("Test Product 3", "Description for test product 3", "30.99"),
	}
}

func sample(name, description, price string) products.Product {
	return products.Product{
		Name:        name,
		Description: &description,
		Price:       decimal.RequireFromString(price),
	}
}

// Run inserts every sample whose name is not already taken. With reset set,
// the store is emptied first.
func Run(ctx context.Context, store Store, reset bool, logger *slog.Logger) (Result, error) {
	if reset {
		if err := store.DeleteAll(ctx); err != nil {
			return Result{}, fmt.Errorf("reset products: %w", err)
		}
		logger.Info("products table cleared")
	}

	var res Result
	for _, p := range Samples() {
		_, err := store.FindByName(ctx, p.Name)
		switch {
		case err == nil:
			res.Skipped = append(res.Skipped, p.Name)
			continue
		case !errors.Is(err, products.ErrNotFound):
			return res, fmt.Errorf("lookup %q: %w", p.Name, err)
		}

		saved, err := store.Save(ctx, p)
		if err != nil {
			return res, fmt.Errorf("save %q: %w", p.Name, err)
		}
		logger.Info("seeded product", "product_id", saved.ID, "name", saved.Name)
		res.Inserted = append(res.Inserted, saved.Name)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count products: %w", err)
	}
	res.Total = total
	return res, nil
}
