package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"product-catalog/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

type Repository interface {
	Save(ctx context.Context, p products.Product) (products.Product, error)
	FindByID(ctx context.Context, id int64) (products.Product, error)
	FindAll(ctx context.Context) ([]products.Product, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, p products.Product) (products.Product, error)
	DeleteByID(ctx context.Context, id int64) error
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

// Counters track successful writes.
type Counters struct {
	Created prometheus.Counter
	Updated prometheus.Counter
	Deleted prometheus.Counter
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
	counters  Counters
	now       func() time.Time
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, counters Counters) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		counters:  counters,
		now:       time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]products.Product, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo find all: %w", err)
	}
	if items == nil {
		items = []products.Product{}
	}
	return items, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (products.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo find: %w", err)
	}
	return product, nil
}

func (s *Service) CreateProduct(ctx context.Context, in products.Input) (products.Product, error) {
	if err := products.Validate(in); err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Save(ctx, in.ApplyTo(products.Product{}))
	if err != nil {
		return products.Product{}, fmt.Errorf("repo save: %w", err)
	}

	s.publish(ctx, products.EventCreated, product)
	s.counters.Created.Inc()
	return product, nil
}

// UpdateProduct merges the input onto the stored product. A missing id is
// reported as products.ErrNotFound and never creates a record.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return products.Product{}, fmt.Errorf("repo find: %w", err)
	}

	// Every mutable field comes from the input, so the merged record is
	// valid exactly when the input is.
	if err := products.Validate(in); err != nil {
		return products.Product{}, err
	}

	product, err := s.repo.Update(ctx, in.ApplyTo(existing))
	if err != nil {
		return products.Product{}, fmt.Errorf("repo update: %w", err)
	}

	s.publish(ctx, products.EventUpdated, product)
	s.counters.Updated.Inc()
	return product, nil
}

// DeleteProduct removes the product if present. Deleting an unknown id is
// not an error.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	existed, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("repo exists: %w", err)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	if !existed {
		return nil
	}

	s.publish(ctx, products.EventDeleted, products.Product{ID: id})
	s.counters.Deleted.Inc()
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, product products.Product) {
	if err := s.publisher.Publish(ctx, products.NewEvent(eventType, product, s.now())); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", product.ID,
			"error", err,
		)
	}
}
