package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"product-catalog/internal/products"
)

// MemoryRepository keeps products in a map. Ids come from a counter that is
// never rewound, so deleted ids are not reused.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]products.Product
	lastID   int64
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		products: make(map[int64]products.Product),
	}
}

func (r *MemoryRepository) Save(_ context.Context, p products.Product) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	p.ID = r.lastID
	r.products[p.ID] = p
	return p, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

// FindByName returns the product with the lowest id among those named name.
func (r *MemoryRepository) FindByName(_ context.Context, name string) (products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		match products.Product
		found bool
	)
	for _, p := range r.products {
		if p.Name == name && (!found || p.ID < match.ID) {
			match, found = p, true
		}
	}
	if !found {
		return products.Product{}, products.ErrNotFound
	}
	return match, nil
}

func (r *MemoryRepository) FindAll(_ context.Context) ([]products.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]products.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b products.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

func (r *MemoryRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}

func (r *MemoryRepository) Update(_ context.Context, p products.Product) (products.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return products.Product{}, products.ErrNotFound
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.products)
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.products)), nil
}

func (r *MemoryRepository) Health() error { return nil }

func (r *MemoryRepository) Close() error { return nil }
