package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"thestore/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// It backs the "memory" database driver and tests that don't need SQL.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// FindAll returns all products, newest first.
func (r *MemoryProductRepository) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		a, b := productList[i], productList[j]
		if !a.ManufacturedDate.Equal(b.ManufacturedDate) {
			return a.ManufacturedDate.After(b.ManufacturedDate)
		}
		return a.ID > b.ID
	})
	return productList, nil
}

// FindByID returns a copy of the product with the given ID.
func (r *MemoryProductRepository) FindByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Save assigns the next ID to new products and stores a copy. Existing
// products keep their ManufacturedDate.
func (r *MemoryProductRepository) Save(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
		r.products[product.ID] = *product
		return nil
	}

	stored, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductNotFound)
	}
	updated := *product
	updated.ManufacturedDate = stored.ManufacturedDate
	r.products[product.ID] = updated
	return nil
}

// Delete removes the product.
func (r *MemoryProductRepository) Delete(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrProductNotFound)
	}
	delete(r.products, product.ID)
	return nil
}
