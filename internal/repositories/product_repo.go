package repositories

import (
	"context"
	"errors"

	"thestore/internal/models"
)

// ErrProductNotFound is returned by FindByID when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// FindAll returns every product, newest ManufacturedDate first. Products
	// with equal dates are ordered by descending ID.
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	// Save inserts the product when its ID is zero and updates it otherwise.
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, product *models.Product) error
}
