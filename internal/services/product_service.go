package services

import (
	"context"
	"fmt"
	"time"

	"thestore/internal/models"
	"thestore/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventPublisher publishes catalog events. A nil publisher disables events.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	log    *logrus.Logger
	now    func() time.Time
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
		log:    logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used to stamp ManufacturedDate.
func (s *ProductService) WithClock(now func() time.Time) *ProductService {
	s.now = now
	return s
}

// ListProducts retrieves all products, newest first.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAll(ctx)
}

// GetProduct retrieves a single product. A missing product is reported as
// repositories.ErrProductNotFound.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateProduct materializes a validated input into a new product stamped with
// the current time and stores it.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	product := &models.Product{
		ManufacturedDate: s.now().UTC().Truncate(time.Microsecond),
	}
	input.ApplyTo(product)

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(models.EventProductCreated, product.ID, product)
	return product, nil
}

// UpdateProduct overwrites the business fields of product with input and
// stores it. ID and ManufacturedDate are preserved. product is only modified
// once the repository accepted the change.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product, input models.ProductInput) error {
	updated := *product
	input.ApplyTo(&updated)

	if err := s.repo.Save(ctx, &updated); err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}

	*product = updated
	s.publish(models.EventProductUpdated, product.ID, product)
	return nil
}

// DeleteProduct looks the product up and removes it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}

	s.publish(models.EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) publish(eventType string, id uint, product *models.Product) {
	if s.events == nil {
		return
	}

	event := models.ProductEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":      eventType,
			"product_id": id,
		}).Warn("Failed to publish product event")
	}
}
