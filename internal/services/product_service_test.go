package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"thestore/internal/logging"
	"thestore/internal/models"
	"thestore/internal/repositories"
	"thestore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event models.ProductEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 15, 123456789, time.UTC)

func newService(repo *MockProductRepository, events services.EventPublisher) *services.ProductService {
	return services.NewProductService(repo, events, logging.Discard()).
		WithClock(func() time.Time { return fixedNow })
}

func phoneInput() models.ProductInput {
	rating := 4.0
	return models.ProductInput{
		Name:        "Phone",
		Price:       499.99,
		Brand:       "Acme",
		ModelNumber: "A1",
		Rating:      &rating,
	}
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	expected := []models.Product{
		{ID: 2, Name: "Product B", Price: 20.0},
		{ID: 1, Name: "Product A", Price: 10.0},
	}
	mockRepo.On("FindAll", ctx).Return(expected, nil).Once()

	products, err := service.ListProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	expected := &models.Product{ID: 1, Name: "Product A", Price: 10.0}
	mockRepo.On("FindByID", ctx, uint(1)).Return(expected, nil).Once()
	product, err := service.GetProduct(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	mockRepo.On("FindByID", ctx, uint(99)).Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()
	product, err = service.GetProduct(ctx, 99)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Product).ID = 1
		}).
		Return(nil).Once()
	events.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.EventProductCreated && e.ProductID == 1 && e.Product != nil && e.ID != ""
	})).Return(nil).Once()

	product, err := service.CreateProduct(ctx, phoneInput())

	require.NoError(t, err)
	assert.Equal(t, uint(1), product.ID)
	assert.Equal(t, "Phone", product.Name)
	assert.Equal(t, 499.99, product.Price)
	assert.Equal(t, "Acme", product.Brand)
	assert.Equal(t, "A1", product.ModelNumber)
	assert.Equal(t, 4.0, *product.Rating)
	assert.Equal(t, fixedNow.Truncate(time.Microsecond), product.ManufacturedDate)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_CreateProduct_RepositoryError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()

	product, err := service.CreateProduct(ctx, phoneInput())

	assert.Nil(t, product)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	events.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_CreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	mockRepo.On("Save", ctx, mock.Anything).Return(nil).Once()
	events.On("PublishProductEvent", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	product, err := service.CreateProduct(ctx, phoneInput())

	assert.NoError(t, err)
	assert.NotNil(t, product)
	events.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &models.Product{ID: 5, Name: "Old", Price: 1, Brand: "B", ModelNumber: "M", ManufacturedDate: created}

	mockRepo.On("Save", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 5 && p.Name == "Phone" && p.ManufacturedDate.Equal(created)
	})).Return(nil).Once()
	events.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.EventProductUpdated && e.ProductID == 5
	})).Return(nil).Once()

	err := service.UpdateProduct(ctx, existing, phoneInput())

	require.NoError(t, err)
	assert.Equal(t, uint(5), existing.ID)
	assert.Equal(t, created, existing.ManufacturedDate)
	assert.Equal(t, "Phone", existing.Name)
	assert.Equal(t, 499.99, existing.Price)
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_UpdateProduct_RepositoryError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	existing := &models.Product{ID: 5, Name: "Old", Price: 1}
	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).Return(fmt.Errorf("connection reset")).Once()

	err := service.UpdateProduct(ctx, existing, phoneInput())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Old", existing.Name, "a failed save leaves the product untouched")
	assert.Equal(t, 1.0, existing.Price)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	existing := &models.Product{ID: 5, Name: "Old"}
	mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Product")).
		Return(fmt.Errorf("product with ID 5: %w", repositories.ErrProductNotFound)).Once()

	err := service.UpdateProduct(ctx, existing, phoneInput())
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	assert.Equal(t, "Old", existing.Name)
	events.AssertNotCalled(t, "PublishProductEvent", mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	events := new(MockEventPublisher)
	service := newService(mockRepo, events)
	ctx := context.Background()

	existing := &models.Product{ID: 1, Name: "Product A"}
	mockRepo.On("FindByID", ctx, uint(1)).Return(existing, nil).Once()
	mockRepo.On("Delete", ctx, existing).Return(nil).Once()
	events.On("PublishProductEvent", mock.MatchedBy(func(e models.ProductEvent) bool {
		return e.Type == models.EventProductDeleted && e.ProductID == 1 && e.Product == nil
	})).Return(nil).Once()

	assert.NoError(t, service.DeleteProduct(ctx, 1))
	mockRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("FindByID", ctx, uint(99)).Return(nil, fmt.Errorf("product with ID 99: %w", repositories.ErrProductNotFound)).Once()

	err := service.DeleteProduct(ctx, 99)
	assert.True(t, errors.Is(err, repositories.ErrProductNotFound))
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
