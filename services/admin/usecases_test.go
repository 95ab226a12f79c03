package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAdminRepository é um mock de AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) ListProducts(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockAdminRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockAdminRepository) CreateProduct(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockAdminRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DashboardStats), args.Error(1)
}

func TestSearchProducts_InvalidStockFilter(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	useCase := NewAdminUseCase(mockRepo)

	// Act
	results, err := useCase.SearchProducts(context.Background(), "oak", "backorder", 0)

	// Assert - the repository is never touched for a bad filter
	assert.ErrorIs(t, err, ErrInvalidStockFilter)
	assert.Nil(t, results)
	mockRepo.AssertNotCalled(t, "ListProducts", mock.Anything)
}

func TestSearchProducts_StockFilterAppliedBeforeScoring(t *testing.T) {
	// Arrange - both products match the query, only one is out of stock
	mockRepo := new(MockAdminRepository)
	mockRepo.On("ListProducts", mock.Anything).Return([]Product{
		{ID: "p1", Name: "Oak Table", Category: "tables", Stock: 5},
		{ID: "p2", Name: "Oak Bench", Category: "benches", Stock: 0},
	}, nil)
	useCase := NewAdminUseCase(mockRepo)

	// Act
	results, err := useCase.SearchProducts(context.Background(), "oak", StockFilterOut, 0)

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p2", results[0].ID)
}

func TestSearchProducts_DefaultLimit(t *testing.T) {
	// Arrange
	candidates := make([]Product, 0, 30)
	for i := 0; i < 30; i++ {
		candidates = append(candidates, Product{ID: string(rune('a' + i)), Name: "Oak Shelf", Stock: 1})
	}
	mockRepo := new(MockAdminRepository)
	mockRepo.On("ListProducts", mock.Anything).Return(candidates, nil)
	useCase := NewAdminUseCase(mockRepo)

	// Act - limit 0 falls back to the admin default
	results, err := useCase.SearchProducts(context.Background(), "oak", "", 0)

	// Assert
	require.NoError(t, err)
	assert.Len(t, results, defaultAdminSearchLimit)
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	mockRepo.On("GetProduct", mock.Anything, "missing").Return(nil, sql.ErrNoRows)
	useCase := NewAdminUseCase(mockRepo)

	// Act
	product, err := useCase.GetProduct(context.Background(), "missing")

	// Assert
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}

func TestUpdateProduct_PatchesOnlyProvidedFields(t *testing.T) {
	// Arrange
	existing := &Product{
		ID:       "p1",
		SKU:      "TBL-001",
		Name:     "Oak Table",
		Category: "tables",
		Price:    499.90,
		Stock:    8,
	}
	mockRepo := new(MockAdminRepository)
	mockRepo.On("GetProduct", mock.Anything, "p1").Return(existing, nil)
	mockRepo.On("UpdateProduct", mock.Anything, mock.Anything).Return(true, nil)
	useCase := NewAdminUseCase(mockRepo)

	newPrice := 449.90
	req := UpdateProductRequest{Price: &newPrice}

	// Act
	updated, err := useCase.UpdateProduct(context.Background(), "p1", req)

	// Assert - untouched fields survive the patch
	require.NoError(t, err)
	assert.Equal(t, 449.90, updated.Price)
	assert.Equal(t, "Oak Table", updated.Name)
	assert.Equal(t, "TBL-001", updated.SKU)
	assert.Equal(t, 8, updated.Stock)
}

func TestUpdateProduct_RowGoneBetweenReadAndWrite(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	mockRepo.On("GetProduct", mock.Anything, "p1").Return(&Product{ID: "p1"}, nil)
	mockRepo.On("UpdateProduct", mock.Anything, mock.Anything).Return(false, nil)
	useCase := NewAdminUseCase(mockRepo)

	name := "Renamed"

	// Act
	updated, err := useCase.UpdateProduct(context.Background(), "p1", UpdateProductRequest{Name: &name})

	// Assert
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, updated)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	mockRepo.On("DeleteProduct", mock.Anything, "missing").Return(false, nil)
	useCase := NewAdminUseCase(mockRepo)

	// Act
	err := useCase.DeleteProduct(context.Background(), "missing")

	// Assert
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateProduct_AssignsIDAndPersists(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	mockRepo.On("CreateProduct", mock.Anything, mock.Anything).Return(nil)
	useCase := NewAdminUseCase(mockRepo)

	req := CreateProductRequest{
		SKU:      "CHR-042",
		Name:     "Velvet Armchair",
		Category: "chairs",
		Price:    899.00,
		Stock:    12,
	}

	// Act
	product, err := useCase.CreateProduct(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "CHR-042", product.SKU)
	assert.Equal(t, 12, product.Stock)
	mockRepo.AssertCalled(t, "CreateProduct", mock.Anything, product)
}

func TestGetDashboard_PropagatesRepositoryError(t *testing.T) {
	// Arrange
	mockRepo := new(MockAdminRepository)
	mockRepo.On("GetDashboardStats", mock.Anything).Return(nil, errors.New("connection reset"))
	useCase := NewAdminUseCase(mockRepo)

	// Act
	stats, err := useCase.GetDashboard(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Nil(t, stats)
}
