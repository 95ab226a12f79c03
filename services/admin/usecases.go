package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = fmt.Errorf("product not found")
	ErrInvalidStockFilter = fmt.Errorf("invalid stock filter")
)

// defaultAdminSearchLimit é o teto de resultados da busca administrativa
const defaultAdminSearchLimit = 15

// AdminUseCase contém a lógica do back office
type AdminUseCase struct {
	repository AdminRepository
}

// NewAdminUseCase cria uma nova instância de AdminUseCase
func NewAdminUseCase(repository AdminRepository) *AdminUseCase {
	return &AdminUseCase{
		repository: repository,
	}
}

// SearchProducts ranqueia o catálogo contra a query, com pré-filtro opcional
// de nível de estoque aplicado antes do scoring
func (uc *AdminUseCase) SearchProducts(ctx context.Context, query, stockFilter string, limit int) ([]Product, error) {
	switch stockFilter {
	case "", StockFilterLow, StockFilterOut:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStockFilter, stockFilter)
	}

	if limit <= 0 {
		limit = defaultAdminSearchLimit
	}

	candidates, err := uc.repository.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search candidates: %w", err)
	}

	return searchProducts(query, filterByStock(candidates, stockFilter), limit), nil
}

// ListProducts devolve o catálogo completo
func (uc *AdminUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := uc.repository.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct busca um produto pelo ID
func (uc *AdminUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	product, err := uc.repository.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct cria um produto a partir da requisição validada
func (uc *AdminUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	product := NewProduct(uuid.New().String(), req.SKU, req.Name, req.Category)
	product.Description = req.Description
	product.Materials = req.Materials
	product.Colors = req.Colors
	product.Price = req.Price
	product.Stock = req.Stock

	if err := uc.repository.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct aplica os campos informados sobre o produto existente
func (uc *AdminUseCase) UpdateProduct(ctx context.Context, productID string, req UpdateProductRequest) (*Product, error) {
	product, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Materials != nil {
		product.Materials = *req.Materials
	}
	if req.Colors != nil {
		product.Colors = *req.Colors
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	updated, err := uc.repository.UpdateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// DeleteProduct remove um produto do catálogo
func (uc *AdminUseCase) DeleteProduct(ctx context.Context, productID string) error {
	deleted, err := uc.repository.DeleteProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return ErrProductNotFound
	}
	return nil
}

// GetDashboard devolve os contadores do painel
func (uc *AdminUseCase) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := uc.repository.GetDashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	return stats, nil
}
