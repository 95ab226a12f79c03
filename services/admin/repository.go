package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// AdminRepository define a interface para operações administrativas de catálogo
type AdminRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) (bool, error)
	DeleteProduct(ctx context.Context, productID string) (bool, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// PostgresAdminRepository implementa AdminRepository usando database/sql
type PostgresAdminRepository struct {
	db *sql.DB
}

// NewAdminRepository cria uma nova instância de PostgresAdminRepository
func NewAdminRepository(db *sql.DB) AdminRepository {
	return &PostgresAdminRepository{
		db: db,
	}
}

const productColumns = `id, sku, name, category, description, materials, colors,
	price, rating, review_count, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.Materials,
		pq.Array(&p.Colors), &p.Price, &p.Rating, &p.ReviewCount, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts devolve todos os produtos do catálogo
func (r *PostgresAdminRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetProduct busca um produto pelo ID
func (r *PostgresAdminRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1
	`, productID)
	return scanProduct(row)
}

// CreateProduct cria um novo produto no catálogo
func (r *PostgresAdminRepository) CreateProduct(ctx context.Context, product *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, category, description, materials, colors,
			price, rating, review_count, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, product.ID, product.SKU, product.Name, product.Category, product.Description,
		product.Materials, pq.Array(product.Colors), product.Price, product.Rating,
		product.ReviewCount, product.Stock, product.CreatedAt, product.UpdatedAt)
	return err
}

// UpdateProduct atualiza um produto existente
func (r *PostgresAdminRepository) UpdateProduct(ctx context.Context, product *Product) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $1, name = $2, category = $3, description = $4, materials = $5,
		    colors = $6, price = $7, stock = $8, updated_at = NOW()
		WHERE id = $9
	`, product.SKU, product.Name, product.Category, product.Description, product.Materials,
		pq.Array(product.Colors), product.Price, product.Stock, product.ID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteProduct remove um produto do catálogo
func (r *PostgresAdminRepository) DeleteProduct(ctx context.Context, productID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetDashboardStats agrega os contadores do painel
func (r *PostgresAdminRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE stock = 0),
		       COUNT(*) FILTER (WHERE stock > 0 AND stock <= $1),
		       COALESCE(AVG(rating), 0)
		FROM products
	`, lowStockThreshold).Scan(&stats.ProductCount, &stats.OutOfStock, &stats.LowStock, &stats.AverageRating)

	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}
