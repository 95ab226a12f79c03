package main

import (
	"time"
)

// Product representa um item do catálogo visto pelo back office
type Product struct {
	ID          string    `json:"id" db:"id"`
	SKU         string    `json:"sku" db:"sku"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description,omitempty" db:"description"`
	Materials   string    `json:"materials,omitempty" db:"materials"`
	Colors      []string  `json:"colors,omitempty" db:"colors"`
	Price       float64   `json:"price" db:"price"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewProduct cria uma nova instância de Product
func NewProduct(id, sku, name, category string) *Product {
	return &Product{
		ID:        id,
		SKU:       sku,
		Name:      name,
		Category:  category,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Filtros de estoque da busca administrativa
const (
	StockFilterLow = "low"
	StockFilterOut = "out"

	lowStockThreshold = 10
)

// DashboardStats agrega os contadores do painel administrativo
type DashboardStats struct {
	ProductCount  int     `json:"product_count"`
	OutOfStock    int     `json:"out_of_stock"`
	LowStock      int     `json:"low_stock"`
	AverageRating float64 `json:"average_rating"`
}
