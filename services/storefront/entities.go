package main

import (
	"time"
)

// Product representa um item do catálogo de móveis
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

// CartItem representa um item no carrinho de um usuário
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCartItem cria uma nova instância de CartItem
func NewCartItem(id, userID, productID string, quantity int) *CartItem {
	return &CartItem{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// WishlistItem representa um item na lista de desejos de um usuário
type WishlistItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewWishlistItem cria uma nova instância de WishlistItem
func NewWishlistItem(id, userID, productID string) *WishlistItem {
	return &WishlistItem{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
}

// StockMovement registra uma movimentação de estoque ligada a um pedido.
// O par (order_id, product_id, type) garante idempotência das ações SAGA.
type StockMovement struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MovementType representa os tipos de movimentação de estoque
const (
	MovementTypeDecreased = "decreased"
	MovementTypeRestocked = "restocked"
)

// NewStockMovement cria uma nova instância de StockMovement
func NewStockMovement(id, productID, orderID string, quantity int, movementType string) *StockMovement {
	return &StockMovement{
		ID:        id,
		ProductID: productID,
		OrderID:   orderID,
		Quantity:  quantity,
		Type:      movementType,
		CreatedAt: time.Now(),
	}
}
