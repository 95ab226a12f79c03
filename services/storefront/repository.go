package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository define a interface para operações de catálogo, carrinho e wishlist
type CatalogRepository interface {
	// ListProducts devolve até limit produtos do catálogo
	ListProducts(ctx context.Context, limit int) ([]Product, error)

	// GetProduct busca um produto pelo ID
	GetProduct(ctx context.Context, productID string) (*Product, error)

	// Carrinho
	UpsertCartItem(ctx context.Context, item *CartItem) error
	GetCartItems(ctx context.Context, userID string) ([]CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) (bool, error)
	RemoveCartItem(ctx context.Context, userID, itemID string) (bool, error)

	// Wishlist
	AddWishlistItem(ctx context.Context, item *WishlistItem) error
	GetWishlistItems(ctx context.Context, userID string) ([]WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, userID, productID string) (bool, error)
}

// StockRepository define a interface para as ações SAGA de estoque
type StockRepository interface {
	BeginTx(ctx context.Context) (Tx, error)

	// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
	GetProductForUpdate(ctx context.Context, tx Tx, productID string) (*Product, error)

	// MovementExists verifica se a movimentação já foi aplicada (idempotência)
	MovementExists(ctx context.Context, tx Tx, orderID, productID, movementType string) (bool, error)

	// ApplyMovement ajusta o estoque conforme o tipo da movimentação e
	// registra o histórico na mesma transação
	ApplyMovement(ctx context.Context, tx Tx, movement *StockMovement) error
}

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// PostgresCatalogRepository implementa CatalogRepository e StockRepository usando PostgreSQL
type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository cria uma nova instância de PostgresCatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

// ListProducts devolve até limit produtos do catálogo
func (r *PostgresCatalogRepository) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sku, name, category, description, materials, colors,
		       price, rating, review_count, stock, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.Materials,
			&p.Colors, &p.Price, &p.Rating, &p.ReviewCount, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct busca um produto pelo ID
func (r *PostgresCatalogRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
		SELECT id, sku, name, category, description, materials, colors,
		       price, rating, review_count, stock, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.Materials,
		&p.Colors, &p.Price, &p.Rating, &p.ReviewCount, &p.Stock, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertCartItem adiciona um item ao carrinho, somando a quantidade se já existir
func (r *PostgresCatalogRepository) UpsertCartItem(ctx context.Context, item *CartItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, item.ID, item.UserID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt)
	return err
}

// GetCartItems busca os itens do carrinho de um usuário
func (r *PostgresCatalogRepository) GetCartItems(ctx context.Context, userID string) ([]CartItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateCartItemQuantity atualiza a quantidade de um item do carrinho do usuário
func (r *PostgresCatalogRepository) UpdateCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, quantity, itemID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RemoveCartItem remove um item do carrinho do usuário
func (r *PostgresCatalogRepository) RemoveCartItem(ctx context.Context, userID, itemID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddWishlistItem adiciona um produto à lista de desejos do usuário
func (r *PostgresCatalogRepository) AddWishlistItem(ctx context.Context, item *WishlistItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	return err
}

// GetWishlistItems busca a lista de desejos de um usuário
func (r *PostgresCatalogRepository) GetWishlistItems(ctx context.Context, userID string) ([]WishlistItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM wishlist_items WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WishlistItem
	for rows.Next() {
		var item WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RemoveWishlistItem remove um produto da lista de desejos do usuário
func (r *PostgresCatalogRepository) RemoveWishlistItem(ctx context.Context, userID, productID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// BeginTx inicia uma nova transação
func (r *PostgresCatalogRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
func (r *PostgresCatalogRepository) GetProductForUpdate(ctx context.Context, tx Tx, productID string) (*Product, error) {
	pgTx := tx.(*PostgresTx).tx

	var p Product
	err := pgTx.QueryRow(ctx, `
		SELECT id, sku, name, category, stock
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, productID).Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Stock)

	if err != nil {
		return nil, fmt.Errorf("failed to get product with lock: %w", err)
	}
	return &p, nil
}

// MovementExists verifica se a movimentação já foi aplicada para este pedido
func (r *PostgresCatalogRepository) MovementExists(ctx context.Context, tx Tx, orderID, productID, movementType string) (bool, error) {
	pgTx := tx.(*PostgresTx).tx

	var exists bool
	err := pgTx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM stock_movements
			WHERE order_id = $1 AND product_id = $2 AND type = $3
		)
	`, orderID, productID, movementType).Scan(&exists)
	return exists, err
}

// ApplyMovement ajusta o estoque conforme o tipo da movimentação e registra
// o histórico dentro da transação corrente
func (r *PostgresCatalogRepository) ApplyMovement(ctx context.Context, tx Tx, movement *StockMovement) error {
	pgTx := tx.(*PostgresTx).tx

	delta := movement.Quantity
	if movement.Type == MovementTypeDecreased {
		delta = -movement.Quantity
	}

	_, err := pgTx.Exec(ctx, `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, movement.ProductID)
	if err != nil {
		return fmt.Errorf("failed to apply stock movement: %w", err)
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, order_id, quantity, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, movement.ID, movement.ProductID, movement.OrderID, movement.Quantity, movement.Type, movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}
