package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository define a interface para operações de banco de dados de pedidos
type OrderRepository interface {
	// CreateOrder cria um pedido com seus itens
	CreateOrder(ctx context.Context, order *Order) error

	// GetOrder busca um pedido pelo ID, com itens
	GetOrder(ctx context.Context, orderID string) (*Order, error)

	// DeleteOrder remove um pedido e seus itens (compensação da iniciação)
	DeleteOrder(ctx context.Context, orderID string) error

	// UpdateOrderStatus faz a transição de status com semântica compare-and-set:
	// só aplica se o status atual for `from`, e informa se alguma linha mudou
	UpdateOrderStatus(ctx context.Context, orderID, from, to string) (bool, error)

	// GetAddressByIDAndUser busca um endereço restrito ao usuário dono
	GetAddressByIDAndUser(ctx context.Context, addressID, userID string) (*Address, error)
}

// PostgresOrderRepository implementa OrderRepository usando PostgreSQL
type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de PostgresOrderRepository
func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

// CreateOrder cria um pedido com seus itens na mesma transação
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, address_id, amount, payment_method, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.ID, order.UserID, order.AddressID, order.Amount, order.PaymentMethod, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
		`, order.ID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetOrder busca um pedido pelo ID, com itens
func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, address_id, amount, payment_method, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&order.ID, &order.UserID, &order.AddressID, &order.Amount,
		&order.PaymentMethod, &order.Status, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return &order, rows.Err()
}

// DeleteOrder remove um pedido e seus itens
func (r *PostgresOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateOrderStatus aplica a transição de status com compare-and-set.
// O WHERE no status atual é o guard de idempotência sob callbacks duplicados.
func (r *PostgresOrderRepository) UpdateOrderStatus(ctx context.Context, orderID, from, to string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetAddressByIDAndUser busca um endereço restrito ao usuário dono
func (r *PostgresOrderRepository) GetAddressByIDAndUser(ctx context.Context, addressID, userID string) (*Address, error) {
	var address Address
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, line1, city, state, postal_code, created_at
		FROM addresses WHERE id = $1 AND user_id = $2
	`, addressID, userID).Scan(&address.ID, &address.UserID, &address.Line1,
		&address.City, &address.State, &address.PostalCode, &address.CreatedAt)

	if err != nil {
		return nil, err
	}
	return &address, nil
}
