package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order representa um pedido no sistema
type Order struct {
	ID            string      `json:"id" db:"id"`
	UserID        string      `json:"user_id" db:"user_id"`
	AddressID     string      `json:"address_id" db:"address_id"`
	Amount        float64     `json:"amount" db:"amount"`
	PaymentMethod string      `json:"payment_method" db:"payment_method"`
	Status        string      `json:"status" db:"status"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem representa uma linha de um pedido
type OrderItem struct {
	ProductID string `json:"product_id" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// NewOrder cria um pedido pendente com o identificador de transação embutido
// no campo de método de pagamento ("phonepe:<transactionID>"), para que o
// callback consiga recuperá-lo depois
func NewOrder(id, userID, addressID string, amount float64, items []OrderItem, transactionID string) *Order {
	return &Order{
		ID:            id,
		UserID:        userID,
		AddressID:     addressID,
		Amount:        amount,
		PaymentMethod: gatewayName + ":" + transactionID,
		Status:        OrderStatusPending,
		Items:         items,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

// TransactionID recupera o identificador de transação embutido no pedido.
// Devolve vazio se o método de pagamento estiver ausente ou malformado.
func (o *Order) TransactionID() string {
	gateway, txnID, found := strings.Cut(o.PaymentMethod, ":")
	if !found || gateway != gatewayName || txnID == "" {
		return ""
	}
	return txnID
}

// Fail marca o pedido como falho
func (o *Order) Fail() error {
	if o.Status != OrderStatusPending {
		return errors.New("only pending orders can be marked as failed")
	}

	o.Status = OrderStatusFailed
	return nil
}

// OrderStatus representa os possíveis status de um pedido.
// success e failed são terminais.
const (
	OrderStatusPending = "pending"
	OrderStatusSuccess = "success"
	OrderStatusFailed  = "failed"
)

const gatewayName = "phonepe"

// Address representa um endereço de entrega de um usuário
type Address struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Line1      string    `json:"line1" db:"line1"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// newTransactionID gera um identificador de transação único por tentativa
// de pagamento (timestamp + entropia)
func newTransactionID() string {
	entropy := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), entropy)
}
