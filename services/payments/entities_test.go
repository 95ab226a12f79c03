package main

import (
	"strings"
	"testing"
	"time"
)

func TestNewOrder(t *testing.T) {
	// Arrange
	items := []OrderItem{{ProductID: "product-789", Quantity: 2}}

	// Act
	order := NewOrder("order-123", "user-456", "addr-1", 1999.50, items, "TXN-1-ABC")

	// Assert
	if order.ID != "order-123" {
		t.Errorf("Expected ID order-123, got %s", order.ID)
	}
	if order.UserID != "user-456" {
		t.Errorf("Expected UserID user-456, got %s", order.UserID)
	}
	if order.AddressID != "addr-1" {
		t.Errorf("Expected AddressID addr-1, got %s", order.AddressID)
	}
	if order.Amount != 1999.50 {
		t.Errorf("Expected Amount 1999.50, got %f", order.Amount)
	}
	if order.PaymentMethod != "phonepe:TXN-1-ABC" {
		t.Errorf("Expected PaymentMethod phonepe:TXN-1-ABC, got %s", order.PaymentMethod)
	}
	if order.Status != OrderStatusPending {
		t.Errorf("Expected Status %s, got %s", OrderStatusPending, order.Status)
	}
	if len(order.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(order.Items))
	}
	if order.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	// Verify that CreatedAt is within a reasonable time range
	now := time.Now()
	if order.CreatedAt.After(now) || order.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestOrderTransactionID(t *testing.T) {
	// O identificador embutido na iniciação precisa ser recuperável
	order := NewOrder("o1", "u1", "a1", 10, nil, "TXN-99-XYZ")
	if got := order.TransactionID(); got != "TXN-99-XYZ" {
		t.Errorf("Expected TXN-99-XYZ, got %s", got)
	}

	// Método de pagamento ausente ou malformado devolve vazio
	malformed := []string{"", "phonepe", "phonepe:", "stripe:TXN-1", "TXN-1"}
	for _, pm := range malformed {
		order := &Order{PaymentMethod: pm}
		if got := order.TransactionID(); got != "" {
			t.Errorf("Expected empty transaction id for %q, got %s", pm, got)
		}
	}
}

func TestOrderFail(t *testing.T) {
	// Pending pode falhar
	order := NewOrder("o1", "u1", "a1", 10, nil, "TXN-1")
	if err := order.Fail(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if order.Status != OrderStatusFailed {
		t.Errorf("Expected status %s, got %s", OrderStatusFailed, order.Status)
	}

	// Estados terminais não transitam de novo
	if err := order.Fail(); err == nil {
		t.Error("Expected error when failing a non-pending order")
	}

	confirmed := &Order{Status: OrderStatusSuccess}
	if err := confirmed.Fail(); err == nil {
		t.Error("Expected error when failing a confirmed order")
	}
}

func TestOrderStatus(t *testing.T) {
	// Test that constants are defined correctly
	if OrderStatusPending != "pending" {
		t.Errorf("Expected OrderStatusPending to be 'pending', got %s", OrderStatusPending)
	}
	if OrderStatusSuccess != "success" {
		t.Errorf("Expected OrderStatusSuccess to be 'success', got %s", OrderStatusSuccess)
	}
	if OrderStatusFailed != "failed" {
		t.Errorf("Expected OrderStatusFailed to be 'failed', got %s", OrderStatusFailed)
	}
}

func TestNewTransactionID_Unique(t *testing.T) {
	// Identificadores de transação não podem colidir entre tentativas
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := newTransactionID()
		if !strings.HasPrefix(id, "TXN-") {
			t.Fatalf("Expected TXN- prefix, got %s", id)
		}
		if seen[id] {
			t.Fatalf("Duplicate transaction id generated: %s", id)
		}
		seen[id] = true
	}
}
