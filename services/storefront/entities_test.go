package main

import (
	"testing"
	"time"
)

func TestNewCartItem(t *testing.T) {
	// Arrange
	id := "cart-item-123"
	userID := "user-456"
	productID := "product-789"
	quantity := 2

	// Act
	item := NewCartItem(id, userID, productID, quantity)

	// Assert
	if item.ID != id {
		t.Errorf("Expected ID %s, got %s", id, item.ID)
	}
	if item.UserID != userID {
		t.Errorf("Expected UserID %s, got %s", userID, item.UserID)
	}
	if item.ProductID != productID {
		t.Errorf("Expected ProductID %s, got %s", productID, item.ProductID)
	}
	if item.Quantity != quantity {
		t.Errorf("Expected Quantity %d, got %d", quantity, item.Quantity)
	}
	if item.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if item.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set")
	}

	// Verify that CreatedAt is within a reasonable time range
	now := time.Now()
	if item.CreatedAt.After(now) || item.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestNewWishlistItem(t *testing.T) {
	// Act
	item := NewWishlistItem("wish-1", "user-456", "product-789")

	// Assert
	if item.ID != "wish-1" {
		t.Errorf("Expected ID wish-1, got %s", item.ID)
	}
	if item.UserID != "user-456" {
		t.Errorf("Expected UserID user-456, got %s", item.UserID)
	}
	if item.ProductID != "product-789" {
		t.Errorf("Expected ProductID product-789, got %s", item.ProductID)
	}
	if item.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestMovementTypes(t *testing.T) {
	// Test that constants are defined correctly
	if MovementTypeDecreased != "decreased" {
		t.Errorf("Expected MovementTypeDecreased to be 'decreased', got %s", MovementTypeDecreased)
	}
	if MovementTypeRestocked != "restocked" {
		t.Errorf("Expected MovementTypeRestocked to be 'restocked', got %s", MovementTypeRestocked)
	}
}
