package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel"
)

func TestDecreaseStockHandler_InsufficientStockAbortsSaga(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockStockRepository)
	mockTx := new(MockTx)
	mockRepo.On("BeginTx", mock.Anything).Return(mockTx, nil)
	mockRepo.On("GetProductForUpdate", mock.Anything, mockTx, "p1").Return(&Product{ID: "p1", Stock: 1}, nil)
	mockRepo.On("MovementExists", mock.Anything, mockTx, "order-1", "p1", MovementTypeDecreased).Return(false, nil)
	mockTx.On("Rollback").Return(nil)

	handler := NewStorefrontHandler(nil, NewStockUseCase(mockRepo), otel.Tracer("storefront-test"))

	r := gin.New()
	r.POST("/api/stock/decrease", handler.DecreaseStock)

	body, _ := json.Marshal(StockActionRequest{
		OrderID: "order-1",
		Items:   []StockLine{{ProductID: "p1", Quantity: 5}},
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/stock/decrease", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Assert: falha de negócio responde 409 para o DTM abortar a SAGA e
	// compensar, em vez de tentar de novo
	assert.Equal(t, http.StatusConflict, w.Code)
	mockTx.AssertNotCalled(t, "Commit")
}
