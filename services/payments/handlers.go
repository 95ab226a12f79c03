package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PaymentUseCaseInterface define a interface para o use case
type PaymentUseCaseInterface interface {
	InitiatePayment(ctx context.Context, userID string, req InitiatePaymentRequest) (*InitiateResult, error)
	HandleCallback(ctx context.Context, orderID string) string
	ConfirmPayment(ctx context.Context, orderID, transactionID string) error
	GetOrder(ctx context.Context, userID, orderID string) (*Order, error)
	ConfirmOrder(ctx context.Context, req ConfirmActionRequest) error
	CompensateOrder(ctx context.Context, req ConfirmActionRequest) error
}

// PaymentHandler contém os handlers HTTP do coordenador de pagamento
type PaymentHandler struct {
	useCase         PaymentUseCaseInterface
	tracer          trace.Tracer
	frontendBaseURL string
}

// NewPaymentHandler cria uma nova instância de PaymentHandler
func NewPaymentHandler(useCase PaymentUseCaseInterface, tracer trace.Tracer, frontendBaseURL string) *PaymentHandler {
	return &PaymentHandler{
		useCase:         useCase,
		tracer:          tracer,
		frontendBaseURL: frontendBaseURL,
	}
}

// InitiatePayment inicia o pagamento de um checkout
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "initiate_payment")
	defer span.End()

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("address_id", req.AddressID),
		attribute.Float64("amount", req.Amount),
	)

	result, err := h.useCase.InitiatePayment(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUpstreamFailure):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate payment"})
		}
		return
	}

	span.SetAttributes(
		attribute.String("order_id", result.OrderID),
		attribute.String("transaction_id", result.TransactionID),
	)

	c.JSON(http.StatusOK, result)
}

// Callback é invocado pelo redirect do gateway após o pagamento. Protocolo de
// redirect: nunca devolve erro estruturado ao navegador.
func (h *PaymentHandler) Callback(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "payment_callback")
	defer span.End()

	orderID := c.Param("orderID")
	span.SetAttributes(attribute.String("order_id", orderID))

	target := h.useCase.HandleCallback(ctx, orderID)
	c.Redirect(http.StatusFound, target)
}

// Verify é o passo interno de verificação que confirma o pedido
func (h *PaymentHandler) Verify(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "verify_payment")
	defer span.End()

	orderID := c.Query("orderId")
	transactionID := c.Query("transactionId")

	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("transaction_id", transactionID),
	)

	err := h.useCase.ConfirmPayment(ctx, orderID, transactionID)
	if err != nil {
		span.RecordError(err)
		log.Printf("ℹ️ [VERIFY] FAILED for OrderID=%s : %s", orderID, err)

		reason := reasonProcessingFailed
		switch {
		case errors.Is(err, ErrOrderNotFound):
			reason = reasonOrderNotFound
		case errors.Is(err, ErrInvalidRequest):
			reason = reasonInvalidTransaction
		}
		c.Redirect(http.StatusFound, h.frontendBaseURL+"/payment-failed?"+url.Values{
			"orderId": {orderID},
			"reason":  {reason},
		}.Encode())
		return
	}

	c.Redirect(http.StatusFound, h.frontendBaseURL+"/payment-success?"+url.Values{
		"orderId": {orderID},
	}.Encode())
}

// GetOrder devolve um pedido do usuário autenticado
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_order")
	defer span.End()

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return
	}

	order, err := h.useCase.GetOrder(ctx, userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// ConfirmOrder é o endpoint da ação SAGA que confirma o pedido
func (h *PaymentHandler) ConfirmOrder(c *gin.Context) {
	var req ConfirmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := getOrStartSpanFromPayload(c.Request.Context(), "confirm_order", req)
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("trace_id", req.TraceID),
	)

	err := h.useCase.ConfirmOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// CompensateOrder é o endpoint da ação SAGA que desfaz a confirmação
func (h *PaymentHandler) CompensateOrder(c *gin.Context) {
	var req ConfirmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := getOrStartSpanFromPayload(c.Request.Context(), "compensate_order", req)
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("trace_id", req.TraceID),
	)

	err := h.useCase.CompensateOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// HealthCheck verifica a saúde do serviço
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "payments-service",
	})
}
