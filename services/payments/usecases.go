package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Taxonomia de erros do coordenador de pagamento
var (
	ErrInvalidRequest  = fmt.Errorf("invalid request")
	ErrOrderNotFound   = fmt.Errorf("order not found")
	ErrUpstreamFailure = fmt.Errorf("payment gateway failure")
)

// Motivos usados nos redirects de falha do callback
const (
	reasonOrderNotFound      = "order-not-found"
	reasonInvalidTransaction = "invalid-transaction"
	reasonProcessingFailed   = "processing-failed"
)

// InitiateResult é o resultado de uma iniciação de pagamento bem sucedida
type InitiateResult struct {
	RedirectURL   string `json:"redirect_url"`
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
}

// PaymentUseCase contém a lógica do ciclo de vida do pagamento
type PaymentUseCase struct {
	repository   OrderRepository
	gateway      PaymentGateway
	orchestrator ConfirmationOrchestrator

	frontendBaseURL string
	selfBaseURL     string
}

// NewPaymentUseCase cria uma nova instância de PaymentUseCase
func NewPaymentUseCase(
	repository OrderRepository,
	gateway PaymentGateway,
	orchestrator ConfirmationOrchestrator,
	frontendBaseURL string,
	selfBaseURL string,
) *PaymentUseCase {
	return &PaymentUseCase{
		repository:      repository,
		gateway:         gateway,
		orchestrator:    orchestrator,
		frontendBaseURL: frontendBaseURL,
		selfBaseURL:     selfBaseURL,
	}
}

// InitiatePayment inicia um pagamento: valida o endereço do usuário, cria o
// pedido pendente com o identificador de transação embutido e submete a
// requisição assinada ao gateway
func (uc *PaymentUseCase) InitiatePayment(ctx context.Context, userID string, req InitiatePaymentRequest) (*InitiateResult, error) {
	// 1. O endereço precisa pertencer ao usuário que está pagando
	_, err := uc.repository.GetAddressByIDAndUser(ctx, req.AddressID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: address does not belong to user", ErrInvalidRequest)
		}
		return nil, fmt.Errorf("failed to validate address: %w", err)
	}

	// 2. Identificador de transação único por tentativa
	transactionID := newTransactionID()

	items := make([]OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, OrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	// 3. Persiste o pedido pendente antes de chamar o gateway
	order := NewOrder(uuid.New().String(), userID, req.AddressID, req.Amount, items, transactionID)
	if err := uc.repository.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Printf("➡️ [INITIATE] OrderID: %s | TxnID: %s | Amount: %.2f", order.ID, transactionID, req.Amount)

	// 4. Submete o payload assinado ao gateway
	redirectURL, err := uc.gateway.Pay(ctx, PayRequest{
		OrderID:       order.ID,
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        req.Amount,
	})
	if err != nil {
		// Compensação: nenhum pedido pendente órfão sobrevive a uma
		// iniciação que falhou
		if delErr := uc.repository.DeleteOrder(ctx, order.ID); delErr != nil {
			log.Printf("❌ Failed to compensate pending order %s: %v", order.ID, delErr)
		}
		log.Printf("❌ [INITIATE] Gateway failed for OrderID=%s: %v", order.ID, err)
		return nil, fmt.Errorf("%w: %s", ErrUpstreamFailure, err)
	}

	log.Printf("✅ [INITIATE] OrderID: %s redirecting to gateway", order.ID)
	return &InitiateResult{
		RedirectURL:   redirectURL,
		TransactionID: transactionID,
		OrderID:       order.ID,
	}, nil
}

// HandleCallback reconcilia o retorno do gateway. É um fluxo de redirect de
// navegador: toda falha vira um redirect com motivo legível, nunca um erro
// estruturado para o chamador.
func (uc *PaymentUseCase) HandleCallback(ctx context.Context, orderID string) string {
	order, err := uc.repository.GetOrder(ctx, orderID)
	if err != nil {
		log.Printf("❌ [CALLBACK] Order not found: %s", orderID)
		return uc.failureRedirect(orderID, reasonOrderNotFound)
	}

	transactionID := order.TransactionID()
	if transactionID == "" {
		log.Printf("❌ [CALLBACK] OrderID=%s has no embedded transaction id", orderID)
		return uc.failureRedirect(orderID, reasonInvalidTransaction)
	}

	status, err := uc.gateway.Status(ctx, transactionID)
	if err != nil {
		log.Printf("❌ [CALLBACK] Status check failed for OrderID=%s: %v", orderID, err)
		return uc.failureRedirect(orderID, reasonProcessingFailed)
	}

	if !status.Confirmed() {
		log.Printf("ℹ️ [CALLBACK] Payment not approved for OrderID=%s: code=%s", orderID, status.Code)
		// Recusa do gateway é terminal: o pedido pendente vira failed
		if err := order.Fail(); err == nil {
			if _, err := uc.repository.UpdateOrderStatus(ctx, order.ID, OrderStatusPending, OrderStatusFailed); err != nil {
				log.Printf("❌ [CALLBACK] Failed to mark order %s as failed: %v", order.ID, err)
			}
		}
		return uc.failureRedirect(orderID, status.Code)
	}

	log.Printf("✅ [CALLBACK] Payment approved for OrderID=%s, redirecting to verify", orderID)
	return fmt.Sprintf("%s/api/payments/verify?%s", uc.selfBaseURL, url.Values{
		"orderId":       {orderID},
		"transactionId": {transactionID},
	}.Encode())
}

// ConfirmPayment é o passo de verificação que marca o pedido como confirmado.
// Idempotente: verificar de novo um pedido já confirmado não reaplica efeitos.
func (uc *PaymentUseCase) ConfirmPayment(ctx context.Context, orderID, transactionID string) error {
	order, err := uc.repository.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	// O identificador embutido na iniciação precisa bater com o confirmado
	if order.TransactionID() != transactionID {
		return fmt.Errorf("%w: transaction id mismatch", ErrInvalidRequest)
	}

	switch order.Status {
	case OrderStatusSuccess:
		log.Printf("ℹ️ [IDEMPOTENCY] OrderID=%s already confirmed", orderID)
		return nil
	case OrderStatusFailed:
		return fmt.Errorf("%w: order is in a terminal failed state", ErrInvalidRequest)
	}

	// O gateway é a fonte da verdade: o verify é um endpoint aberto de
	// navegador, então a aprovação é reconferida antes de confirmar
	status, err := uc.gateway.Status(ctx, transactionID)
	if err != nil {
		log.Printf("❌ [VERIFY] Status re-check failed for OrderID=%s: %v", orderID, err)
		return fmt.Errorf("%w: %s", ErrUpstreamFailure, err)
	}
	if !status.Confirmed() {
		log.Printf("ℹ️ [VERIFY] Payment not approved for OrderID=%s: code=%s", orderID, status.Code)
		return fmt.Errorf("%w: payment not approved by gateway", ErrInvalidRequest)
	}

	// A SAGA confirma o pedido (compare-and-set) e debita o estoque;
	// as branches são idempotentes sob retries do DTM
	if err := uc.orchestrator.SubmitOrderConfirmation(ctx, order); err != nil {
		log.Printf("❌ [VERIFY] SAGA submit failed for OrderID=%s: %v", orderID, err)
		return fmt.Errorf("failed to submit confirmation: %w", err)
	}

	log.Printf("✅ [VERIFY] Confirmation submitted for OrderID=%s", orderID)
	return nil
}

// GetOrder busca um pedido restrito ao usuário dono
func (uc *PaymentUseCase) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	order, err := uc.repository.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ConfirmOrder é a ação SAGA que aplica a transição pending -> success.
// O compare-and-set persistido garante no máximo uma transição por pedido.
func (uc *PaymentUseCase) ConfirmOrder(ctx context.Context, req ConfirmActionRequest) error {
	log.Printf("➡️ [CONFIRM ORDER] OrderID: %s", req.OrderID)

	updated, err := uc.repository.UpdateOrderStatus(ctx, req.OrderID, OrderStatusPending, OrderStatusSuccess)
	if err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}
	if !updated {
		order, err := uc.repository.GetOrder(ctx, req.OrderID)
		if err != nil {
			return fmt.Errorf("failed to recheck order: %w", err)
		}
		if order.Status == OrderStatusSuccess {
			log.Printf("ℹ️ [IDEMPOTENCY] OrderID=%s already confirmed", req.OrderID)
			return nil
		}
		return fmt.Errorf("order %s is not pending", req.OrderID)
	}

	log.Printf("✅ Order confirmed: %s", req.OrderID)
	return nil
}

// CompensateOrder desfaz a confirmação quando uma branch posterior falha
func (uc *PaymentUseCase) CompensateOrder(ctx context.Context, req ConfirmActionRequest) error {
	log.Printf("↩️ [COMPENSATE ORDER] OrderID: %s", req.OrderID)

	updated, err := uc.repository.UpdateOrderStatus(ctx, req.OrderID, OrderStatusSuccess, OrderStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to compensate order: %w", err)
	}
	if !updated {
		// Pedido ainda pendente (a confirmação nunca aplicou) também falha
		if _, err := uc.repository.UpdateOrderStatus(ctx, req.OrderID, OrderStatusPending, OrderStatusFailed); err != nil {
			return fmt.Errorf("failed to compensate order: %w", err)
		}
	}

	log.Printf("♻️  Order compensated (failed): %s", req.OrderID)
	return nil
}

func (uc *PaymentUseCase) failureRedirect(orderID, reason string) string {
	return fmt.Sprintf("%s/payment-failed?%s", uc.frontendBaseURL, url.Values{
		"orderId": {orderID},
		"reason":  {reason},
	}.Encode())
}
