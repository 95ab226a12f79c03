package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dtm-labs/client/dtmcli"
	"go.opentelemetry.io/otel/trace"
)

// ConfirmationOrchestrator abstrai a SAGA de confirmação de pedido
type ConfirmationOrchestrator interface {
	SubmitOrderConfirmation(ctx context.Context, order *Order) error
}

// DTMConfirmationOrchestrator implementa ConfirmationOrchestrator usando DTM
type DTMConfirmationOrchestrator struct{}

// NewDTMConfirmationOrchestrator cria uma nova instância do orquestrador
func NewDTMConfirmationOrchestrator() *DTMConfirmationOrchestrator {
	return &DTMConfirmationOrchestrator{}
}

// SubmitOrderConfirmation registra a SAGA de confirmação: marca o pedido como
// confirmado e debita o estoque dos itens, com compensações em ambos os lados
func (co *DTMConfirmationOrchestrator) SubmitOrderConfirmation(ctx context.Context, order *Order) (err error) {
	// Extract trace context from the incoming context
	var traceID, spanID string
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		traceID = span.SpanContext().TraceID().String()
		spanID = span.SpanContext().SpanID().String()
	}

	// MustGenGid entra em pânico quando o coordenador está fora do ar;
	// a falha precisa subir como erro para o verify redirecionar para falha
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Confirmation SAGA aborted, coordinator unreachable: %v", r)
			err = fmt.Errorf("failed to reach saga coordinator: %v", r)
		}
	}()
	gid := dtmcli.MustGenGid(getEnv("DTM_SERVER", "http://dtm:36789/api/dtmsvr"))

	log.Printf("🚀 Starting confirmation SAGA | TraceID: %s | GID: %s | OrderID: %s", traceID, gid, order.ID)

	stockLines := make([]StockLine, 0, len(order.Items))
	for _, item := range order.Items {
		stockLines = append(stockLines, StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	selfURL := getEnv("SERVICE_URL", "http://payments-service:8080")
	storefrontURL := getEnv("STOREFRONT_SERVICE_URL", "http://storefront-service:8080")

	saga := dtmcli.NewSaga(getEnv("DTM_SERVER", "http://dtm:36789/api/dtmsvr"), gid).
		Add(
			selfURL+"/api/orders/confirm",
			selfURL+"/api/orders/compensate",
			&ConfirmActionRequest{
				OrderID: order.ID,
				TraceID: traceID,
				SpanID:  spanID,
			},
		).
		Add(
			storefrontURL+"/api/stock/decrease",
			storefrontURL+"/api/stock/compensate",
			&StockActionRequest{
				OrderID: order.ID,
				Items:   stockLines,
				TraceID: traceID,
				SpanID:  spanID,
			},
		)

	err = saga.Submit()

	if err != nil {
		log.Printf("❌ Confirmation SAGA failed: %v", err)
		return fmt.Errorf("failed to submit confirmation saga: %w", err)
	}

	log.Printf("✅ Confirmation SAGA submitted - GID: %s, OrderID: %s", gid, order.ID)

	return nil
}
