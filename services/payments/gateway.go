package main

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Caminhos fixos do gateway (contrato do provedor)
const (
	payPath          = "/pg/v1/pay"
	statusPathPrefix = "/pg/v1/status"

	paymentInstrumentType = "PAY_PAGE"

	// GatewayCodeSuccess é o código de pagamento aprovado reportado pelo gateway
	GatewayCodeSuccess = "PAYMENT_SUCCESS"
)

// PaymentGateway abstrai as chamadas ao gateway de pagamento
type PaymentGateway interface {
	// Pay submete a iniciação de pagamento e devolve a URL de redirecionamento
	Pay(ctx context.Context, req PayRequest) (string, error)

	// Status consulta o status de uma transação no gateway
	Status(ctx context.Context, transactionID string) (*GatewayStatus, error)
}

// PayRequest representa os parâmetros de uma iniciação de pagamento
type PayRequest struct {
	OrderID       string
	TransactionID string
	UserID        string
	Amount        float64
}

// GatewayStatus representa a resposta de status do gateway
type GatewayStatus struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
}

// Confirmed indica se o gateway aprovou o pagamento
func (s *GatewayStatus) Confirmed() bool {
	return s.Success && s.Code == GatewayCodeSuccess
}

// GatewayConfig contém a configuração do gateway de pagamento
type GatewayConfig struct {
	BaseURL         string
	MerchantID      string
	SaltKey         string
	SaltIndex       int
	CallbackBaseURL string
	Timeout         time.Duration
}

// PhonePeGateway implementa PaymentGateway contra a API do PhonePe
type PhonePeGateway struct {
	client *resty.Client
	config GatewayConfig
}

// NewPhonePeGateway cria uma nova instância de PhonePeGateway
func NewPhonePeGateway(config GatewayConfig) *PhonePeGateway {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout)

	return &PhonePeGateway{
		client: client,
		config: config,
	}
}

// payPayload é o corpo estruturado enviado ao gateway. Transitório: existe
// só durante a chamada e nunca é persistido.
type payPayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// Pay submete a iniciação de pagamento ao gateway
func (g *PhonePeGateway) Pay(ctx context.Context, req PayRequest) (string, error) {
	payload := payPayload{
		MerchantID:            g.config.MerchantID,
		MerchantTransactionID: req.TransactionID,
		MerchantUserID:        req.UserID,
		Amount:                amountToPaise(req.Amount),
		RedirectURL:           g.config.CallbackBaseURL + "/api/payments/callback/" + req.OrderID,
		RedirectMode:          "REDIRECT",
		PaymentInstrument:     paymentInstrument{Type: paymentInstrumentType},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payment payload: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(body)

	var result payResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-VERIFY", xVerifyChecksum(encoded+payPath, g.config.SaltKey, g.config.SaltIndex)).
		SetBody(map[string]string{"request": encoded}).
		SetResult(&result).
		Post(payPath)

	if err != nil {
		return "", fmt.Errorf("payment gateway call failed: %w", err)
	}
	if !resp.IsSuccess() || !result.Success {
		return "", fmt.Errorf("payment gateway rejected request: status=%d code=%s", resp.StatusCode(), result.Code)
	}

	redirectURL := result.Data.InstrumentResponse.RedirectInfo.URL
	if redirectURL == "" {
		return "", fmt.Errorf("payment gateway returned no redirect url: code=%s", result.Code)
	}
	return redirectURL, nil
}

// Status consulta o status de uma transação no gateway
func (g *PhonePeGateway) Status(ctx context.Context, transactionID string) (*GatewayStatus, error) {
	path := fmt.Sprintf("%s/%s/%s", statusPathPrefix, g.config.MerchantID, transactionID)

	var result GatewayStatus
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-VERIFY", xVerifyChecksum(path, g.config.SaltKey, g.config.SaltIndex)).
		SetHeader("X-MERCHANT-ID", g.config.MerchantID).
		SetResult(&result).
		Get(path)

	if err != nil {
		return nil, fmt.Errorf("status check failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("status check rejected: status=%d", resp.StatusCode())
	}
	return &result, nil
}

// amountToPaise converte o valor para a menor unidade da moeda
// (ex.: 1999.50 rupias -> 199950 paise)
func amountToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// xVerifyChecksum assina o conteúdo com o segredo compartilhado sem
// transmiti-lo: sha256(conteúdo + saltKey) + "###" + saltIndex
func xVerifyChecksum(data, saltKey string, saltIndex int) string {
	sum := sha256.Sum256([]byte(data + saltKey))
	return hex.EncodeToString(sum[:]) + "###" + strconv.Itoa(saltIndex)
}
