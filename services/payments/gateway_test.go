package main

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountToPaise(t *testing.T) {
	// A conversão para a menor unidade da moeda é inteira, sem resto
	assert.Equal(t, int64(199950), amountToPaise(1999.50))
	assert.Equal(t, int64(1000), amountToPaise(10))
	assert.Equal(t, int64(1), amountToPaise(0.01))
	assert.Equal(t, int64(0), amountToPaise(0))
	// Mais de 2 casas decimais arredonda para o paise mais próximo
	assert.Equal(t, int64(100), amountToPaise(0.999))
}

func TestXVerifyChecksum(t *testing.T) {
	// Arrange
	sum := sha256.Sum256([]byte("payload/pg/v1/pay" + "secret-salt"))
	expected := hex.EncodeToString(sum[:]) + "###1"

	// Act & Assert: determinístico e sensível ao segredo
	assert.Equal(t, expected, xVerifyChecksum("payload/pg/v1/pay", "secret-salt", 1))
	assert.Equal(t, xVerifyChecksum("data", "salt", 2), xVerifyChecksum("data", "salt", 2))
	assert.NotEqual(t, xVerifyChecksum("data", "salt-a", 1), xVerifyChecksum("data", "salt-b", 1))
}

func TestPhonePeGateway_Pay(t *testing.T) {
	// Arrange: gateway fake valida caminho, checksum e payload decodificado
	const saltKey = "test-salt"
	var received struct {
		Request string `json:"request"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, payPath, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		// O X-VERIFY precisa bater com sha256(base64 + path + salt)###index
		expected := xVerifyChecksum(received.Request+payPath, saltKey, 1)
		require.Equal(t, expected, r.Header.Get("X-VERIFY"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"code": "PAYMENT_INITIATED",
			"data": {"instrumentResponse": {"redirectInfo": {"url": "https://pay.example/redirect/abc"}}}
		}`))
	}))
	defer server.Close()

	gateway := NewPhonePeGateway(GatewayConfig{
		BaseURL:         server.URL,
		MerchantID:      "MERCHANT1",
		SaltKey:         saltKey,
		SaltIndex:       1,
		CallbackBaseURL: "http://payments.local",
	})

	// Act
	redirectURL, err := gateway.Pay(context.Background(), PayRequest{
		OrderID:       "order-1",
		TransactionID: "TXN-1-AAA",
		UserID:        "user-1",
		Amount:        1999.50,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/redirect/abc", redirectURL)

	// O payload decodificado carrega o valor em paise e o txn id
	decoded, err := base64.StdEncoding.DecodeString(received.Request)
	require.NoError(t, err)

	var payload payPayload
	require.NoError(t, json.Unmarshal(decoded, &payload))
	assert.Equal(t, "MERCHANT1", payload.MerchantID)
	assert.Equal(t, "TXN-1-AAA", payload.MerchantTransactionID)
	assert.Equal(t, int64(199950), payload.Amount)
	assert.Equal(t, "http://payments.local/api/payments/callback/order-1", payload.RedirectURL)
	assert.Equal(t, paymentInstrumentType, payload.PaymentInstrument.Type)
}

func TestPhonePeGateway_Pay_GatewayRejects(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success": false, "code": "BAD_REQUEST"}`))
	}))
	defer server.Close()

	gateway := NewPhonePeGateway(GatewayConfig{BaseURL: server.URL, MerchantID: "M", SaltKey: "s", SaltIndex: 1})

	// Act
	redirectURL, err := gateway.Pay(context.Background(), PayRequest{TransactionID: "TXN-1", Amount: 10})

	// Assert
	assert.Error(t, err)
	assert.Empty(t, redirectURL)
}

func TestPhonePeGateway_Status(t *testing.T) {
	// Arrange
	const saltKey = "test-salt"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pg/v1/status/MERCHANT1/TXN-1-AAA", r.URL.Path)
		require.Equal(t, xVerifyChecksum(r.URL.Path, saltKey, 1), r.Header.Get("X-VERIFY"))
		require.Equal(t, "MERCHANT1", r.Header.Get("X-MERCHANT-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "code": "PAYMENT_SUCCESS"}`))
	}))
	defer server.Close()

	gateway := NewPhonePeGateway(GatewayConfig{
		BaseURL:    server.URL,
		MerchantID: "MERCHANT1",
		SaltKey:    saltKey,
		SaltIndex:  1,
	})

	// Act
	status, err := gateway.Status(context.Background(), "TXN-1-AAA")

	// Assert
	require.NoError(t, err)
	assert.True(t, status.Confirmed())
	assert.Equal(t, GatewayCodeSuccess, status.Code)
}

func TestGatewayStatus_Confirmed(t *testing.T) {
	assert.True(t, (&GatewayStatus{Success: true, Code: "PAYMENT_SUCCESS"}).Confirmed())
	assert.False(t, (&GatewayStatus{Success: true, Code: "PAYMENT_PENDING"}).Confirmed())
	assert.False(t, (&GatewayStatus{Success: false, Code: "PAYMENT_SUCCESS"}).Confirmed())
}
