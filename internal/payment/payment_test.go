package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudkitchen/storefront/internal/payment"
)

func TestHTTPGateway_InitiatePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test_key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(847), req["amount"])
		assert.Equal(t, "INR", req["currency"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "pay_ref_001"})
	}))
	defer server.Close()

	gateway := payment.NewHTTPGateway(server.URL, "test_key", "INR")

	ref, err := gateway.InitiatePayment(context.Background(), "ord_001", 847)
	require.NoError(t, err)
	assert.Equal(t, "pay_ref_001", ref)
}

func TestHTTPGateway_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gateway := payment.NewHTTPGateway(server.URL, "test_key", "INR")

	_, err := gateway.InitiatePayment(context.Background(), "ord_001", 100)
	assert.True(t, errors.Is(err, payment.ErrGatewayUnavailable))
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	gateway := payment.NewHTTPGateway("http://127.0.0.1:1/intents", "test_key", "INR")

	_, err := gateway.InitiatePayment(context.Background(), "ord_001", 100)
	assert.True(t, errors.Is(err, payment.ErrGatewayUnavailable))
}
