// Package payment abstracts the third-party payment gateway behind a
// capability interface so checkout logic is testable without the widget.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Result is what the gateway hands back when a payment attempt settles.
type Result struct {
	TransactionID string
	Success       bool
}

// Gateway initiates a payment for an amount in integer minor units and
// returns an opaque reference the storefront hands to the widget. The
// success/failure outcome arrives later through the payment callback.
type Gateway interface {
	InitiatePayment(ctx context.Context, orderID string, amount int64) (string, error)
}

// HTTPGateway creates payment intents against a configured gateway endpoint.
// The gateway's own protocol stays out of scope: this client only posts the
// amount and reads back an intent reference.
type HTTPGateway struct {
	url      string
	apiKey   string
	currency string
	client   *http.Client
}

func NewHTTPGateway(url, apiKey, currency string) *HTTPGateway {
	return &HTTPGateway{
		url:      url,
		apiKey:   apiKey,
		currency: currency,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type intentRequest struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type intentResponse struct {
	ID string `json:"id"`
}

func (g *HTTPGateway) InitiatePayment(ctx context.Context, orderID string, amount int64) (string, error) {
	body, err := json.Marshal(intentRequest{OrderID: orderID, Amount: amount, Currency: g.currency})
	if err != nil {
		return "", fmt.Errorf("payment: failed to marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("payment: failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("payment gateway request failed")
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: gateway returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var intent intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return "", fmt.Errorf("payment: failed to decode intent response: %w", err)
	}

	return intent.ID, nil
}
