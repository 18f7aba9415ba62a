// Package notification delivers order events to an external webhook.
// Delivery is best-effort: the dispatcher never blocks or fails its caller,
// and a lost notification never rolls back the change that produced it.
package notification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Payload is the webhook body sent on order creation and on every status
// change. Items are rendered as "<qty>x <name>" strings.
type Payload struct {
	ClientName    string    `json:"client_name"`
	OrderID       string    `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Items         []string  `json:"order"`
	PaymentStatus string    `json:"payment_status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Priority      int       `json:"priority"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

type Dispatcher interface {
	Dispatch(payload Payload)
}

// WebhookDispatcher queues payloads and posts them from a single worker
// goroutine. Dispatch never blocks: when the queue is full the payload is
// dropped and logged.
type WebhookDispatcher struct {
	url    string
	client *http.Client
	queue  chan Payload
	wg     sync.WaitGroup
}

func NewWebhookDispatcher(url string, queueSize int) *WebhookDispatcher {
	d := &WebhookDispatcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		queue:  make(chan Payload, queueSize),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *WebhookDispatcher) Dispatch(payload Payload) {
	select {
	case d.queue <- payload:
	default:
		log.Warn().Str("order_id", payload.OrderID).Msg("notification queue full, dropping payload")
	}
}

// Close stops accepting payloads and waits for the queued ones to be sent.
func (d *WebhookDispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *WebhookDispatcher) run() {
	defer d.wg.Done()

	for payload := range d.queue {
		d.send(payload)
	}
}

func (d *WebhookDispatcher) send(payload Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("failed to marshal webhook payload")
		return
	}

	resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("order_id", payload.OrderID).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status_code", resp.StatusCode).Str("order_id", payload.OrderID).Msg("webhook returned non-success status")
		return
	}

	log.Debug().Str("order_id", payload.OrderID).Str("status", payload.Status).Msg("webhook delivered")
}

// NopDispatcher is used when no webhook URL is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(Payload) {}
