package notification_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudkitchen/storefront/internal/notification"
)

func TestWebhookDispatcher_Delivers(t *testing.T) {
	var mu sync.Mutex
	var received []notification.Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload notification.Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := notification.NewWebhookDispatcher(server.URL, 8)

	dispatcher.Dispatch(notification.Payload{
		ClientName:    "CloudKitchen Demo",
		OrderID:       "ord_001",
		CustomerName:  "John Doe",
		Phone:         "+91-98765-43210",
		Address:       "123 MG Road",
		Items:         []string{"2x Butter Chicken", "4x Naan"},
		PaymentStatus: "success",
		TransactionID: "rzp_test_123456",
		Priority:      1,
		Status:        "accepted",
		Timestamp:     time.Now().UTC(),
	})
	dispatcher.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "ord_001", received[0].OrderID)
	assert.Equal(t, []string{"2x Butter Chicken", "4x Naan"}, received[0].Items)
	assert.Equal(t, "accepted", received[0].Status)
}

func TestWebhookDispatcher_FailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dispatcher := notification.NewWebhookDispatcher(server.URL, 8)

	// Dispatch has no error path: a failing endpoint must not surface.
	dispatcher.Dispatch(notification.Payload{OrderID: "ord_002", Status: "ready"})
	dispatcher.Close()
}

func TestWebhookDispatcher_UnreachableEndpoint(t *testing.T) {
	dispatcher := notification.NewWebhookDispatcher("http://127.0.0.1:1/webhook", 8)

	dispatcher.Dispatch(notification.Payload{OrderID: "ord_003", Status: "pending"})
	dispatcher.Close()
}

func TestWebhookDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := notification.NewWebhookDispatcher(server.URL, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			dispatcher.Dispatch(notification.Payload{OrderID: "ord_004"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(release)
	dispatcher.Close()
}
