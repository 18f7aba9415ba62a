package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudkitchen/storefront/internal/order"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	statuses := []order.OrderStatus{
		order.StatusPending,
		order.StatusAccepted,
		order.StatusPreparing,
		order.StatusReady,
		order.StatusDelivered,
		order.StatusCancelled,
	}

	legal := map[order.OrderStatus][]order.OrderStatus{
		order.StatusPending:   {order.StatusAccepted, order.StatusCancelled},
		order.StatusAccepted:  {order.StatusPreparing},
		order.StatusPreparing: {order.StatusReady},
		order.StatusReady:     {order.StatusDelivered},
		order.StatusDelivered: {},
		order.StatusCancelled: {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "transition %s -> %s", from, to)
		}
	}
}

func TestOrderStatus_TerminalStatesHaveNoEdges(t *testing.T) {
	for _, terminal := range []order.OrderStatus{order.StatusDelivered, order.StatusCancelled} {
		for _, to := range []order.OrderStatus{
			order.StatusPending,
			order.StatusAccepted,
			order.StatusPreparing,
			order.StatusReady,
			order.StatusDelivered,
			order.StatusCancelled,
		} {
			assert.False(t, terminal.CanTransitionTo(to), "terminal %s must not transition to %s", terminal, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected order.OrderStatus
		ok       bool
	}{
		{"pending", order.StatusPending, true},
		{"accepted", order.StatusAccepted, true},
		{"Confirmed", order.StatusAccepted, true}, // stray operator label folds into accepted
		{"PREPARING", order.StatusPreparing, true},
		{"ready", order.StatusReady, true},
		{"delivered", order.StatusDelivered, true},
		{"cancelled", order.StatusCancelled, true},
		{"shipped", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			status, ok := order.ParseStatus(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestListFilter_Matches(t *testing.T) {
	o := &order.Order{
		Customer: order.Customer{
			Name:  "John Doe",
			Phone: "+91-98765-43210",
		},
		Status: order.StatusPending,
	}

	tests := []struct {
		name     string
		filter   order.ListFilter
		expected bool
	}{
		{"empty_filter_matches", order.ListFilter{}, true},
		{"name_substring_case_insensitive", order.ListFilter{Query: "john"}, true},
		{"phone_substring", order.ListFilter{Query: "98765"}, true},
		{"status_and_query_both_match", order.ListFilter{Query: "john", Status: order.StatusPending}, true},
		{"status_mismatch", order.ListFilter{Query: "john", Status: order.StatusReady}, false},
		{"query_mismatch", order.ListFilter{Query: "jane"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Matches(o))
		})
	}
}

func TestOrderItem_LineTotal(t *testing.T) {
	item := order.OrderItem{Name: "Butter Chicken", Quantity: 2, UnitPrice: 299}
	assert.Equal(t, int64(598), item.LineTotal())
}
