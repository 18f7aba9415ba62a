package order

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (os OrderStatus) String() string {
	return string(os)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func (ps PaymentStatus) String() string {
	return string(ps)
}

// allowedTransitions is the fulfillment state machine. The happy path is
// linear; cancelled is reachable only from pending. delivered and cancelled
// are terminal.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusAccepted:  true,
		StatusCancelled: true,
	},
	StatusAccepted: {
		StatusPreparing: true,
	},
	StatusPreparing: {
		StatusReady: true,
	},
	StatusReady: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the state machine has an edge from the
// current status to the target.
func (os OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return allowedTransitions[os][target]
}

// ParseStatus maps an external status label onto the closed enum. Some
// operator clients send "confirmed" where the enum says "accepted", so that
// label is folded in here.
func ParseStatus(s string) (OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "accepted", "confirmed":
		return StatusAccepted, true
	case "preparing":
		return StatusPreparing, true
	case "ready":
		return StatusReady, true
	case "delivered":
		return StatusDelivered, true
	case "cancelled":
		return StatusCancelled, true
	default:
		return "", false
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return PaymentPending, true
	case "success":
		return PaymentSuccess, true
	case "failed":
		return PaymentFailed, true
	default:
		return "", false
	}
}

type Customer struct {
	Name    string `json:"name" db:"customer_name"`
	Phone   string `json:"phone" db:"customer_phone"`
	Address string `json:"address" db:"customer_address"`
}

// OrderItem is one line of an order. UnitPrice is in integer minor units;
// money never touches floating point.
type OrderItem struct {
	Name      string `json:"name" db:"name"`
	Quantity  int    `json:"quantity" db:"quantity"`
	UnitPrice int64  `json:"unit_price" db:"unit_price"`
}

// LineTotal is quantity times unit price.
func (oi OrderItem) LineTotal() int64 {
	return int64(oi.Quantity) * oi.UnitPrice
}

type Order struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Customer      Customer      `json:"customer"`
	Items         []OrderItem   `json:"items" db:"-"`
	Total         int64         `json:"total" db:"total"` // snapshot at creation, never recomputed
	Status        OrderStatus   `json:"status" db:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	TransactionID string        `json:"transaction_id,omitempty" db:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// ListFilter narrows ListOrders output. Query is matched case-insensitively
// as a substring of the order id, customer name, or phone. An empty Status
// means any status.
type ListFilter struct {
	Query  string
	Status OrderStatus
}

// Matches mirrors the operator dashboard filter: text over id/name/phone,
// exact status.
func (f ListFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(o.ID.String()), q) ||
		strings.Contains(strings.ToLower(o.Customer.Name), q) ||
		strings.Contains(strings.ToLower(o.Customer.Phone), q)
}
