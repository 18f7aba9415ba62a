package order

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrderID = errors.New("order with this ID already exists")

	// ErrStatusConflict is returned by UpdateOrderStatus when the order's
	// status no longer equals the status the caller validated against. The
	// service re-validates against the current state and decides.
	ErrStatusConflict = errors.New("order status changed since validation")
)

// Repository owns order storage. UpdateOrderStatus is a compare-and-set on
// the status column so concurrent transitions on one order serialize:
// the write applies only if the status still equals from.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, transactionID string) error
}
