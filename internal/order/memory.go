package order

import (
	"context"
	"sync"

	"github.com/gofrs/uuid"
)

// memoryRepository is the default backend. Orders live in a map; ids keeps
// insertion order because the operator dashboard relies on a stable listing.
// One mutex covers the whole store, which makes every status compare-and-set
// atomic per order.
type memoryRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
	ids    []uuid.UUID
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		orders: make(map[uuid.UUID]*Order),
	}
}

func (r *memoryRepository) CreateOrder(ctx context.Context, orderInput *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[orderInput.ID]; exists {
		return ErrDuplicateOrderID
	}

	stored := cloneOrder(orderInput)
	r.orders[orderInput.ID] = stored
	r.ids = append(r.ids, orderInput.ID)

	return nil
}

func (r *memoryRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	return cloneOrder(stored), nil
}

func (r *memoryRepository) ListOrders(ctx context.Context) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := make([]Order, 0, len(r.ids))
	for _, id := range r.ids {
		orders = append(orders, *cloneOrder(r.orders[id]))
	}

	return orders, nil
}

func (r *memoryRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}

	if stored.Status != from {
		return ErrStatusConflict
	}

	stored.Status = to
	return nil
}

func (r *memoryRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}

	stored.PaymentStatus = status
	if transactionID != "" {
		stored.TransactionID = transactionID
	}

	return nil
}

// cloneOrder copies the order and its items so callers never share slices
// with the store.
func cloneOrder(o *Order) *Order {
	cloned := *o
	cloned.Items = make([]OrderItem, len(o.Items))
	copy(cloned.Items, o.Items)
	return &cloned
}
