package order

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cloudkitchen/storefront/internal/checkout"
	"github.com/cloudkitchen/storefront/internal/notification"
	"github.com/cloudkitchen/storefront/internal/payment"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// CheckoutResult is what a successful checkout submission returns: the
// created order, the priced summary (including the delivery fee), and the
// payment reference the storefront hands to the widget.
type CheckoutResult struct {
	Order      *Order           `json:"order"`
	Summary    checkout.Summary `json:"summary"`
	PaymentRef string           `json:"payment_ref,omitempty"`
}

type Service interface {
	CreateOrder(ctx context.Context, customer Customer, items []OrderItem) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (iter.Seq[Order], error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, target OrderStatus) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, transactionID string) (*Order, error)
	Checkout(ctx context.Context, customer Customer, lines []checkout.Line) (*CheckoutResult, error)
}

type service struct {
	orderRepo  Repository
	calc       *checkout.Calculator
	gateway    payment.Gateway
	notifier   notification.Dispatcher
	clientName string
}

// NewService wires the order rules. gateway may be nil when no payment
// provider is configured; checkout then skips payment initiation.
func NewService(orderRepo Repository, calc *checkout.Calculator, gateway payment.Gateway, notifier notification.Dispatcher, clientName string) Service {
	return &service{
		orderRepo:  orderRepo,
		calc:       calc,
		gateway:    gateway,
		notifier:   notifier,
		clientName: clientName,
	}
}

func (s *service) CreateOrder(ctx context.Context, customer Customer, items []OrderItem) (*Order, error) {
	if customer.Name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if customer.Phone == "" {
		return nil, fmt.Errorf("%w: customer phone is required", ErrValidation)
	}
	if customer.Address == "" {
		return nil, fmt.Errorf("%w: customer address is required", ErrValidation)
	}
	if len(items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	var total int64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %q must be at least 1", ErrValidation, item.Name)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: unit price for %q cannot be negative", ErrValidation, item.Name)
		}
		total += item.LineTotal()
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}

	newOrder := &Order{
		ID:            id,
		Customer:      customer,
		Items:         items,
		Total:         total, // snapshot; later price changes never touch it
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.orderRepo.CreateOrder(ctx, newOrder); err != nil {
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", newOrder.ID).Int64("total", newOrder.Total).Msg("service: order created")
	s.notify(newOrder)

	return newOrder, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

// ListOrders returns a lazy, restartable sequence over the store's insertion
// order, narrowed by the filter. The snapshot is taken once; iterating twice
// replays the same orders.
func (s *service) ListOrders(ctx context.Context, filter ListFilter) (iter.Seq[Order], error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return func(yield func(Order) bool) {
		for _, o := range orders {
			if !filter.Matches(&o) {
				continue
			}
			if !yield(o) {
				return
			}
		}
	}, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, target OrderStatus) (*Order, error) {
	for {
		current, err := s.orderRepo.GetOrderByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				log.Warn().Stringer("order_id", id).Stringer("target_status", target).Msg("service: order not found, cannot update status")
				return nil, ErrOrderNotFound
			}
			log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
			return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
		}

		if err := validateTransition(current, target); err != nil {
			log.Warn().
				Stringer("order_id", current.ID).
				Stringer("current_status", current.Status).
				Stringer("target_status", target).
				Msg("service: invalid status transition attempt")
			return nil, err
		}

		err = s.orderRepo.UpdateOrderStatus(ctx, id, current.Status, target)
		if errors.Is(err, ErrStatusConflict) {
			// Another transition landed first. Re-validate against the
			// resulting state: last validated wins, never last write.
			continue
		}
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				return nil, ErrOrderNotFound
			}
			log.Error().Err(err).Stringer("order_id", id).Stringer("target_status", target).Msg("service: failed to update order status in repository")
			return nil, fmt.Errorf("service: failed to update order status: %w", err)
		}

		log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).Stringer("new_status", target).Msg("service: order status updated")

		current.Status = target
		s.notify(current)

		return current, nil
	}
}

// validateTransition checks the state machine edge plus the payment gate: an
// order whose payment failed cannot advance out of pending, though it can
// still be cancelled.
func validateTransition(current *Order, target OrderStatus) error {
	if !current.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, current.Status, target)
	}
	if current.PaymentStatus == PaymentFailed && current.Status == StatusPending && target != StatusCancelled {
		return fmt.Errorf("%w: payment failed, order cannot advance past %s", ErrInvalidStatusTransition, StatusPending)
	}
	return nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, transactionID string) (*Order, error) {
	if err := s.orderRepo.UpdatePaymentStatus(ctx, id, status, transactionID); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found, cannot update payment status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to update payment status in repository")
		return nil, fmt.Errorf("service: failed to update payment status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("payment_status", status).Msg("service: payment status updated")

	return s.GetOrderByID(ctx, id)
}

// Checkout consumes the cart exactly once: it prices the effective lines,
// creates the order from them, and initiates payment for the summary total
// (subtotal plus delivery fee). The order total itself stays the sum of line
// totals.
func (s *service) Checkout(ctx context.Context, customer Customer, lines []checkout.Line) (*CheckoutResult, error) {
	summary, err := s.calc.QuoteForCheckout(lines)
	if err != nil {
		return nil, err
	}

	effective := checkout.EffectiveLines(lines)
	items := make([]OrderItem, 0, len(effective))
	for _, line := range effective {
		items = append(items, OrderItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	newOrder, err := s.CreateOrder(ctx, customer, items)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Order:   newOrder,
		Summary: summary,
	}

	if s.gateway == nil {
		return result, nil
	}

	ref, err := s.gateway.InitiatePayment(ctx, newOrder.ID.String(), summary.Total)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", newOrder.ID).Msg("service: failed to initiate payment")
		return nil, fmt.Errorf("service: failed to initiate payment for order %s: %w", newOrder.ID, err)
	}
	result.PaymentRef = ref

	return result, nil
}

// notify dispatches the webhook payload for the order's current state.
// Fire-and-forget: the dispatcher never fails the caller.
func (s *service) notify(o *Order) {
	items := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}

	s.notifier.Dispatch(notification.Payload{
		ClientName:    s.clientName,
		OrderID:       o.ID.String(),
		CustomerName:  o.Customer.Name,
		Phone:         o.Customer.Phone,
		Address:       o.Customer.Address,
		Items:         items,
		PaymentStatus: o.PaymentStatus.String(),
		TransactionID: o.TransactionID,
		Priority:      1,
		Status:        o.Status.String(),
		Timestamp:     time.Now().UTC(),
	})
}
