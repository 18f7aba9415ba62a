package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, orderInput *Order) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderInput.ID).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	queryOrder := `
		INSERT INTO orders (id, customer_name, customer_phone, customer_address, total, status, payment_status, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, queryOrder,
		orderInput.ID,
		orderInput.Customer.Name,
		orderInput.Customer.Phone,
		orderInput.Customer.Address,
		orderInput.Total,
		string(orderInput.Status),
		string(orderInput.PaymentStatus),
		orderInput.TransactionID,
		orderInput.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateOrderID
		}
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (order_id, position, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, item := range orderInput.Items {
		_, err = tx.Exec(ctx, queryItem, orderInput.ID, i, item.Name, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", orderInput.ID, err)
		}
	}

	return nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	queryOrder := `
		SELECT id, customer_name, customer_phone, customer_address, total, status, payment_status, transaction_id, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, id).Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.Phone,
		&o.Customer.Address,
		&o.Total,
		&o.Status,
		&o.PaymentStatus,
		&o.TransactionID,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	queryItems := `
		SELECT name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, queryItems, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order id %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order id %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order id %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	// seq preserves insertion order across restarts; the dashboard depends
	// on a stable listing.
	queryOrders := `
		SELECT id, customer_name, customer_phone, customer_address, total, status, payment_status, transaction_id, created_at
		FROM orders
		ORDER BY seq
	`

	rows, err := r.db.Query(ctx, queryOrders)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.Customer.Name,
			&o.Customer.Phone,
			&o.Customer.Address,
			&o.Total,
			&o.Status,
			&o.PaymentStatus,
			&o.TransactionID,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	queryItems := `
		SELECT order_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`
	itemRows, err := r.db.Query(ctx, queryItems, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID uuid.UUID
		var item OrderItem
		if err := itemRows.Scan(&orderID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	orders := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *ordersMap[id])
	}

	return orders, nil
}

func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus) error {
	// Conditional update: applies only if the status still matches what the
	// caller validated against.
	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("repository: failed to update order status for %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		if _, getErr := r.GetOrderByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrStatusConflict
	}

	return nil
}

func (r *postgresRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, transactionID string) error {
	query := `
		UPDATE orders
		SET payment_status = $1,
		    transaction_id = CASE WHEN $2 <> '' THEN $2 ELSE transaction_id END
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(status), transactionID, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update payment status for %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
