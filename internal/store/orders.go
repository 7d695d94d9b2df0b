package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, customer_id, status, currency, subtotal, discount, total, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.Currency, &o.Subtotal, &o.Discount, &o.Total,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

// PlaceOrderParams carries everything needed to persist an order atomically.
type PlaceOrderParams struct {
	CustomerID uuid.UUID
	CartID     uuid.UUID
	Currency   string
	Subtotal   int64
	Discount   int64
	Total      int64
	Notes      *string
	Items      []OrderItem
}

// PlaceOrder persists the order and its lines and empties the cart in one
// transaction. The caller supplies totals computed by the pricing engine.
func (s *Store) PlaceOrder(ctx context.Context, params PlaceOrderParams) (Order, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	order, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, status, currency, subtotal, discount, total, notes)
		VALUES ($1, 'NEW', $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		params.CustomerID, params.Currency, params.Subtotal, params.Discount, params.Total, params.Notes))
	if err != nil {
		return Order{}, err
	}
	for _, it := range params.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit, unit_price, qty, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			order.ID, it.ProductID, it.Name, it.Unit, it.UnitPrice, it.Qty, it.Subtotal); err != nil {
			return Order{}, err
		}
	}
	if _, err := tx.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1", params.CartID); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ListOrdersByCustomer returns a page of the customer's orders, newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int32) ([]Order, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetOrder fetches one order by id.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(s.Pool.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
}

// ListOrderItems returns the lines of an order.
func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, order_id, product_id, name, unit, unit_price, qty, subtotal FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Unit, &it.UnitPrice, &it.Qty, &it.Subtotal); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateOrderStatus transitions an order and returns the stored row.
func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (Order, error) {
	return scanOrder(s.Pool.QueryRow(ctx,
		"UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 RETURNING "+orderColumns,
		id, status))
}
