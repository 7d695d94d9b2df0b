package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cartColumns = `id, customer_id, anon_id, expires_at, created_at, updated_at`

func scanCart(row pgx.Row) (Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.CustomerID, &c.AnonID, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	return c, err
}

// GetCart fetches a cart by id.
func (s *Store) GetCart(ctx context.Context, id uuid.UUID) (Cart, error) {
	return scanCart(s.Pool.QueryRow(ctx, "SELECT "+cartColumns+" FROM carts WHERE id = $1", id))
}

// GetActiveCartByCustomer fetches the customer's unexpired cart.
func (s *Store) GetActiveCartByCustomer(ctx context.Context, customerID uuid.UUID) (Cart, error) {
	return scanCart(s.Pool.QueryRow(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE customer_id = $1 AND expires_at > now() ORDER BY updated_at DESC LIMIT 1",
		customerID))
}

// GetActiveCartByAnon fetches the anonymous visitor's unexpired cart.
func (s *Store) GetActiveCartByAnon(ctx context.Context, anonID string) (Cart, error) {
	return scanCart(s.Pool.QueryRow(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE anon_id = $1 AND expires_at > now() ORDER BY updated_at DESC LIMIT 1",
		anonID))
}

// CreateCart inserts a cart for a customer or an anonymous visitor.
func (s *Store) CreateCart(ctx context.Context, customerID *uuid.UUID, anonID *string, expiresAt time.Time) (Cart, error) {
	return scanCart(s.Pool.QueryRow(ctx,
		"INSERT INTO carts (customer_id, anon_id, expires_at) VALUES ($1, $2, $3) RETURNING "+cartColumns,
		customerID, anonID, expiresAt))
}

// TouchCart extends the cart expiry.
func (s *Store) TouchCart(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	_, err := s.Pool.Exec(ctx, "UPDATE carts SET expires_at = $2, updated_at = now() WHERE id = $1", id, expiresAt)
	return err
}

// ListCartItems returns the lines of a cart in insertion order.
func (s *Store) ListCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, cart_id, product_id, name, price, qty FROM cart_items WHERE cart_id = $1 ORDER BY created_at",
		cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// FindCartItem locates the line for a product within a cart.
func (s *Store) FindCartItem(ctx context.Context, cartID, productID uuid.UUID) (CartItem, error) {
	var it CartItem
	err := s.Pool.QueryRow(ctx,
		"SELECT id, cart_id, product_id, name, price, qty FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cartID, productID).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price, &it.Qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartItem{}, ErrNotFound
	}
	return it, err
}

// CreateCartItem inserts a new cart line.
func (s *Store) CreateCartItem(ctx context.Context, cartID, productID uuid.UUID, name string, price int64, qty int32) (CartItem, error) {
	var it CartItem
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, name, price, qty)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, cart_id, product_id, name, price, qty`,
		cartID, productID, name, price, qty).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price, &it.Qty)
	return it, err
}

// UpdateCartItemQty sets the quantity of an existing line.
func (s *Store) UpdateCartItemQty(ctx context.Context, itemID uuid.UUID, qty int32) error {
	tag, err := s.Pool.Exec(ctx, "UPDATE cart_items SET qty = $2 WHERE id = $1", itemID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCartItem fetches one line by id.
func (s *Store) GetCartItem(ctx context.Context, itemID uuid.UUID) (CartItem, error) {
	var it CartItem
	err := s.Pool.QueryRow(ctx,
		"SELECT id, cart_id, product_id, name, price, qty FROM cart_items WHERE id = $1", itemID).
		Scan(&it.ID, &it.CartID, &it.ProductID, &it.Name, &it.Price, &it.Qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return CartItem{}, ErrNotFound
	}
	return it, err
}

// DeleteCartItem removes a line from a cart.
func (s *Store) DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM cart_items WHERE id = $1 AND cart_id = $2", itemID, cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
