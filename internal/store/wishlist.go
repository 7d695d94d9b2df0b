package store

import (
	"context"

	"github.com/google/uuid"
)

// AddWishlistItem is idempotent per (customer, product).
func (s *Store) AddWishlistItem(ctx context.Context, customerID, productID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO wishlists (customer_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (customer_id, product_id) DO NOTHING`,
		customerID, productID)
	return err
}

func (s *Store) RemoveWishlistItem(ctx context.Context, customerID, productID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx,
		"DELETE FROM wishlists WHERE customer_id = $1 AND product_id = $2",
		customerID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListWishlist(ctx context.Context, customerID uuid.UUID) ([]WishlistItem, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, customer_id, product_id, created_at FROM wishlists WHERE customer_id = $1 ORDER BY created_at DESC",
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WishlistItem
	for rows.Next() {
		var w WishlistItem
		if err := rows.Scan(&w.ID, &w.CustomerID, &w.ProductID, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
