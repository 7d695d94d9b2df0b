package store

import (
	"context"

	"github.com/google/uuid"
)

// UpsertCustomerPrice creates or replaces the override for a customer/product pair.
func (s *Store) UpsertCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, price int64) (CustomerPrice, error) {
	var cp CustomerPrice
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO customer_prices (customer_id, product_id, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id) DO UPDATE SET price = EXCLUDED.price, updated_at = now()
		RETURNING customer_id, product_id, price, updated_at`,
		customerID, productID, price).
		Scan(&cp.CustomerID, &cp.ProductID, &cp.Price, &cp.UpdatedAt)
	return cp, err
}

// ListCustomerPrices returns every override for one customer.
func (s *Store) ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]CustomerPrice, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT customer_id, product_id, price, updated_at FROM customer_prices WHERE customer_id = $1 ORDER BY updated_at DESC",
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CustomerPrice
	for rows.Next() {
		var cp CustomerPrice
		if err := rows.Scan(&cp.CustomerID, &cp.ProductID, &cp.Price, &cp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// DeleteCustomerPrice removes an override.
func (s *Store) DeleteCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx,
		"DELETE FROM customer_prices WHERE customer_id = $1 AND product_id = $2", customerID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
