package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetCustomer fetches a customer profile by id.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := s.Pool.QueryRow(ctx,
		"SELECT id, name, phone, wholesale, created_at FROM customers WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Wholesale, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

// ListCustomers returns a page of customers for the admin panel.
func (s *Store) ListCustomers(ctx context.Context, limit, offset int32) ([]Customer, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, name, phone, wholesale, created_at FROM customers ORDER BY name LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Wholesale, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCustomerWholesale toggles the wholesale tier flag for a customer.
func (s *Store) SetCustomerWholesale(ctx context.Context, id uuid.UUID, wholesale bool) error {
	tag, err := s.Pool.Exec(ctx, "UPDATE customers SET wholesale = $2 WHERE id = $1", id, wholesale)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
