package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const discountColumns = `id, name, kind, value, product_id, category, customer_id, min_qty, min_amount, starts_at, ends_at, active, created_at, updated_at`

func scanDiscount(row pgx.Row) (Discount, error) {
	var d Discount
	err := row.Scan(&d.ID, &d.Name, &d.Kind, &d.Value, &d.ProductID, &d.Category, &d.CustomerID,
		&d.MinQty, &d.MinAmount, &d.StartsAt, &d.EndsAt, &d.Active, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Discount{}, ErrNotFound
	}
	return d, err
}

func (s *Store) queryDiscounts(ctx context.Context, sql string, args ...any) ([]Discount, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDiscounts returns every discount rule, newest first.
func (s *Store) ListDiscounts(ctx context.Context) ([]Discount, error) {
	return s.queryDiscounts(ctx, "SELECT "+discountColumns+" FROM discounts ORDER BY created_at DESC")
}

// ListActiveDiscounts returns the rules worth evaluating for a quote: active
// and not yet expired. The engine re-applies the full window check itself.
func (s *Store) ListActiveDiscounts(ctx context.Context) ([]Discount, error) {
	return s.queryDiscounts(ctx,
		"SELECT "+discountColumns+" FROM discounts WHERE active AND (ends_at IS NULL OR ends_at >= now()) ORDER BY created_at")
}

// GetDiscount fetches one rule by id.
func (s *Store) GetDiscount(ctx context.Context, id uuid.UUID) (Discount, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+discountColumns+" FROM discounts WHERE id = $1", id)
	return scanDiscount(row)
}

// DiscountParams captures the admin create/update payload.
type DiscountParams struct {
	Name       string
	Kind       string
	Value      int64
	ProductID  *uuid.UUID
	Category   *string
	CustomerID *uuid.UUID
	MinQty     *int32
	MinAmount  *int64
	StartsAt   *time.Time
	EndsAt     *time.Time
	Active     bool
}

// CreateDiscount inserts a rule and returns the stored row.
func (s *Store) CreateDiscount(ctx context.Context, params DiscountParams) (Discount, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO discounts (name, kind, value, product_id, category, customer_id, min_qty, min_amount, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+discountColumns,
		params.Name, params.Kind, params.Value, params.ProductID, params.Category, params.CustomerID,
		params.MinQty, params.MinAmount, params.StartsAt, params.EndsAt, params.Active)
	return scanDiscount(row)
}

// UpdateDiscount mutates an existing rule and returns the stored row.
func (s *Store) UpdateDiscount(ctx context.Context, id uuid.UUID, params DiscountParams) (Discount, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE discounts
		SET name = $2, kind = $3, value = $4, product_id = $5, category = $6, customer_id = $7,
		    min_qty = $8, min_amount = $9, starts_at = $10, ends_at = $11,
		    active = $12, updated_at = now()
		WHERE id = $1
		RETURNING `+discountColumns,
		id, params.Name, params.Kind, params.Value, params.ProductID, params.Category, params.CustomerID,
		params.MinQty, params.MinAmount, params.StartsAt, params.EndsAt, params.Active)
	return scanDiscount(row)
}

// DeleteDiscount removes a rule.
func (s *Store) DeleteDiscount(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM discounts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
