package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, name, slug, category, unit, base_price, wholesale_price, stock, image_url, active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.Unit, &p.BasePrice, &p.WholesalePrice,
		&p.Stock, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ListProductsParams filters the public catalog listing.
type ListProductsParams struct {
	Query    string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
	Limit    int32
	Offset   int32
}

func productFilter(params ListProductsParams) (string, []any) {
	clauses := []string{"active"}
	args := []any{}
	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		clauses = append(clauses, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if c := strings.TrimSpace(params.Category); c != "" {
		args = append(args, c)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if params.MinPrice != nil {
		args = append(args, *params.MinPrice)
		clauses = append(clauses, fmt.Sprintf("base_price >= $%d", len(args)))
	}
	if params.MaxPrice != nil {
		args = append(args, *params.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("base_price <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func productOrder(sort string) string {
	switch sort {
	case "price:asc":
		return "base_price ASC, name ASC"
	case "price:desc":
		return "base_price DESC, name ASC"
	case "name:desc":
		return "name DESC"
	default:
		return "name ASC"
	}
}

// CountProducts returns the number of active products matching the filters.
func (s *Store) CountProducts(ctx context.Context, params ListProductsParams) (int64, error) {
	where, args := productFilter(params)
	var total int64
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM products WHERE "+where, args...).Scan(&total)
	return total, err
}

// ListProducts returns a page of active products.
func (s *Store) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	where, args := productFilter(params)
	args = append(args, params.Limit, params.Offset)
	sql := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, where, productOrder(params.Sort), len(args)-1, len(args))
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProductBySlug fetches a single active product by slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1 AND active", slug)
	return scanProduct(row)
}

// GetProduct fetches a product by id regardless of active state.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

// ListProductsByIDs fetches the products referenced by a cart, active or not.
func (s *Store) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListCategories returns the distinct categories of active products.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, "SELECT DISTINCT category FROM products WHERE active ORDER BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateProductParams captures the admin product creation payload.
type CreateProductParams struct {
	Name           string
	Slug           string
	Category       string
	Unit           string
	BasePrice      int64
	WholesalePrice *int64
	Stock          int32
	ImageURL       *string
}

// CreateProduct inserts a product and returns the stored row.
func (s *Store) CreateProduct(ctx context.Context, params CreateProductParams) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO products (name, slug, category, unit, base_price, wholesale_price, stock, image_url, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING `+productColumns,
		params.Name, params.Slug, params.Category, params.Unit,
		params.BasePrice, params.WholesalePrice, params.Stock, params.ImageURL)
	return scanProduct(row)
}

// UpdateProduct mutates an existing product and returns the stored row.
func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, params CreateProductParams) (Product, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, slug = $3, category = $4, unit = $5,
		    base_price = $6, wholesale_price = $7, stock = $8, image_url = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, params.Name, params.Slug, params.Category, params.Unit,
		params.BasePrice, params.WholesalePrice, params.Stock, params.ImageURL)
	return scanProduct(row)
}

// ArchiveProduct hides a product from the storefront without deleting history.
func (s *Store) ArchiveProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, "UPDATE products SET active = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
