package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store provides Postgres-backed persistence for the storefront.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store around the provided pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Product is a catalog product row.
type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Category       string
	Unit           string
	BasePrice      int64
	WholesalePrice *int64
	Stock          int32
	ImageURL       *string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Customer is a registered buyer. Wholesale marks bulk/business accounts.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Wholesale bool
	CreatedAt time.Time
}

// CustomerPrice pins a unit price to a customer and product pair.
type CustomerPrice struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Price      int64
	UpdatedAt  time.Time
}

// Discount is a promotional rule row.
type Discount struct {
	ID         uuid.UUID
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
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Cart is a shopping cart owned by a customer or an anonymous visitor.
type Cart struct {
	ID         uuid.UUID
	CustomerID *uuid.UUID
	AnonID     *string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is one cart line. Price is the display price captured on add.
type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     int64
	Qty       int32
}

// Order is a placed order with its authoritative totals.
type Order struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Status     string
	Currency   string
	Subtotal   int64
	Discount   int64
	Total      int64
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem is one order line frozen at checkout time.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Unit      string
	UnitPrice int64
	Qty       int32
	Subtotal  int64
}

// WishlistItem links a customer to a saved product.
type WishlistItem struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	CreatedAt  time.Time
}
