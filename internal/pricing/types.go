package pricing

import (
	"time"

	"github.com/google/uuid"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Product carries the pricing-relevant fields of a catalog product.
type Product struct {
	ID             uuid.UUID
	Category       string
	BasePrice      Money
	WholesalePrice *Money
}

// CustomerPrice pins a unit price to one customer and product pair.
type CustomerPrice struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Price      Money
}

// Kind identifies how a discount rule computes its amount.
type Kind string

const (
	// KindPercentage deducts a percentage of the line subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed deducts a fixed amount per unit.
	KindFixed Kind = "fixed"
	// KindVolume behaves like a percentage rule, conventionally gated by MinQty.
	KindVolume Kind = "volume"
)

// Rule captures a promotional discount and its eligibility constraints.
// CustomerID is carried through from the store but is not evaluated by
// the engine; see the scope checks in ResolveDiscount.
type Rule struct {
	ID         uuid.UUID
	Name       string
	Kind       Kind
	Value      int64
	ProductID  *uuid.UUID
	Category   *string
	CustomerID *uuid.UUID
	MinQty     *int
	MinAmount  *Money
	StartsAt   *time.Time
	EndsAt     *time.Time
	Active     bool
}

// Context bundles everything the engine needs to price a line. It is
// assembled by the caller from a store snapshot and discarded afterwards.
type Context struct {
	CustomerID     *uuid.UUID
	Wholesale      bool
	Rules          []Rule
	CustomerPrices []CustomerPrice
	Now            time.Time
}

func (c Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Item describes a cart line. Price is the display price captured when the
// line was added; the engine always re-derives the unit price from the live
// product.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Price     Money
	Qty       int
}

// Applied reports the single rule selected for a line, if any.
type Applied struct {
	Amount Money
	Rule   *Rule
}

// Summary aggregates computed cart totals.
type Summary struct {
	Subtotal Money
	Discount Money
	Total    Money
}
