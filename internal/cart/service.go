package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/discount"
	"github.com/mahendra-dev/backend-bangunan/internal/obs"
	"github.com/mahendra-dev/backend-bangunan/internal/pricing"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

// ErrNotFound indicates the requested cart or line could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

type cartStore interface {
	GetCart(ctx context.Context, id uuid.UUID) (store.Cart, error)
	GetActiveCartByCustomer(ctx context.Context, customerID uuid.UUID) (store.Cart, error)
	GetActiveCartByAnon(ctx context.Context, anonID string) (store.Cart, error)
	CreateCart(ctx context.Context, customerID *uuid.UUID, anonID *string, expiresAt time.Time) (store.Cart, error)
	TouchCart(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	ListCartItems(ctx context.Context, cartID uuid.UUID) ([]store.CartItem, error)
	FindCartItem(ctx context.Context, cartID, productID uuid.UUID) (store.CartItem, error)
	CreateCartItem(ctx context.Context, cartID, productID uuid.UUID, name string, price int64, qty int32) (store.CartItem, error)
	UpdateCartItemQty(ctx context.Context, itemID uuid.UUID, qty int32) error
	GetCartItem(ctx context.Context, itemID uuid.UUID) (store.CartItem, error)
	DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (store.Customer, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]store.Product, error)
	ListActiveDiscounts(ctx context.Context) ([]store.Discount, error)
	ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Store cartStore
	TTL   time.Duration
	Now   func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EnsureCart loads or creates a cart for the provided identifiers. A known
// customer takes precedence over an anonymous cookie.
func (s *Service) EnsureCart(ctx context.Context, customerID *uuid.UUID, anonID *string) (store.Cart, error) {
	if s == nil || s.Store == nil {
		return store.Cart{}, errors.New("cart service not configured")
	}
	expires := s.now().Add(s.ttl())

	if customerID != nil {
		cart, err := s.Store.GetActiveCartByCustomer(ctx, *customerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return s.Store.CreateCart(ctx, customerID, nil, expires)
			}
			return store.Cart{}, err
		}
		_ = s.Store.TouchCart(ctx, cart.ID, expires)
		return cart, nil
	}

	if anonID != nil && *anonID != "" {
		cart, err := s.Store.GetActiveCartByAnon(ctx, *anonID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return s.Store.CreateCart(ctx, nil, anonID, expires)
			}
			return store.Cart{}, err
		}
		_ = s.Store.TouchCart(ctx, cart.ID, expires)
		return cart, nil
	}

	return store.Cart{}, ErrInvalidInput
}

// AddItem inserts or increments a cart line. The captured price is only for
// display; every quote re-resolves unit prices from the live catalog.
func (s *Service) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	expires := s.now().Add(s.ttl())

	item, err := s.Store.FindCartItem(ctx, cartID, productID)
	if err == nil {
		if err := s.Store.UpdateCartItemQty(ctx, item.ID, item.Qty+int32(qty)); err != nil {
			return err
		}
		_ = s.Store.TouchCart(ctx, cartID, expires)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	product, err := s.Store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("product not found: %w", ErrInvalidInput)
		}
		return err
	}
	if !product.Active {
		return fmt.Errorf("product no longer sold: %w", ErrInvalidInput)
	}
	if _, err := s.Store.CreateCartItem(ctx, cartID, productID, product.Name, product.BasePrice, int32(qty)); err != nil {
		return err
	}
	_ = s.Store.TouchCart(ctx, cartID, expires)
	return nil
}

// UpdateQty updates the quantity for a cart line.
func (s *Service) UpdateQty(ctx context.Context, cartID, itemID uuid.UUID, qty int) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	item, err := s.Store.GetCartItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if item.CartID != cartID {
		return ErrNotFound
	}
	if err := s.Store.UpdateCartItemQty(ctx, item.ID, int32(qty)); err != nil {
		return err
	}
	_ = s.Store.TouchCart(ctx, cartID, s.now().Add(s.ttl()))
	return nil
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Store.DeleteCartItem(ctx, cartID, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	_ = s.Store.TouchCart(ctx, cartID, s.now().Add(s.ttl()))
	return nil
}

// QuoteLine is the priced view of one cart line.
type QuoteLine struct {
	ItemID       uuid.UUID `json:"itemId"`
	ProductID    uuid.UUID `json:"productId"`
	Name         string    `json:"name"`
	Qty          int       `json:"qty"`
	UnitPrice    int64     `json:"unitPrice"`
	LineSubtotal int64     `json:"lineSubtotal"`
	Discount     int64     `json:"discount"`
	RuleName     *string   `json:"ruleName,omitempty"`
	LineTotal    int64     `json:"lineTotal"`
}

// Quote is the authoritative priced view of a cart.
type Quote struct {
	CartID   uuid.UUID   `json:"cartId"`
	Lines    []QuoteLine `json:"lines"`
	Subtotal int64       `json:"subtotal"`
	Discount int64       `json:"discount"`
	Total    int64       `json:"total"`
}

// Quote prices the cart against the live catalog, active discount rules, and
// the customer's tier and overrides. Stored line prices are never trusted.
func (s *Service) Quote(ctx context.Context, cartID uuid.UUID, customerID *uuid.UUID) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("cart service not configured")
	}
	cart, err := s.Store.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	items, err := s.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return Quote{}, err
	}
	quote := Quote{CartID: cart.ID, Lines: []QuoteLine{}}
	if len(items) == 0 {
		return quote, nil
	}

	pctx, err := s.buildContext(ctx, customerID)
	if err != nil {
		return Quote{}, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := s.Store.ListProductsByIDs(ctx, ids)
	if err != nil {
		return Quote{}, fmt.Errorf("load products: %w", err)
	}
	products := make([]pricing.Product, 0, len(rows))
	byID := make(map[uuid.UUID]pricing.Product, len(rows))
	for _, p := range rows {
		engineProduct := discount.ToProduct(p)
		products = append(products, engineProduct)
		byID[p.ID] = engineProduct
	}

	engineItems := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		engineItems = append(engineItems, pricing.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Qty:       int(it.Qty),
		})
	}

	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok || it.Qty <= 0 {
			continue
		}
		unit := pricing.ResolveUnitPrice(p, pctx)
		lineSubtotal := unit * int64(it.Qty)
		applied := pricing.ResolveDiscount(p, int(it.Qty), lineSubtotal, pctx)
		line := QuoteLine{
			ItemID:       it.ID,
			ProductID:    it.ProductID,
			Name:         it.Name,
			Qty:          int(it.Qty),
			UnitPrice:    unit,
			LineSubtotal: lineSubtotal,
			Discount:     applied.Amount,
			LineTotal:    lineSubtotal - applied.Amount,
		}
		if line.LineTotal < 0 {
			line.LineTotal = 0
		}
		if applied.Rule != nil {
			name := applied.Rule.Name
			line.RuleName = &name
			if obs.DiscountAppliedTotal != nil {
				obs.DiscountAppliedTotal.WithLabelValues(string(applied.Rule.Kind)).Inc()
			}
			if obs.DiscountAmountTotal != nil {
				obs.DiscountAmountTotal.Add(float64(applied.Amount))
			}
		}
		quote.Lines = append(quote.Lines, line)
	}

	summary := pricing.ComputeCartTotals(engineItems, products, pctx)
	quote.Subtotal = summary.Subtotal
	quote.Discount = summary.Discount
	quote.Total = summary.Total
	if obs.CartQuoteTotal != nil {
		obs.CartQuoteTotal.Inc()
	}
	return quote, nil
}

// QuoteSnapshot exposes the raw engine inputs alongside the totals, for
// checkout to freeze order lines from the same computation.
func (s *Service) QuoteSnapshot(ctx context.Context, cartID uuid.UUID, customerID *uuid.UUID) (Quote, []store.CartItem, map[uuid.UUID]store.Product, error) {
	quote, err := s.Quote(ctx, cartID, customerID)
	if err != nil {
		return Quote{}, nil, nil, err
	}
	items, err := s.Store.ListCartItems(ctx, cartID)
	if err != nil {
		return Quote{}, nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := s.Store.ListProductsByIDs(ctx, ids)
	if err != nil {
		return Quote{}, nil, nil, err
	}
	byID := make(map[uuid.UUID]store.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	return quote, items, byID, nil
}

func (s *Service) buildContext(ctx context.Context, customerID *uuid.UUID) (pricing.Context, error) {
	rules, err := s.Store.ListActiveDiscounts(ctx)
	if err != nil {
		return pricing.Context{}, fmt.Errorf("load discounts: %w", err)
	}
	pctx := pricing.Context{Rules: discount.ToRules(rules), Now: s.now()}
	if customerID != nil {
		customer, err := s.Store.GetCustomer(ctx, *customerID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return pricing.Context{}, fmt.Errorf("load customer: %w", err)
		}
		if err == nil {
			pctx.CustomerID = &customer.ID
			pctx.Wholesale = customer.Wholesale
			overrides, err := s.Store.ListCustomerPrices(ctx, customer.ID)
			if err != nil {
				return pricing.Context{}, fmt.Errorf("load customer prices: %w", err)
			}
			pctx.CustomerPrices = discount.ToCustomerPrices(overrides)
		}
	}
	return pctx, nil
}
