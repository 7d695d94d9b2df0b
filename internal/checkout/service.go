package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/cart"
	"github.com/mahendra-dev/backend-bangunan/internal/obs"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
	"github.com/mahendra-dev/backend-bangunan/internal/task"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

type orderStore interface {
	PlaceOrder(ctx context.Context, params store.PlaceOrderParams) (store.Order, error)
}

type orderEnqueuer interface {
	EnqueueOrderCreated(ctx context.Context, payload task.OrderCreatedPayload) error
}

// Service turns a priced cart into a persisted order.
type Service struct {
	Cart     *cart.Service
	Store    orderStore
	Tasks    orderEnqueuer
	Currency string
}

// Result bundles the stored order with the quote it was priced from.
type Result struct {
	Order store.Order `json:"order"`
	Quote cart.Quote  `json:"quote"`
}

// PlaceOrder prices the customer's active cart one final time and persists the
// order with those amounts. The quote at checkout is authoritative; whatever
// the cart showed earlier is irrelevant.
func (s *Service) PlaceOrder(ctx context.Context, customerID uuid.UUID, notes *string) (Result, error) {
	activeCart, err := s.Cart.EnsureCart(ctx, &customerID, nil)
	if err != nil {
		return Result{}, fmt.Errorf("load cart: %w", err)
	}
	quote, items, productsByID, err := s.Cart.QuoteSnapshot(ctx, activeCart.ID, &customerID)
	if err != nil {
		return Result{}, err
	}
	if len(quote.Lines) == 0 {
		return Result{}, ErrEmptyCart
	}

	lineByItem := make(map[uuid.UUID]cart.QuoteLine, len(quote.Lines))
	for _, line := range quote.Lines {
		lineByItem[line.ItemID] = line
	}

	orderItems := make([]store.OrderItem, 0, len(items))
	for _, it := range items {
		line, ok := lineByItem[it.ID]
		if !ok {
			// Line was skipped by the engine (product vanished); drop it.
			continue
		}
		unit := "pcs"
		if p, ok := productsByID[it.ProductID]; ok && p.Unit != "" {
			unit = p.Unit
		}
		orderItems = append(orderItems, store.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Unit:      unit,
			UnitPrice: line.UnitPrice,
			Qty:       it.Qty,
			Subtotal:  line.LineSubtotal,
		})
	}

	currency := s.Currency
	if currency == "" {
		currency = "IDR"
	}
	order, err := s.Store.PlaceOrder(ctx, store.PlaceOrderParams{
		CustomerID: customerID,
		CartID:     activeCart.ID,
		Currency:   currency,
		Subtotal:   quote.Subtotal,
		Discount:   quote.Discount,
		Total:      quote.Total,
		Notes:      notes,
		Items:      orderItems,
	})
	if err != nil {
		if obs.OrdersCreatedTotal != nil {
			obs.OrdersCreatedTotal.WithLabelValues("error").Inc()
		}
		return Result{}, fmt.Errorf("place order: %w", err)
	}
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues("ok").Inc()
	}
	if s.Tasks != nil {
		_ = s.Tasks.EnqueueOrderCreated(ctx, task.OrderCreatedPayload{
			OrderID:    order.ID,
			CustomerID: customerID,
			Total:      order.Total,
		})
	}
	return Result{Order: order, Quote: quote}, nil
}
