package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/cart"
	"github.com/mahendra-dev/backend-bangunan/internal/checkout"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
	"github.com/mahendra-dev/backend-bangunan/internal/task"
)

type fakeBackend struct {
	carts     map[uuid.UUID]store.Cart
	items     map[uuid.UUID]store.CartItem
	products  map[uuid.UUID]store.Product
	customers map[uuid.UUID]store.Customer
	discounts []store.Discount
	overrides []store.CustomerPrice

	placed  []store.PlaceOrderParams
	cleared []uuid.UUID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		carts:     map[uuid.UUID]store.Cart{},
		items:     map[uuid.UUID]store.CartItem{},
		products:  map[uuid.UUID]store.Product{},
		customers: map[uuid.UUID]store.Customer{},
	}
}

func (f *fakeBackend) GetCart(_ context.Context, id uuid.UUID) (store.Cart, error) {
	c, ok := f.carts[id]
	if !ok {
		return store.Cart{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeBackend) GetActiveCartByCustomer(_ context.Context, customerID uuid.UUID) (store.Cart, error) {
	for _, c := range f.carts {
		if c.CustomerID != nil && *c.CustomerID == customerID {
			return c, nil
		}
	}
	return store.Cart{}, store.ErrNotFound
}

func (f *fakeBackend) GetActiveCartByAnon(_ context.Context, anonID string) (store.Cart, error) {
	return store.Cart{}, store.ErrNotFound
}

func (f *fakeBackend) CreateCart(_ context.Context, customerID *uuid.UUID, anonID *string, expiresAt time.Time) (store.Cart, error) {
	c := store.Cart{ID: uuid.New(), CustomerID: customerID, AnonID: anonID, ExpiresAt: expiresAt}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeBackend) TouchCart(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	return nil
}

func (f *fakeBackend) ListCartItems(_ context.Context, cartID uuid.UUID) ([]store.CartItem, error) {
	var out []store.CartItem
	for _, it := range f.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeBackend) FindCartItem(_ context.Context, cartID, productID uuid.UUID) (store.CartItem, error) {
	for _, it := range f.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return store.CartItem{}, store.ErrNotFound
}

func (f *fakeBackend) CreateCartItem(_ context.Context, cartID, productID uuid.UUID, name string, price int64, qty int32) (store.CartItem, error) {
	it := store.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Name: name, Price: price, Qty: qty}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeBackend) UpdateCartItemQty(_ context.Context, itemID uuid.UUID, qty int32) error {
	it, ok := f.items[itemID]
	if !ok {
		return store.ErrNotFound
	}
	it.Qty = qty
	f.items[itemID] = it
	return nil
}

func (f *fakeBackend) GetCartItem(_ context.Context, itemID uuid.UUID) (store.CartItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return store.CartItem{}, store.ErrNotFound
	}
	return it, nil
}

func (f *fakeBackend) DeleteCartItem(_ context.Context, cartID, itemID uuid.UUID) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeBackend) GetProduct(_ context.Context, id uuid.UUID) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeBackend) GetCustomer(_ context.Context, id uuid.UUID) (store.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return store.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeBackend) ListProductsByIDs(_ context.Context, ids []uuid.UUID) ([]store.Product, error) {
	var out []store.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListActiveDiscounts(_ context.Context) ([]store.Discount, error) {
	return f.discounts, nil
}

func (f *fakeBackend) ListCustomerPrices(_ context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error) {
	var out []store.CustomerPrice
	for _, cp := range f.overrides {
		if cp.CustomerID == customerID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeBackend) PlaceOrder(_ context.Context, params store.PlaceOrderParams) (store.Order, error) {
	f.placed = append(f.placed, params)
	f.cleared = append(f.cleared, params.CartID)
	for id, it := range f.items {
		if it.CartID == params.CartID {
			delete(f.items, id)
		}
	}
	return store.Order{
		ID:         uuid.New(),
		CustomerID: params.CustomerID,
		Status:     "NEW",
		Currency:   params.Currency,
		Subtotal:   params.Subtotal,
		Discount:   params.Discount,
		Total:      params.Total,
		Notes:      params.Notes,
		CreatedAt:  time.Now(),
	}, nil
}

type recordingEnqueuer struct {
	payloads []task.OrderCreatedPayload
}

func (r *recordingEnqueuer) EnqueueOrderCreated(_ context.Context, payload task.OrderCreatedPayload) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestPlaceOrder(t *testing.T) {
	fs := newFakeBackend()
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	cartSvc := &cart.Service{Store: fs, TTL: time.Hour, Now: func() time.Time { return now }}
	queue := &recordingEnqueuer{}
	svc := &checkout.Service{Cart: cartSvc, Store: fs, Tasks: queue, Currency: "IDR"}

	tokoID := uuid.New()
	fs.customers[tokoID] = store.Customer{ID: tokoID, Name: "Toko Jaya", Wholesale: true}

	semenID := uuid.New()
	grosir := int64(78_000_00)
	fs.products[semenID] = store.Product{ID: semenID, Name: "Semen Tiga Roda 50kg", Category: "semen", Unit: "sak", BasePrice: 85_000_00, WholesalePrice: &grosir, Active: true}

	minQty := int32(3)
	fs.discounts = []store.Discount{
		{ID: uuid.New(), Name: "Borongan Semen", Kind: "percentage", Value: 10, MinQty: &minQty, Active: true},
	}

	c, err := cartSvc.EnsureCart(context.Background(), &tokoID, nil)
	require.NoError(t, err)
	require.NoError(t, cartSvc.AddItem(context.Background(), c.ID, semenID, 4))

	t.Run("order freezes the quote amounts", func(t *testing.T) {
		result, err := svc.PlaceOrder(context.Background(), tokoID, nil)
		require.NoError(t, err)

		require.Equal(t, int64(312_000_00), result.Order.Subtotal)
		require.Equal(t, int64(31_200_00), result.Order.Discount)
		require.Equal(t, int64(280_800_00), result.Order.Total)
		require.Equal(t, "NEW", result.Order.Status)
		require.Equal(t, "IDR", result.Order.Currency)

		require.Len(t, fs.placed, 1)
		placed := fs.placed[0]
		require.Len(t, placed.Items, 1)
		require.Equal(t, "sak", placed.Items[0].Unit)
		require.Equal(t, int64(78_000_00), placed.Items[0].UnitPrice)
		require.Equal(t, int32(4), placed.Items[0].Qty)

		require.Len(t, queue.payloads, 1)
		require.Equal(t, result.Order.ID, queue.payloads[0].OrderID)
		require.Equal(t, result.Order.Total, queue.payloads[0].Total)
	})

	t.Run("cart is emptied after checkout", func(t *testing.T) {
		items, err := fs.ListCartItems(context.Background(), c.ID)
		require.NoError(t, err)
		require.Empty(t, items)

		_, err = svc.PlaceOrder(context.Background(), tokoID, nil)
		require.ErrorIs(t, err, checkout.ErrEmptyCart)
	})
}
