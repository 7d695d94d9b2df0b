package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/cart"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type fakeCartStore struct {
	carts     map[uuid.UUID]store.Cart
	items     map[uuid.UUID]store.CartItem
	products  map[uuid.UUID]store.Product
	customers map[uuid.UUID]store.Customer
	discounts []store.Discount
	overrides []store.CustomerPrice
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{
		carts:     map[uuid.UUID]store.Cart{},
		items:     map[uuid.UUID]store.CartItem{},
		products:  map[uuid.UUID]store.Product{},
		customers: map[uuid.UUID]store.Customer{},
	}
}

func (f *fakeCartStore) GetCart(_ context.Context, id uuid.UUID) (store.Cart, error) {
	c, ok := f.carts[id]
	if !ok {
		return store.Cart{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeCartStore) GetActiveCartByCustomer(_ context.Context, customerID uuid.UUID) (store.Cart, error) {
	for _, c := range f.carts {
		if c.CustomerID != nil && *c.CustomerID == customerID {
			return c, nil
		}
	}
	return store.Cart{}, store.ErrNotFound
}

func (f *fakeCartStore) GetActiveCartByAnon(_ context.Context, anonID string) (store.Cart, error) {
	for _, c := range f.carts {
		if c.AnonID != nil && *c.AnonID == anonID {
			return c, nil
		}
	}
	return store.Cart{}, store.ErrNotFound
}

func (f *fakeCartStore) CreateCart(_ context.Context, customerID *uuid.UUID, anonID *string, expiresAt time.Time) (store.Cart, error) {
	c := store.Cart{ID: uuid.New(), CustomerID: customerID, AnonID: anonID, ExpiresAt: expiresAt}
	f.carts[c.ID] = c
	return c, nil
}

func (f *fakeCartStore) TouchCart(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	c, ok := f.carts[id]
	if !ok {
		return store.ErrNotFound
	}
	c.ExpiresAt = expiresAt
	f.carts[id] = c
	return nil
}

func (f *fakeCartStore) ListCartItems(_ context.Context, cartID uuid.UUID) ([]store.CartItem, error) {
	var out []store.CartItem
	for _, it := range f.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCartStore) FindCartItem(_ context.Context, cartID, productID uuid.UUID) (store.CartItem, error) {
	for _, it := range f.items {
		if it.CartID == cartID && it.ProductID == productID {
			return it, nil
		}
	}
	return store.CartItem{}, store.ErrNotFound
}

func (f *fakeCartStore) CreateCartItem(_ context.Context, cartID, productID uuid.UUID, name string, price int64, qty int32) (store.CartItem, error) {
	it := store.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Name: name, Price: price, Qty: qty}
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeCartStore) UpdateCartItemQty(_ context.Context, itemID uuid.UUID, qty int32) error {
	it, ok := f.items[itemID]
	if !ok {
		return store.ErrNotFound
	}
	it.Qty = qty
	f.items[itemID] = it
	return nil
}

func (f *fakeCartStore) GetCartItem(_ context.Context, itemID uuid.UUID) (store.CartItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return store.CartItem{}, store.ErrNotFound
	}
	return it, nil
}

func (f *fakeCartStore) DeleteCartItem(_ context.Context, cartID, itemID uuid.UUID) error {
	it, ok := f.items[itemID]
	if !ok || it.CartID != cartID {
		return store.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeCartStore) GetProduct(_ context.Context, id uuid.UUID) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeCartStore) GetCustomer(_ context.Context, id uuid.UUID) (store.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return store.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeCartStore) ListProductsByIDs(_ context.Context, ids []uuid.UUID) ([]store.Product, error) {
	var out []store.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCartStore) ListActiveDiscounts(_ context.Context) ([]store.Discount, error) {
	return f.discounts, nil
}

func (f *fakeCartStore) ListCustomerPrices(_ context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error) {
	var out []store.CustomerPrice
	for _, cp := range f.overrides {
		if cp.CustomerID == customerID {
			out = append(out, cp)
		}
	}
	return out, nil
}

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func newTestService(fs *fakeCartStore) *cart.Service {
	return &cart.Service{Store: fs, TTL: 24 * time.Hour, Now: func() time.Time { return testNow }}
}

func TestEnsureCart(t *testing.T) {
	fs := newFakeCartStore()
	svc := newTestService(fs)
	tokoID := uuid.New()

	t.Run("creates then reuses customer cart", func(t *testing.T) {
		first, err := svc.EnsureCart(context.Background(), &tokoID, nil)
		require.NoError(t, err)
		require.NotNil(t, first.CustomerID)

		second, err := svc.EnsureCart(context.Background(), &tokoID, nil)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
	})

	t.Run("anonymous cart keyed by anon id", func(t *testing.T) {
		anon := "guest-abc"
		first, err := svc.EnsureCart(context.Background(), nil, &anon)
		require.NoError(t, err)
		second, err := svc.EnsureCart(context.Background(), nil, &anon)
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.NotNil(t, second.AnonID)
	})

	t.Run("no identity is invalid", func(t *testing.T) {
		_, err := svc.EnsureCart(context.Background(), nil, nil)
		require.ErrorIs(t, err, cart.ErrInvalidInput)
	})
}

func TestAddItem(t *testing.T) {
	fs := newFakeCartStore()
	svc := newTestService(fs)
	semenID := uuid.New()
	fs.products[semenID] = store.Product{ID: semenID, Name: "Semen Tiga Roda 50kg", Category: "semen", BasePrice: 85_000_00, Active: true}

	anon := "guest-add"
	c, err := svc.EnsureCart(context.Background(), nil, &anon)
	require.NoError(t, err)

	require.NoError(t, svc.AddItem(context.Background(), c.ID, semenID, 2))
	require.NoError(t, svc.AddItem(context.Background(), c.ID, semenID, 3))

	items, err := fs.ListCartItems(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, items, 1, "same product should merge into one line")
	require.Equal(t, int32(5), items[0].Qty)
	require.Equal(t, int64(85_000_00), items[0].Price)

	require.ErrorIs(t, svc.AddItem(context.Background(), c.ID, semenID, 0), cart.ErrInvalidInput)
	require.ErrorIs(t, svc.AddItem(context.Background(), c.ID, uuid.New(), 1), cart.ErrInvalidInput)

	archived := uuid.New()
	fs.products[archived] = store.Product{ID: archived, Name: "Bata Lawas", BasePrice: 1_000, Active: false}
	require.ErrorIs(t, svc.AddItem(context.Background(), c.ID, archived, 1), cart.ErrInvalidInput)
}

func TestQuote(t *testing.T) {
	fs := newFakeCartStore()
	svc := newTestService(fs)

	semenID := uuid.New()
	pasirID := uuid.New()
	grosir := int64(78_000_00)
	fs.products[semenID] = store.Product{ID: semenID, Name: "Semen Tiga Roda 50kg", Category: "semen", BasePrice: 85_000_00, WholesalePrice: &grosir, Active: true}
	fs.products[pasirID] = store.Product{ID: pasirID, Name: "Pasir Beton per m3", Category: "agregat", BasePrice: 350_000_00, Active: true}

	tokoID := uuid.New()
	fs.customers[tokoID] = store.Customer{ID: tokoID, Name: "Toko Jaya", Wholesale: true}

	minQty := int32(3)
	fs.discounts = []store.Discount{
		{ID: uuid.New(), Name: "Borongan Semen", Kind: "percentage", Value: 10, MinQty: &minQty, Active: true},
	}

	c, err := svc.EnsureCart(context.Background(), &tokoID, nil)
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(context.Background(), c.ID, semenID, 4))
	require.NoError(t, svc.AddItem(context.Background(), c.ID, pasirID, 1))

	t.Run("wholesale tier with threshold discount", func(t *testing.T) {
		quote, err := svc.Quote(context.Background(), c.ID, &tokoID)
		require.NoError(t, err)
		require.Len(t, quote.Lines, 2)

		// 4 * 78_000_00 wholesale, 10% off; pasir below threshold.
		require.Equal(t, int64(4*78_000_00+350_000_00), quote.Subtotal)
		require.Equal(t, int64(31_200_00), quote.Discount)
		require.Equal(t, quote.Subtotal-quote.Discount, quote.Total)
	})

	t.Run("stored line price is ignored", func(t *testing.T) {
		// Simulate a price change after the line was captured.
		p := fs.products[pasirID]
		p.BasePrice = 400_000_00
		fs.products[pasirID] = p

		quote, err := svc.Quote(context.Background(), c.ID, &tokoID)
		require.NoError(t, err)
		require.Equal(t, int64(4*78_000_00+400_000_00), quote.Subtotal)
	})

	t.Run("customer override replaces the wholesale tier", func(t *testing.T) {
		fs.overrides = []store.CustomerPrice{{CustomerID: tokoID, ProductID: semenID, Price: 80_000_00}}
		quote, err := svc.Quote(context.Background(), c.ID, &tokoID)
		require.NoError(t, err)
		require.Equal(t, int64(4*80_000_00+400_000_00), quote.Subtotal)
		require.Equal(t, int64(32_000_00), quote.Discount)
	})

	t.Run("anonymous quote uses base prices", func(t *testing.T) {
		anon := "guest-quote"
		gc, err := svc.EnsureCart(context.Background(), nil, &anon)
		require.NoError(t, err)
		require.NoError(t, svc.AddItem(context.Background(), gc.ID, semenID, 1))

		quote, err := svc.Quote(context.Background(), gc.ID, nil)
		require.NoError(t, err)
		require.Equal(t, int64(85_000_00), quote.Subtotal)
		require.Zero(t, quote.Discount)
	})

	t.Run("empty cart quotes zero", func(t *testing.T) {
		anon := "guest-empty"
		gc, err := svc.EnsureCart(context.Background(), nil, &anon)
		require.NoError(t, err)
		quote, err := svc.Quote(context.Background(), gc.ID, nil)
		require.NoError(t, err)
		require.Zero(t, quote.Subtotal)
		require.Zero(t, quote.Total)
		require.Empty(t, quote.Lines)
	})
}

func TestUpdateAndRemove(t *testing.T) {
	fs := newFakeCartStore()
	svc := newTestService(fs)
	semenID := uuid.New()
	fs.products[semenID] = store.Product{ID: semenID, Name: "Semen", BasePrice: 85_000_00, Active: true}

	anon := "guest-mut"
	c, err := svc.EnsureCart(context.Background(), nil, &anon)
	require.NoError(t, err)
	require.NoError(t, svc.AddItem(context.Background(), c.ID, semenID, 1))

	items, err := fs.ListCartItems(context.Background(), c.ID)
	require.NoError(t, err)
	itemID := items[0].ID

	require.NoError(t, svc.UpdateQty(context.Background(), c.ID, itemID, 7))
	items, _ = fs.ListCartItems(context.Background(), c.ID)
	require.Equal(t, int32(7), items[0].Qty)

	require.ErrorIs(t, svc.UpdateQty(context.Background(), c.ID, itemID, 0), cart.ErrInvalidInput)
	require.ErrorIs(t, svc.UpdateQty(context.Background(), uuid.New(), itemID, 1), cart.ErrNotFound)

	require.NoError(t, svc.RemoveItem(context.Background(), c.ID, itemID))
	require.ErrorIs(t, svc.RemoveItem(context.Background(), c.ID, itemID), cart.ErrNotFound)
}
