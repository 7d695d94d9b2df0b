package custprice_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/custprice"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type fakePriceStore struct {
	customers map[uuid.UUID]store.Customer
	products  map[uuid.UUID]store.Product
	prices    map[string]store.CustomerPrice
}

func key(customerID, productID uuid.UUID) string {
	return customerID.String() + "/" + productID.String()
}

func (f *fakePriceStore) GetCustomer(_ context.Context, id uuid.UUID) (store.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return store.Customer{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakePriceStore) GetProduct(_ context.Context, id uuid.UUID) (store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return store.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakePriceStore) UpsertCustomerPrice(_ context.Context, customerID, productID uuid.UUID, price int64) (store.CustomerPrice, error) {
	cp := store.CustomerPrice{CustomerID: customerID, ProductID: productID, Price: price, UpdatedAt: time.Now()}
	f.prices[key(customerID, productID)] = cp
	return cp, nil
}

func (f *fakePriceStore) ListCustomerPrices(_ context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error) {
	var out []store.CustomerPrice
	for _, cp := range f.prices {
		if cp.CustomerID == customerID {
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakePriceStore) DeleteCustomerPrice(_ context.Context, customerID, productID uuid.UUID) error {
	k := key(customerID, productID)
	if _, ok := f.prices[k]; !ok {
		return store.ErrNotFound
	}
	delete(f.prices, k)
	return nil
}

func routed(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCustomerPriceHandlers(t *testing.T) {
	tokoID := uuid.New()
	semenID := uuid.New()
	fs := &fakePriceStore{
		customers: map[uuid.UUID]store.Customer{tokoID: {ID: tokoID, Name: "Toko Jaya"}},
		products:  map[uuid.UUID]store.Product{semenID: {ID: semenID, Name: "Semen Tiga Roda 50kg"}},
		prices:    map[string]store.CustomerPrice{},
	}
	handler := &custprice.Handler{Store: fs, Validate: validator.New()}

	t.Run("upsert then list", func(t *testing.T) {
		body := fmt.Sprintf(`{"productId":%q,"price":8000000}`, semenID)
		req := routed(httptest.NewRequest(http.MethodPut, "/admin/customers/"+tokoID.String()+"/prices", strings.NewReader(body)),
			map[string]string{"id": tokoID.String()})
		rec := httptest.NewRecorder()
		handler.Upsert(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		lreq := routed(httptest.NewRequest(http.MethodGet, "/admin/customers/"+tokoID.String()+"/prices", nil),
			map[string]string{"id": tokoID.String()})
		lrec := httptest.NewRecorder()
		handler.List(lrec, lreq)
		require.Equal(t, http.StatusOK, lrec.Code)

		var resp struct {
			Data []struct {
				ProductID uuid.UUID `json:"productId"`
				Price     int64     `json:"price"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(lrec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, semenID, resp.Data[0].ProductID)
		require.Equal(t, int64(80_000_00), resp.Data[0].Price)
	})

	t.Run("unknown customer is 404", func(t *testing.T) {
		other := uuid.New()
		body := fmt.Sprintf(`{"productId":%q,"price":100}`, semenID)
		req := routed(httptest.NewRequest(http.MethodPut, "/admin/customers/"+other.String()+"/prices", strings.NewReader(body)),
			map[string]string{"id": other.String()})
		rec := httptest.NewRecorder()
		handler.Upsert(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		body := fmt.Sprintf(`{"productId":%q,"price":100}`, uuid.New())
		req := routed(httptest.NewRequest(http.MethodPut, "/admin/customers/"+tokoID.String()+"/prices", strings.NewReader(body)),
			map[string]string{"id": tokoID.String()})
		rec := httptest.NewRecorder()
		handler.Upsert(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"productId":%q,"price":-1}`, semenID)
		req := routed(httptest.NewRequest(http.MethodPut, "/admin/customers/"+tokoID.String()+"/prices", strings.NewReader(body)),
			map[string]string{"id": tokoID.String()})
		rec := httptest.NewRecorder()
		handler.Upsert(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete removes the override", func(t *testing.T) {
		req := routed(httptest.NewRequest(http.MethodDelete, "/admin/customers/"+tokoID.String()+"/prices/"+semenID.String(), nil),
			map[string]string{"id": tokoID.String(), "productId": semenID.String()})
		rec := httptest.NewRecorder()
		handler.Delete(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		again := httptest.NewRecorder()
		handler.Delete(again, req)
		require.Equal(t, http.StatusNotFound, again.Code)
	})
}
