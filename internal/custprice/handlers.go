package custprice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type priceStore interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (store.Customer, error)
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
	UpsertCustomerPrice(ctx context.Context, customerID, productID uuid.UUID, price int64) (store.CustomerPrice, error)
	ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error)
	DeleteCustomerPrice(ctx context.Context, customerID, productID uuid.UUID) error
}

// Handler manages per-customer negotiated prices under /admin.
type Handler struct {
	Store    priceStore
	Validate *validator.Validate
}

type upsertPayload struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Price     int64  `json:"price" validate:"gte=0"`
}

type priceResponse struct {
	CustomerID uuid.UUID `json:"customerId"`
	ProductID  uuid.UUID `json:"productId"`
	Price      int64     `json:"price"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// List handles GET /admin/customers/{id}/prices.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	rows, err := h.Store.ListCustomerPrices(r.Context(), customerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list customer prices", nil)
		return
	}
	out := make([]priceResponse, 0, len(rows))
	for _, cp := range rows {
		out = append(out, priceResponse(cp))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Upsert handles PUT /admin/customers/{id}/prices. The override replaces the
// base and wholesale tiers outright, so a higher-than-base price is accepted.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	var payload upsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid price payload", nil)
			return
		}
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if _, err := h.Store.GetProduct(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	cp, err := h.Store.UpsertCustomerPrice(r.Context(), customerID, productID, payload.Price)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save customer price", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": priceResponse(cp)})
}

// Delete handles DELETE /admin/customers/{id}/prices/{productId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Store.DeleteCustomerPrice(r.Context(), customerID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "customer price not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete customer price", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
		return uuid.UUID{}, false
	}
	if _, err := h.Store.GetCustomer(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "customer not found", nil)
			return uuid.UUID{}, false
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load customer", nil)
		return uuid.UUID{}, false
	}
	return id, true
}
