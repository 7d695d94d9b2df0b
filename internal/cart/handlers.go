package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

// AnonIDHeader carries the anonymous cart identity for guests.
const AnonIDHeader = "X-Anon-Id"

// Handler exposes cart endpoints. Identity comes from the auth context when
// present, otherwise from the anonymous header.
type Handler struct {
	Svc *Service
}

type addItemPayload struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type updateQtyPayload struct {
	Qty int `json:"qty"`
}

type cartResponse struct {
	ID       uuid.UUID      `json:"id"`
	Items    []itemResponse `json:"items"`
	Subtotal int64          `json:"subtotal"`
	Discount int64          `json:"discount"`
	Total    int64          `json:"total"`
}

type itemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Qty       int32     `json:"qty"`
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ensure(w, r)
	if !ok {
		return
	}
	items, err := h.Svc.Store.ListCartItems(r.Context(), cart.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load cart", nil)
		return
	}
	quote, err := h.Svc.Quote(r.Context(), cart.ID, customerIDFromContext(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	resp := cartResponse{
		ID:       cart.ID,
		Items:    make([]itemResponse, 0, len(items)),
		Subtotal: quote.Subtotal,
		Discount: quote.Discount,
		Total:    quote.Total,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, itemResponse{ID: it.ID, ProductID: it.ProductID, Name: it.Name, Price: it.Price, Qty: it.Qty})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": resp})
}

// AddItem handles POST /api/v1/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ensure(w, r)
	if !ok {
		return
	}
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	productID, err := uuid.Parse(strings.TrimSpace(payload.ProductID))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Svc.AddItem(r.Context(), cart.ID, productID, payload.Qty); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateQty handles PATCH /api/v1/cart/items/{itemId}.
func (h *Handler) UpdateQty(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ensure(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var payload updateQtyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.Svc.UpdateQty(r.Context(), cart.ID, itemID, payload.Qty); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ensure(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), cart.ID, itemID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote handles GET /api/v1/cart/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.ensure(w, r)
	if !ok {
		return
	}
	quote, err := h.Svc.Quote(r.Context(), cart.ID, customerIDFromContext(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

func (h *Handler) ensure(w http.ResponseWriter, r *http.Request) (cart store.Cart, ok bool) {
	customerID := customerIDFromContext(r)
	var anonID *string
	if v := strings.TrimSpace(r.Header.Get(AnonIDHeader)); v != "" {
		anonID = &v
	}
	if customerID == nil && anonID == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing customer identity or "+AnonIDHeader+" header", nil)
		return cart, false
	}
	c, err := h.Svc.EnsureCart(r.Context(), customerID, anonID)
	if err != nil {
		h.writeServiceError(w, err)
		return cart, false
	}
	return c, true
}

func customerIDFromContext(r *http.Request) *uuid.UUID {
	raw, ok := common.CustomerID(r.Context())
	if !ok {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart or item not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.WriteError(w, err)
	}
}
