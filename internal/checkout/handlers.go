package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/cart"
	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc *Service
}

type checkoutPayload struct {
	Notes *string `json:"notes"`
}

type orderResponse struct {
	ID        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	Currency  string     `json:"currency"`
	Subtotal  int64      `json:"subtotal"`
	Discount  int64      `json:"discount"`
	Total     int64      `json:"total"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Quote     cart.Quote `json:"quote"`
}

// PlaceOrder handles POST /api/v1/checkout. Requires an authenticated
// customer; guests must sign in before ordering.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	raw, ok := common.CustomerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	customerID, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid customer identity", nil)
		return
	}

	var payload checkoutPayload
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
			return
		}
	}

	result, err := h.Svc.PlaceOrder(r.Context(), customerID, payload.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "cart has no items", nil)
		case errors.Is(err, cart.ErrNotFound), errors.Is(err, store.ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
		default:
			common.WriteError(w, err)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": orderResponse{
		ID:        result.Order.ID,
		Status:    result.Order.Status,
		Currency:  result.Order.Currency,
		Subtotal:  result.Order.Subtotal,
		Discount:  result.Order.Discount,
		Total:     result.Order.Total,
		Notes:     result.Order.Notes,
		CreatedAt: result.Order.CreatedAt,
		Quote:     result.Quote,
	}})
}
