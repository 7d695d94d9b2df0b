package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

// Order lifecycle states.
const (
	StatusNew       = "NEW"
	StatusConfirmed = "CONFIRMED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// allowedTransitions maps each status to the states an admin may move it to.
var allowedTransitions = map[string][]string{
	StatusNew:       {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
}

type orderStore interface {
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int32) ([]store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (store.Order, error)
}

// Handler exposes customer order history and admin status management.
type Handler struct {
	Store          orderStore
	DefaultPerPage int
}

type orderSummary struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Currency  string    `json:"currency"`
	Subtotal  int64     `json:"subtotal"`
	Discount  int64     `json:"discount"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderDetail struct {
	orderSummary
	Notes *string     `json:"notes,omitempty"`
	Items []orderLine `json:"items"`
}

type orderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	UnitPrice int64     `json:"unitPrice"`
	Qty       int32     `json:"qty"`
	Subtotal  int64     `json:"subtotal"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// List handles GET /api/v1/orders for the authenticated customer.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}
	perPage := h.DefaultPerPage
	if perPage < 1 {
		perPage = 20
	}
	page, limit := common.ParsePagination(r, perPage)
	rows, err := h.Store.ListOrdersByCustomer(r.Context(), customerID, int32(limit), int32((page-1)*limit))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	out := make([]orderSummary, 0, len(rows))
	for _, o := range rows {
		out = append(out, summarize(o))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Get handles GET /api/v1/orders/{orderId}. Customers can only see their own.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	o, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if o.CustomerID != customerID && !common.HasRole(r.Context(), "admin") {
		// Hide the existence of other customers' orders.
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		return
	}
	items, err := h.Store.ListOrderItems(r.Context(), o.ID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order items", nil)
		return
	}
	detail := orderDetail{orderSummary: summarize(o), Notes: o.Notes, Items: make([]orderLine, 0, len(items))}
	for _, it := range items {
		detail.Items = append(detail.Items, orderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Unit:      it.Unit,
			UnitPrice: it.UnitPrice,
			Qty:       it.Qty,
			Subtotal:  it.Subtotal,
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// UpdateStatus handles PATCH /admin/orders/{orderId}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	var payload statusPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	next := strings.ToUpper(strings.TrimSpace(payload.Status))
	o, err := h.Store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	if !transitionAllowed(o.Status, next) {
		common.JSONError(w, http.StatusConflict, "INVALID_TRANSITION",
			"cannot move order from "+o.Status+" to "+next, nil)
		return
	}
	updated, err := h.Store.UpdateOrderStatus(r.Context(), id, next)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update order", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summarize(updated)})
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (h *Handler) requireCustomer(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := common.CustomerID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid customer identity", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func summarize(o store.Order) orderSummary {
	return orderSummary{
		ID:        o.ID,
		Status:    o.Status,
		Currency:  o.Currency,
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}
