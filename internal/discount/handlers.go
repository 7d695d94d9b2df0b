package discount

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/pricing"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type adminStore interface {
	ListDiscounts(ctx context.Context) ([]store.Discount, error)
	GetDiscount(ctx context.Context, id uuid.UUID) (store.Discount, error)
	CreateDiscount(ctx context.Context, params store.DiscountParams) (store.Discount, error)
	UpdateDiscount(ctx context.Context, id uuid.UUID, params store.DiscountParams) (store.Discount, error)
	DeleteDiscount(ctx context.Context, id uuid.UUID) error
}

// Handler exposes administrative discount management endpoints.
type Handler struct {
	Store    adminStore
	Svc      *Service
	Validate *validator.Validate
}

type rulePayload struct {
	Name       string     `json:"name" validate:"required,min=2"`
	Kind       string     `json:"kind" validate:"required,oneof=percentage fixed volume"`
	Value      int64      `json:"value" validate:"gt=0"`
	ProductID  *string    `json:"productId"`
	Category   *string    `json:"category"`
	CustomerID *string    `json:"customerId"`
	MinQty     *int32     `json:"minQty" validate:"omitempty,gt=0"`
	MinAmount  *int64     `json:"minAmount" validate:"omitempty,gt=0"`
	StartsAt   *time.Time `json:"startsAt"`
	EndsAt     *time.Time `json:"endsAt"`
	Active     *bool      `json:"active"`
}

type previewPayload struct {
	ProductID  string  `json:"productId" validate:"required,uuid4"`
	Qty        int     `json:"qty" validate:"gte=1"`
	CustomerID *string `json:"customerId" validate:"omitempty,uuid4"`
}

type ruleResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Value      int64      `json:"value"`
	ProductID  *uuid.UUID `json:"productId,omitempty"`
	Category   *string    `json:"category,omitempty"`
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	MinQty     *int32     `json:"minQty,omitempty"`
	MinAmount  *int64     `json:"minAmount,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// List handles GET /admin/discounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListDiscounts(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list discounts", nil)
		return
	}
	out := make([]ruleResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, toResponse(d))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Create handles POST /admin/discounts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	params, ok := h.decode(w, r)
	if !ok {
		return
	}
	d, err := h.Store.CreateDiscount(r.Context(), params)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create discount", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toResponse(d)})
}

// Update handles PUT /admin/discounts/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	params, ok := h.decode(w, r)
	if !ok {
		return
	}
	d, err := h.Store.UpdateDiscount(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update discount", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toResponse(d)})
}

// Delete handles DELETE /admin/discounts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	if err := h.Store.DeleteDiscount(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete discount", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles POST /admin/discounts/preview. It prices one hypothetical
// line with the live rule set and reports which rule would win.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	var payload previewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid preview payload", nil)
			return
		}
	}
	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	req := PreviewRequest{ProductID: productID, Qty: payload.Qty}
	if payload.CustomerID != nil {
		customerID, err := uuid.Parse(*payload.CustomerID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid customer id", nil)
			return
		}
		req.CustomerID = &customerID
	}
	result, err := h.Svc.Preview(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (store.DiscountParams, bool) {
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return store.DiscountParams{}, false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid discount payload", nil)
			return store.DiscountParams{}, false
		}
	}
	params, err := buildParams(payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return store.DiscountParams{}, false
	}
	return params, true
}

func buildParams(payload rulePayload) (store.DiscountParams, error) {
	if pricing.Kind(payload.Kind) == pricing.KindPercentage && payload.Value > 100 {
		// Values above 100 are legal for fixed rules but suspicious for
		// percentages; the cart total still floors at zero either way.
		return store.DiscountParams{}, errors.New("percentage value cannot exceed 100")
	}
	if payload.StartsAt != nil && payload.EndsAt != nil && payload.EndsAt.Before(*payload.StartsAt) {
		return store.DiscountParams{}, errors.New("endsAt cannot precede startsAt")
	}
	params := store.DiscountParams{
		Name:      strings.TrimSpace(payload.Name),
		Kind:      payload.Kind,
		Value:     payload.Value,
		Category:  payload.Category,
		MinQty:    payload.MinQty,
		MinAmount: payload.MinAmount,
		StartsAt:  payload.StartsAt,
		EndsAt:    payload.EndsAt,
		Active:    true,
	}
	if payload.Active != nil {
		params.Active = *payload.Active
	}
	if payload.ProductID != nil && strings.TrimSpace(*payload.ProductID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*payload.ProductID))
		if err != nil {
			return store.DiscountParams{}, errors.New("invalid productId")
		}
		params.ProductID = &id
	}
	if payload.CustomerID != nil && strings.TrimSpace(*payload.CustomerID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*payload.CustomerID))
		if err != nil {
			return store.DiscountParams{}, errors.New("invalid customerId")
		}
		params.CustomerID = &id
	}
	return params, nil
}

func toResponse(d store.Discount) ruleResponse {
	return ruleResponse{
		ID:         d.ID,
		Name:       d.Name,
		Kind:       d.Kind,
		Value:      d.Value,
		ProductID:  d.ProductID,
		Category:   d.Category,
		CustomerID: d.CustomerID,
		MinQty:     d.MinQty,
		MinAmount:  d.MinAmount,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
		Active:     d.Active,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
