package wishlist

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type wishlistStore interface {
	AddWishlistItem(ctx context.Context, customerID, productID uuid.UUID) error
	RemoveWishlistItem(ctx context.Context, customerID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, customerID uuid.UUID) ([]store.WishlistItem, error)
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
}

// Handler exposes the customer's saved-products list.
type Handler struct {
	Store wishlistStore
}

type entryResponse struct {
	ProductID uuid.UUID `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// List handles GET /api/v1/wishlist.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}
	rows, err := h.Store.ListWishlist(r.Context(), customerID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list wishlist", nil)
		return
	}
	out := make([]entryResponse, 0, len(rows))
	for _, it := range rows {
		out = append(out, entryResponse{ProductID: it.ProductID, CreatedAt: it.CreatedAt})
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Add handles PUT /api/v1/wishlist/{productId}. Re-adding is a no-op.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
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
	if err := h.Store.AddWishlistItem(r.Context(), customerID, productID); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save wishlist item", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/v1/wishlist/{productId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.requireCustomer(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Store.RemoveWishlistItem(r.Context(), customerID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "wishlist item not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to remove wishlist item", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
