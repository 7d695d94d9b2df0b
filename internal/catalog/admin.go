package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type adminStore interface {
	CreateProduct(ctx context.Context, params store.CreateProductParams) (store.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, params store.CreateProductParams) (store.Product, error)
	ArchiveProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
}

type purgeEnqueuer interface {
	EnqueueCatalogPurge(ctx context.Context, reason string) error
}

// AdminHandler exposes product management endpoints under /admin.
type AdminHandler struct {
	Store    adminStore
	Cache    *Cache
	Tasks    purgeEnqueuer
	Validate *validator.Validate
}

type productPayload struct {
	Name           string  `json:"name" validate:"required,min=2"`
	Slug           string  `json:"slug" validate:"required,min=2,lowercase"`
	Category       string  `json:"category" validate:"required"`
	Unit           string  `json:"unit" validate:"required"`
	BasePrice      int64   `json:"basePrice" validate:"gte=0"`
	WholesalePrice *int64  `json:"wholesalePrice" validate:"omitempty,gte=0"`
	Stock          int32   `json:"stock" validate:"gte=0"`
	ImageURL       *string `json:"imageUrl" validate:"omitempty,url"`
}

// Create handles POST /admin/products.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.Store.CreateProduct(r.Context(), toCreateParams(payload))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "product slug already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}
	h.invalidate(r.Context(), product.Slug, "product created")
	common.JSON(w, http.StatusCreated, map[string]any{"data": listItem(product)})
}

// Update handles PUT /admin/products/{id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	product, err := h.Store.UpdateProduct(r.Context(), id, toCreateParams(payload))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "product slug already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update product", nil)
		return
	}
	h.invalidate(r.Context(), product.Slug, "product updated")
	common.JSON(w, http.StatusOK, map[string]any{"data": listItem(product)})
}

// Archive handles DELETE /admin/products/{id}. Products are hidden, never
// dropped, so order history keeps its references.
func (h *AdminHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}
	if err := h.Store.ArchiveProduct(r.Context(), id); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to archive product", nil)
		return
	}
	h.invalidate(r.Context(), product.Slug, "product archived")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request) (productPayload, bool) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return payload, false
	}
	payload.Slug = strings.TrimSpace(strings.ToLower(payload.Slug))
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid product payload", validationDetails(err))
			return payload, false
		}
	}
	return payload, true
}

func (h *AdminHandler) invalidate(ctx context.Context, slug, reason string) {
	_ = h.Cache.Delete(ctx, detailCacheKey(slug), "catalog:products:list:front", "catalog:categories")
	if h.Tasks != nil {
		_ = h.Tasks.EnqueueCatalogPurge(ctx, reason)
	}
}

func toCreateParams(payload productPayload) store.CreateProductParams {
	return store.CreateProductParams{
		Name:           strings.TrimSpace(payload.Name),
		Slug:           payload.Slug,
		Category:       strings.TrimSpace(payload.Category),
		Unit:           strings.TrimSpace(payload.Unit),
		BasePrice:      payload.BasePrice,
		WholesalePrice: payload.WholesalePrice,
		Stock:          payload.Stock,
		ImageURL:       payload.ImageURL,
	}
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return map[string]any{"fields": fields}
}
