package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type storeProvider interface {
	CountProducts(ctx context.Context, params store.ListProductsParams) (int64, error)
	ListProducts(ctx context.Context, params store.ListProductsParams) ([]store.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (store.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	store        storeProvider
	cache        *Cache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store        storeProvider
	Cache        *Cache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
	Page     int
	Limit    int
}

// ProductListItem represents an entry in list responses. Prices are rupiah.
type ProductListItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Category       string  `json:"category"`
	Unit           string  `json:"unit"`
	BasePrice      int64   `json:"basePrice"`
	WholesalePrice *int64  `json:"wholesalePrice,omitempty"`
	InStock        bool    `json:"inStock"`
	ImageURL       *string `json:"imageUrl,omitempty"`
}

// ProductDetail aggregates the full detail payload.
type ProductDetail struct {
	ProductListItem
	Stock int `json:"stock"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductListItem
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		store:        cfg.Store,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))
	params.Category = strings.TrimSpace(values.Get("category"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, common.ErrBadRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, common.ErrBadRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	params.Limit = limit

	if v := strings.TrimSpace(values.Get("minPrice")); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, common.ErrBadRequest("minPrice", "minPrice must be a valid integer", err)
		}
		params.MinPrice = &parsed
	}
	if v := strings.TrimSpace(values.Get("maxPrice")); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, common.ErrBadRequest("maxPrice", "maxPrice must be a valid integer", err)
		}
		params.MaxPrice = &parsed
	}
	if params.MinPrice != nil && params.MaxPrice != nil && *params.MinPrice > *params.MaxPrice {
		return params, common.ErrBadRequest("price", "minPrice cannot be greater than maxPrice", fmt.Errorf("invalid price range"))
	}

	params.Sort = normalizeSort(values.Get("sort"))
	return params, nil
}

// ListProducts returns a filtered product page with pagination metadata.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	key, shouldUseCache := s.listCacheKey(params)
	if shouldUseCache {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
	}

	storeParams := store.ListProductsParams{
		Query:    params.Query,
		Category: params.Category,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Sort:     params.Sort,
		Limit:    int32(params.Limit),
		Offset:   int32((params.Page - 1) * params.Limit),
	}
	if storeParams.Offset < 0 {
		storeParams.Offset = 0
	}
	total, err := s.store.CountProducts(ctx, storeParams)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.store.ListProducts(ctx, storeParams)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItem(row))
	}
	result := ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}
	if shouldUseCache {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return result, nil
}

// GetProductDetail returns the detail payload for one active product.
func (s *Service) GetProductDetail(ctx context.Context, slug string) (ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ProductDetail{}, common.ErrBadRequest("slug", "slug is required", nil)
	}
	cacheKey := detailCacheKey(slug)
	var cached ProductDetail
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ProductDetail{}, common.ErrNotFound("product not found", err)
		}
		return ProductDetail{}, fmt.Errorf("get product by slug: %w", err)
	}
	detail := ProductDetail{ProductListItem: listItem(product), Stock: int(product.Stock)}
	_ = s.cache.SetJSON(ctx, cacheKey, detail)
	return detail, nil
}

// ListCategories returns the distinct active categories.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	cacheKey := "catalog:categories"
	var cached []string
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if rows == nil {
		rows = []string{}
	}
	_ = s.cache.SetJSON(ctx, cacheKey, rows)
	return rows, nil
}

func listItem(p store.Product) ProductListItem {
	return ProductListItem{
		ID:             p.ID.String(),
		Name:           p.Name,
		Slug:           p.Slug,
		Category:       p.Category,
		Unit:           p.Unit,
		BasePrice:      p.BasePrice,
		WholesalePrice: p.WholesalePrice,
		InStock:        p.Stock > 0,
		ImageURL:       p.ImageURL,
	}
}

type cachedList struct {
	Items []ProductListItem `json:"items"`
	Total int64             `json:"total"`
}

// Only the unfiltered first page is cached; filtered views hit the database.
func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if params.Page != s.defaultPage || params.Limit != s.defaultLimit {
		return "", false
	}
	if params.Query != "" || params.Category != "" || params.MinPrice != nil || params.MaxPrice != nil || params.Sort != "" {
		return "", false
	}
	return "catalog:products:list:front", true
}

func detailCacheKey(slug string) string {
	return "catalog:products:detail:" + slug
}

func normalizeSort(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "price:asc", "price:desc", "name:desc":
		return s
	default:
		return ""
	}
}
