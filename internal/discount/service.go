package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mahendra-dev/backend-bangunan/internal/common"
	"github.com/mahendra-dev/backend-bangunan/internal/pricing"
	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

type previewStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (store.Customer, error)
	ListActiveDiscounts(ctx context.Context) ([]store.Discount, error)
	ListCustomerPrices(ctx context.Context, customerID uuid.UUID) ([]store.CustomerPrice, error)
}

// Service runs the pricing engine against stored rules for previews.
type Service struct {
	Store previewStore
	Now   func() time.Time
}

// PreviewRequest describes a hypothetical cart line to price.
type PreviewRequest struct {
	ProductID  uuid.UUID
	Qty        int
	CustomerID *uuid.UUID
}

// PreviewResult reports the engine outcome for one line.
type PreviewResult struct {
	UnitPrice    int64      `json:"unitPrice"`
	LineSubtotal int64      `json:"lineSubtotal"`
	Discount     int64      `json:"discount"`
	LineTotal    int64      `json:"lineTotal"`
	RuleID       *uuid.UUID `json:"ruleId,omitempty"`
	RuleName     *string    `json:"ruleName,omitempty"`
}

// Preview resolves the unit price and the winning rule for a single line
// without touching any cart.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	if req.Qty < 1 {
		return PreviewResult{}, common.ErrBadRequest("qty", "qty must be at least 1", nil)
	}
	product, err := s.Store.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PreviewResult{}, common.ErrNotFound("product not found", err)
		}
		return PreviewResult{}, fmt.Errorf("load product: %w", err)
	}
	rows, err := s.Store.ListActiveDiscounts(ctx)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("load discounts: %w", err)
	}

	pctx := pricing.Context{Rules: ToRules(rows), Now: s.now()}
	if req.CustomerID != nil {
		customer, err := s.Store.GetCustomer(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return PreviewResult{}, common.ErrNotFound("customer not found", err)
			}
			return PreviewResult{}, fmt.Errorf("load customer: %w", err)
		}
		overrides, err := s.Store.ListCustomerPrices(ctx, customer.ID)
		if err != nil {
			return PreviewResult{}, fmt.Errorf("load customer prices: %w", err)
		}
		pctx.CustomerID = &customer.ID
		pctx.Wholesale = customer.Wholesale
		pctx.CustomerPrices = ToCustomerPrices(overrides)
	}

	engineProduct := ToProduct(product)
	unit := pricing.ResolveUnitPrice(engineProduct, pctx)
	lineSubtotal := unit * int64(req.Qty)
	applied := pricing.ResolveDiscount(engineProduct, req.Qty, lineSubtotal, pctx)

	result := PreviewResult{
		UnitPrice:    unit,
		LineSubtotal: lineSubtotal,
		Discount:     applied.Amount,
		LineTotal:    lineSubtotal - applied.Amount,
	}
	if result.LineTotal < 0 {
		result.LineTotal = 0
	}
	if applied.Rule != nil {
		result.RuleID = &applied.Rule.ID
		result.RuleName = &applied.Rule.Name
	}
	return result, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ToRule converts a stored discount row into an engine rule.
func ToRule(d store.Discount) pricing.Rule {
	rule := pricing.Rule{
		ID:         d.ID,
		Name:       d.Name,
		Kind:       pricing.Kind(d.Kind),
		Value:      d.Value,
		ProductID:  d.ProductID,
		Category:   d.Category,
		CustomerID: d.CustomerID,
		MinAmount:  d.MinAmount,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
		Active:     d.Active,
	}
	if d.MinQty != nil {
		minQty := int(*d.MinQty)
		rule.MinQty = &minQty
	}
	return rule
}

// ToRules converts stored discount rows preserving order, which decides ties.
func ToRules(rows []store.Discount) []pricing.Rule {
	out := make([]pricing.Rule, 0, len(rows))
	for _, d := range rows {
		out = append(out, ToRule(d))
	}
	return out
}

// ToProduct extracts the pricing-relevant fields of a product row.
func ToProduct(p store.Product) pricing.Product {
	return pricing.Product{
		ID:             p.ID,
		Category:       p.Category,
		BasePrice:      p.BasePrice,
		WholesalePrice: p.WholesalePrice,
	}
}

// ToCustomerPrices converts stored override rows for the engine.
func ToCustomerPrices(rows []store.CustomerPrice) []pricing.CustomerPrice {
	out := make([]pricing.CustomerPrice, 0, len(rows))
	for _, cp := range rows {
		out = append(out, pricing.CustomerPrice{
			CustomerID: cp.CustomerID,
			ProductID:  cp.ProductID,
			Price:      cp.Price,
		})
	}
	return out
}
