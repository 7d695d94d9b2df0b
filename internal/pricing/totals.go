package pricing

import "github.com/google/uuid"

// ComputeCartTotals walks the cart lines, resolves each unit price and
// discount from the provided catalog snapshot, and accumulates totals.
// Lines referencing a product missing from the snapshot contribute nothing.
// The final total is floored at zero.
func ComputeCartTotals(items []Item, products []Product, ctx Context) Summary {
	byID := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var subtotal, discount Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lineSubtotal := ResolveUnitPrice(p, ctx) * Money(it.Qty)
		subtotal += lineSubtotal
		discount += ResolveDiscount(p, it.Qty, lineSubtotal, ctx).Amount
	}

	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return Summary{Subtotal: subtotal, Discount: discount, Total: total}
}
