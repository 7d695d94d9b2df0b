package pricing

// ResolveDiscount selects at most one rule for a cart line and computes its
// monetary value. Rules are not stacked: the single rule with the greatest
// amount wins, and the first rule seen keeps the slot on exact ties.
// A line matching no rule yields a zero Applied, never an error.
func ResolveDiscount(p Product, qty int, lineSubtotal Money, ctx Context) Applied {
	var best Applied
	unitPrice := ResolveUnitPrice(p, ctx)
	for i := range ctx.Rules {
		rule := ctx.Rules[i]
		if !rule.eligible(p, qty, lineSubtotal, ctx) {
			continue
		}
		amount := rule.amount(unitPrice, qty)
		if amount > best.Amount {
			best = Applied{Amount: amount, Rule: &ctx.Rules[i]}
		}
	}
	return best
}

// eligible applies the rule's filters. All constraints are conjunctive.
// Note that CustomerID is deliberately not checked here: the upstream data
// model carries a customer scope on discount rows, but the evaluation has
// never restricted rules by customer. Changing that silently would reprice
// existing carts, so the behaviour is preserved and pinned by tests.
func (r Rule) eligible(p Product, qty int, lineSubtotal Money, ctx Context) bool {
	if !r.Active {
		return false
	}
	now := ctx.now()
	if r.StartsAt != nil && r.StartsAt.After(now) {
		return false
	}
	if r.EndsAt != nil && r.EndsAt.Before(now) {
		return false
	}
	if r.ProductID != nil && *r.ProductID != p.ID {
		return false
	}
	if r.Category != nil && *r.Category != p.Category {
		return false
	}
	if r.MinQty != nil && qty < *r.MinQty {
		return false
	}
	if r.MinAmount != nil && lineSubtotal < *r.MinAmount {
		return false
	}
	return true
}

// amount computes the monetary value of the rule for one line. The switch is
// exhaustive over Kind; records with an unknown kind contribute nothing and
// can therefore never be selected.
func (r Rule) amount(unitPrice Money, qty int) Money {
	switch r.Kind {
	case KindPercentage, KindVolume:
		return unitPrice * Money(qty) * r.Value / 100
	case KindFixed:
		return r.Value * Money(qty)
	default:
		return 0
	}
}
