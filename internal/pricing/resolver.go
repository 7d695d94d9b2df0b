package pricing

// ResolveUnitPrice determines the applicable unit price for a product.
// The wholesale tier applies when the context is wholesale and the product
// carries a wholesale price; a customer-specific override always replaces
// whichever tier was selected, even when the tier price is lower.
func ResolveUnitPrice(p Product, ctx Context) Money {
	price := p.BasePrice
	if ctx.Wholesale && p.WholesalePrice != nil {
		price = *p.WholesalePrice
	}
	if ctx.CustomerID == nil {
		return price
	}
	for _, cp := range ctx.CustomerPrices {
		if cp.CustomerID == *ctx.CustomerID && cp.ProductID == p.ID {
			return cp.Price
		}
	}
	return price
}
