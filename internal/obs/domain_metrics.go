package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts order creation outcomes at checkout.
	OrdersCreatedTotal *prometheus.CounterVec
	// CartQuoteTotal counts live cart quote computations.
	CartQuoteTotal prometheus.Counter
	// DiscountAppliedTotal counts applied discounts by rule kind.
	DiscountAppliedTotal *prometheus.CounterVec
	// DiscountAmountTotal accumulates the discount value granted, in minor units.
	DiscountAmountTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of checkout order creation outcomes.",
		}, []string{"result"})
		CartQuoteTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quote_total",
			Help:      "Count of cart totals computed for quotes.",
		})
		DiscountAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_applied_total",
			Help:      "Count of discounts applied to cart lines by kind.",
		}, []string{"kind"})
		DiscountAmountTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_amount_minor_units_total",
			Help:      "Total discount value granted, in currency minor units.",
		})
		reg.MustRegister(OrdersCreatedTotal, CartQuoteTotal, DiscountAppliedTotal, DiscountAmountTotal)
	})
}
