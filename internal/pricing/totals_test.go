package pricing

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeCartTotalsEmptyCart(t *testing.T) {
	got := ComputeCartTotals(nil, nil, Context{Now: testNow})
	if got.Subtotal != 0 || got.Discount != 0 || got.Total != 0 {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestComputeCartTotalsAccumulatesLines(t *testing.T) {
	products := []Product{
		{ID: semenID, Category: "semen", BasePrice: 65_000},
		{ID: pasirID, Category: "pasir", BasePrice: 250_000},
	}
	items := []Item{
		{ProductID: semenID, Name: "Semen 50kg", Qty: 10},
		{ProductID: pasirID, Name: "Pasir 1m3", Qty: 2},
	}
	got := ComputeCartTotals(items, products, Context{Now: testNow})
	if got.Subtotal != 1_150_000 {
		t.Fatalf("expected subtotal 1150000, got %d", got.Subtotal)
	}
	if got.Discount != 0 || got.Total != 1_150_000 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestComputeCartTotalsSkipsMissingProducts(t *testing.T) {
	ghost := uuid.MustParse("99999999-9999-9999-9999-999999999999")
	products := []Product{{ID: semenID, Category: "semen", BasePrice: 1_000}}
	items := []Item{
		{ProductID: semenID, Qty: 1},
		{ProductID: ghost, Qty: 5, Price: 10_000},
	}
	got := ComputeCartTotals(items, products, Context{Now: testNow})
	if got.Subtotal != 1_000 {
		t.Fatalf("missing products must contribute nothing, got %+v", got)
	}
}

func TestComputeCartTotalsIgnoresStoredItemPrice(t *testing.T) {
	products := []Product{{ID: semenID, Category: "semen", BasePrice: 2_000}}
	// The cart captured a stale display price; the live product wins.
	items := []Item{{ProductID: semenID, Price: 1, Qty: 3}}
	got := ComputeCartTotals(items, products, Context{Now: testNow})
	if got.Subtotal != 6_000 {
		t.Fatalf("expected live price to be authoritative, got %+v", got)
	}
}

func TestComputeCartTotalsFloorsAtZero(t *testing.T) {
	products := []Product{{ID: semenID, Category: "semen", BasePrice: 100}}
	items := []Item{{ProductID: semenID, Qty: 1}}
	ctx := Context{
		Rules: []Rule{{Kind: KindPercentage, Value: 150, Active: true}},
		Now:   testNow,
	}
	got := ComputeCartTotals(items, products, ctx)
	if got.Subtotal != 100 || got.Discount != 150 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.Total != 0 {
		t.Fatalf("total must never go negative, got %d", got.Total)
	}
}

func TestComputeCartTotalsRoundTrip(t *testing.T) {
	products := []Product{
		{ID: semenID, Category: "semen", BasePrice: 65_000},
		{ID: pasirID, Category: "pasir", BasePrice: 250_000},
	}
	items := []Item{
		{ProductID: semenID, Qty: 10},
		{ProductID: pasirID, Qty: 1},
	}
	ctx := Context{
		Rules: []Rule{{Kind: KindPercentage, Value: 5, Active: true, Category: strp("semen")}},
		Now:   testNow,
	}
	got := ComputeCartTotals(items, products, ctx)
	if got.Total != got.Subtotal-got.Discount {
		t.Fatalf("total must equal subtotal minus discount when non-negative: %+v", got)
	}
}

func TestComputeCartTotalsPerLineDiscounts(t *testing.T) {
	products := []Product{
		{ID: semenID, Category: "semen", BasePrice: 1_000},
		{ID: pasirID, Category: "pasir", BasePrice: 2_000},
	}
	items := []Item{
		{ProductID: semenID, Qty: 10},
		{ProductID: pasirID, Qty: 1},
	}
	minQty := 5
	ctx := Context{
		Rules: []Rule{{Kind: KindVolume, Value: 10, MinQty: &minQty, Active: true}},
		Now:   testNow,
	}
	got := ComputeCartTotals(items, products, ctx)
	// Only the ten-unit line clears the volume gate.
	if got.Subtotal != 12_000 || got.Discount != 1_000 || got.Total != 11_000 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestComputeCartTotalsSkipsNonPositiveQty(t *testing.T) {
	products := []Product{{ID: semenID, Category: "semen", BasePrice: 1_000}}
	items := []Item{
		{ProductID: semenID, Qty: 0},
		{ProductID: semenID, Qty: -2},
		{ProductID: semenID, Qty: 1},
	}
	got := ComputeCartTotals(items, products, Context{Now: testNow})
	if got.Subtotal != 1_000 {
		t.Fatalf("non-positive quantities must be skipped, got %+v", got)
	}
}
