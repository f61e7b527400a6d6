package pricing

import (
	"testing"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil)
	if !got.SubTotal.IsZero() || !got.Tax.IsZero() || !got.Total.IsZero() {
		t.Fatalf("expected all-zero totals, got %+v", got)
	}
}

func TestComputeTotalsSingleLine(t *testing.T) {
	// 2 x 1499: subtotal 2998, tax 299.8, total 3297.8
	got := ComputeTotals([]money.Money{money.FromInt(1499).MulInt(2)})
	if got.SubTotal.String() != "2998" {
		t.Fatalf("subtotal: expected 2998, got %s", got.SubTotal)
	}
	if got.Tax.String() != "299.8" {
		t.Fatalf("tax: expected 299.8, got %s", got.Tax)
	}
	if got.Total.String() != "3297.8" {
		t.Fatalf("total: expected 3297.8, got %s", got.Total)
	}
}

func TestComputeTotalsMultipleLines(t *testing.T) {
	lines := []money.Money{
		money.FromInt(799),
		money.FromInt(2999).MulInt(3),
		money.FromFloat(12.55),
	}
	got := ComputeTotals(lines)
	if got.SubTotal.String() != "9808.55" {
		t.Fatalf("subtotal: expected 9808.55, got %s", got.SubTotal)
	}
	// 980.855 rounds half-up to 980.86
	if got.Tax.String() != "980.86" {
		t.Fatalf("tax: expected 980.86, got %s", got.Tax)
	}
	if got.Total.String() != "10789.41" {
		t.Fatalf("total: expected 10789.41, got %s", got.Total)
	}
}

func TestTotalEqualsSubTotalPlusTax(t *testing.T) {
	got := ComputeTotals([]money.Money{money.FromFloat(0.01), money.FromFloat(0.02)})
	if !got.Total.Equal(got.SubTotal.Add(got.Tax)) {
		t.Fatalf("total %s != subtotal %s + tax %s", got.Total, got.SubTotal, got.Tax)
	}
}
