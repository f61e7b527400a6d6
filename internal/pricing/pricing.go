// Package pricing computes cart and order totals. The computation is a
// pure function so every mutating operation can invoke it explicitly
// before persisting, and tests can pin its behavior directly.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/vibecommerce/go-cart-checkout/internal/money"
)

// TaxRate is the flat tax applied to the cart subtotal (10%).
var TaxRate = decimal.New(1, -1)

// Totals is the derived money triple on carts and orders.
type Totals struct {
	SubTotal money.Money
	Tax      money.Money
	Total    money.Money
}

// ComputeTotals derives subtotal, tax and total from the line totals.
// Tax is rounded half-up to two decimal places; subtotal and total are
// exact sums.
func ComputeTotals(lineTotals []money.Money) Totals {
	subTotal := money.Zero()
	for _, lt := range lineTotals {
		subTotal = subTotal.Add(lt)
	}
	tax := money.FromDecimal(TaxRate).Mul(subTotal).Round2()
	return Totals{
		SubTotal: subTotal,
		Tax:      tax,
		Total:    subTotal.Add(tax),
	}
}
