// Package document holds the pure totals math shared by invoices, quotations
// and purchase orders. Nothing in here touches storage or carries state:
// recomputing the same lines always yields the same result.
package document

import "github.com/shopspring/decimal"

// Line is the calculator's view of one document row. Discount is an absolute
// amount, TaxRate a percentage (10 means 10%). Purchase order lines carry
// neither and leave both at zero.
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
}

// Totals is a document's aggregate amounts.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// purchaseTaxRate is the flat tax applied to purchase order subtotals.
var purchaseTaxRate = decimal.NewFromFloat(0.10)

// gross is quantity times unit price, before discount and tax.
func gross(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// LineTotal computes an invoice or quotation line total:
// (quantity * unit_price - discount) * (1 + tax_rate/100).
func LineTotal(l Line) decimal.Decimal {
	afterDiscount := gross(l).Sub(l.Discount)
	tax := afterDiscount.Mul(l.TaxRate).Div(hundred)

	return afterDiscount.Add(tax)
}

// CalculateTotals aggregates invoice or quotation lines:
// subtotal is the plain sum of quantity * unit_price, discount and tax are
// summed per line, and total = subtotal - discount + tax.
func CalculateTotals(lines []Line) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
	}

	for _, l := range lines {
		g := gross(l)
		t.Subtotal = t.Subtotal.Add(g)
		t.Discount = t.Discount.Add(l.Discount)
		t.Tax = t.Tax.Add(g.Sub(l.Discount).Mul(l.TaxRate).Div(hundred))
	}

	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)

	return t
}

// PurchaseLineTotal computes a purchase order line total: quantity * unit_price.
func PurchaseLineTotal(l Line) decimal.Decimal {
	return gross(l)
}

// CalculatePurchaseTotals aggregates purchase order lines with the flat 10%
// tax: total = subtotal + subtotal * 0.10.
func CalculatePurchaseTotals(lines []Line) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
	}

	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(gross(l))
	}

	t.Tax = t.Subtotal.Mul(purchaseTaxRate)
	t.Total = t.Subtotal.Add(t.Tax)

	return t
}
