package domain

import "github.com/shopspring/decimal"

// TotalLine is one line item fed into the totals calculator. Quantity is the
// legacy field name still sent by older clients; Qty wins when both are set.
type TotalLine struct {
	Price    decimal.Decimal `json:"price"`
	Qty      int64           `json:"qty"`
	Quantity int64           `json:"quantity"`
}

// EffectiveQty resolves the two quantity field variants.
func (l TotalLine) EffectiveQty() int64 {
	if l.Qty > 0 {
		return l.Qty
	}
	return l.Quantity
}

// Totals carries the derived amounts as two-decimal fixed-point strings.
type Totals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// CalculateTotals computes subtotal, tax and tax-inclusive total for a set of
// line items. Pure: no side effects, an empty list yields all-zero totals.
func CalculateTotals(items []TotalLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(item.EffectiveQty())
		subtotal = subtotal.Add(item.Price.Mul(qty))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(tax).Round(2)

	return Totals{
		Subtotal: subtotal.StringFixed(2),
		Tax:      tax.StringFixed(2),
		Total:    total.StringFixed(2),
	}
}
