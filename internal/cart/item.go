package cart

import "github.com/shopspring/decimal"

// LineItem aggregates the quantity of one product in the cart. Title, image and
// price are snapshots taken when the product was first added.
type LineItem struct {
	ID       int64
	Title    string
	Image    string
	Price    decimal.Decimal
	Quantity int
}

// Subtotal is price × quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals summarizes a cart.
type Totals struct {
	Items int
	Price decimal.Decimal
}

// ComputeTotals sums quantities and subtotals over items.
func ComputeTotals(items []LineItem) Totals {
	totals := Totals{Price: decimal.Zero}
	for _, item := range items {
		totals.Items += item.Quantity
		totals.Price = totals.Price.Add(item.Subtotal())
	}
	return totals
}
