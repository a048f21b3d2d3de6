// Package pricing derives the monetary totals of a sale from its line items.
package pricing

import "retail-desk/internal/domain"

// Totals holds the aggregate amounts of a sale
type Totals struct {
	Subtotal              float64 `json:"subtotal"`
	GeneralDiscountAmount float64 `json:"general_discount_amount"`
	TaxAmount             float64 `json:"tax_amount"`
	Total                 float64 `json:"total"`
}

// LineBreakdown holds the amounts of a single line item
type LineBreakdown struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Line computes the gross amount, discount and net contribution of one item.
// Out-of-range quantities or percentages are not clamped.
func Line(item domain.LineItem) LineBreakdown {
	subtotal := float64(item.Quantity) * item.UnitPrice
	discount := subtotal * (item.DiscountPct / 100)
	return LineBreakdown{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

// LineTotal returns what a line item contributes to the sale subtotal
func LineTotal(item domain.LineItem) float64 {
	return Line(item).Total
}

// Calculate folds the line items left to right and applies the general
// discount and then tax on the discounted subtotal. No rounding happens here.
func Calculate(items []domain.LineItem, generalDiscountPct, taxPct float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += LineTotal(item)
	}

	discount := subtotal * (generalDiscountPct / 100)
	tax := (subtotal - discount) * (taxPct / 100)

	return Totals{
		Subtotal:              subtotal,
		GeneralDiscountAmount: discount,
		TaxAmount:             tax,
		Total:                 subtotal - discount + tax,
	}
}

// ForSale recomputes the totals of a stored sale from its own percentages
func ForSale(sale *domain.Sale) Totals {
	return Calculate(sale.Items, sale.GeneralDiscountPct, sale.TaxPct)
}
