// Package replenishment suggests reorder quantities and accepts
// replenishment requests for products running low.
package replenishment

import (
	"math"
	"time"

	"retail-desk/internal/domain"
)

const (
	// DefaultAvgMonthlySales is assumed when a product has no sales history
	DefaultAvgMonthlySales = 5.0

	// LeadTimeDays is the assumed supplier lead time
	LeadTimeDays = 15

	// SafetyStockFactor is the share of monthly sales kept as buffer
	SafetyStockFactor = 0.5

	// DeliveryDays is the default offset of the estimated delivery date
	DeliveryDays = 7

	// CostRatio estimates unit cost from the sale price
	CostRatio = 0.7
)

// Suggest derives a reorder suggestion for product as of now
func Suggest(product *domain.Product, now time.Time) domain.ReplenishmentSuggestion {
	avg := DefaultAvgMonthlySales
	if product.AvgMonthlySales != nil {
		avg = *product.AvgMonthlySales
	}

	safetyStock := math.Ceil(avg * SafetyStockFactor)
	suggested := math.Ceil(avg*float64(LeadTimeDays)/30 + safetyStock)

	priority := domain.PriorityMedium
	if product.Stock == 0 {
		priority = domain.PriorityHigh
	}

	return domain.ReplenishmentSuggestion{
		ProductID:             product.ID,
		AvgMonthlySales:       avg,
		LeadTimeDays:          LeadTimeDays,
		SafetyStock:           int(safetyStock),
		SuggestedQuantity:     int(suggested),
		EstimatedDeliveryDate: now.AddDate(0, 0, DeliveryDays),
		EstimatedUnitCost:     product.Price * CostRatio,
		Priority:              priority,
	}
}

// Draft pre-populates an editable order from a suggestion
func Draft(s domain.ReplenishmentSuggestion) domain.ReplenishmentOrder {
	return domain.ReplenishmentOrder{
		ProductID:    s.ProductID,
		Quantity:     s.SuggestedQuantity,
		UnitCost:     s.EstimatedUnitCost,
		DeliveryDate: s.EstimatedDeliveryDate,
		Priority:     s.Priority,
	}
}
