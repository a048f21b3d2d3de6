package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a replenishment request
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ReplenishmentSuggestion is derived from a product and never stored
type ReplenishmentSuggestion struct {
	ProductID             uuid.UUID `json:"product_id"`
	AvgMonthlySales       float64   `json:"avg_monthly_sales"`
	LeadTimeDays          int       `json:"lead_time_days"`
	SafetyStock           int       `json:"safety_stock"`
	SuggestedQuantity     int       `json:"suggested_quantity"`
	EstimatedDeliveryDate time.Time `json:"estimated_delivery_date"`
	EstimatedUnitCost     float64   `json:"estimated_unit_cost"`
	Priority              Priority  `json:"priority"`
}

// ReplenishmentOrder is the user-editable request built from a suggestion
type ReplenishmentOrder struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"gte=1"`
	Supplier     string    `json:"supplier" validate:"max=200"`
	UnitCost     float64   `json:"unit_cost" validate:"gte=0"`
	DeliveryDate time.Time `json:"delivery_date" validate:"required"`
	Priority     Priority  `json:"priority" validate:"required"`
	Notes        string    `json:"notes" validate:"max=1000"`
	RequestedAt  time.Time `json:"requested_at"`
}
