package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayLayout is the calendar-day representation used for date filters
const DayLayout = "2006-01-02"

// SaleStatus is the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Valid reports whether s is a known sale status
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// LineItem is one product entry of a sale. UnitPrice is captured when the
// product is selected and is not recomputed from the catalog afterwards.
type LineItem struct {
	ProductID   uuid.UUID `json:"product_id" db:"product_id" validate:"required"`
	Quantity    int       `json:"quantity" db:"quantity" validate:"gte=1"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price" validate:"gte=0"`
	DiscountPct float64   `json:"discount_pct" db:"discount_pct" validate:"gte=0,lte=100"`
}

// Sale represents a customer order
type Sale struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	Date               time.Time     `json:"date" db:"sale_date"`
	ClientID           uuid.UUID     `json:"client_id" db:"client_id"`
	Items              []LineItem    `json:"items" db:"-"`
	PaymentMethod      PaymentMethod `json:"payment_method" db:"payment_method"`
	Status             SaleStatus    `json:"status" db:"status"`
	Notes              string        `json:"notes" db:"notes"`
	GeneralDiscountPct float64       `json:"general_discount_pct" db:"general_discount_pct"`
	TaxPct             float64       `json:"tax_pct" db:"tax_pct"`
	Total              float64       `json:"total" db:"total"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// Day returns the calendar day of the sale in YYYY-MM-DD form
func (s *Sale) Day() string {
	return s.Date.Format(DayLayout)
}

// Clone returns a deep copy so callers can mutate it without touching s
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]LineItem(nil), s.Items...)
	return &c
}
