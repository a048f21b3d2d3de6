package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMinStock is the reorder threshold used when a product has none set
const DefaultMinStock = 5

// Product represents a product in the catalog
type Product struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	SKU             string    `json:"sku" db:"sku"`
	Description     string    `json:"description" db:"description"`
	Price           float64   `json:"price" db:"price"`
	Stock           int       `json:"stock" db:"stock"`
	MinStock        int       `json:"min_stock" db:"min_stock"`
	AvgMonthlySales *float64  `json:"avg_monthly_sales,omitempty" db:"avg_monthly_sales"`
	CategoryID      uuid.UUID `json:"category_id" db:"category_id"`
	ImageURL        string    `json:"image_url" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Threshold returns the stock level at or below which the product counts as low
func (p *Product) Threshold() int {
	if p.MinStock <= 0 {
		return DefaultMinStock
	}
	return p.MinStock
}

// StockStatus classifies the current stock of the product
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockStatusOut
	case p.Stock <= p.Threshold():
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// StockStatus is the inventory health of a single product
type StockStatus string

const (
	StockStatusOK  StockStatus = "ok"
	StockStatusLow StockStatus = "low"
	StockStatusOut StockStatus = "out_of_stock"
)

// Valid reports whether s is a known stock status
func (s StockStatus) Valid() bool {
	switch s {
	case StockStatusOK, StockStatusLow, StockStatusOut:
		return true
	}
	return false
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
