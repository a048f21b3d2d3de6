// Package query filters, sorts and pages the sale collection for display.
package query

import (
	"strings"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
)

// DefaultPageSize is used when a page size below 1 is requested
const DefaultPageSize = 12

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ParseSortOrder accepts asc/desc in any case and defaults to descending
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(SortOrderAsc)) {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// SortKey names the sale attribute to order by
type SortKey string

const (
	SortByDate          SortKey = "date"
	SortByClient        SortKey = "client"
	SortByTotal         SortKey = "total"
	SortByStatus        SortKey = "status"
	SortByPaymentMethod SortKey = "payment_method"
	SortByID            SortKey = "id"
)

var validSortKeys = map[SortKey]bool{
	SortByDate:          true,
	SortByClient:        true,
	SortByTotal:         true,
	SortByStatus:        true,
	SortByPaymentMethod: true,
	SortByID:            true,
}

// Valid reports whether k is a supported sort key
func (k SortKey) Valid() bool {
	return validSortKeys[k]
}

// Bound is an optional numeric limit
type Bound struct {
	Value float64
	Set   bool
}

// At returns a bound set to v
func At(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// Criteria lists every supported sale filter. Zero values impose no constraint.
type Criteria struct {
	ClientName    string
	Status        domain.SaleStatus
	PaymentMethod domain.PaymentMethod
	ClientID      uuid.UUID
	// DateFrom and DateTo are inclusive YYYY-MM-DD days
	DateFrom  string
	DateTo    string
	AmountMin Bound
	AmountMax Bound
}

// IsEmpty reports whether no filter is active
func (c Criteria) IsEmpty() bool {
	return c == Criteria{}
}

// Sort is the ordering applied after filtering
type Sort struct {
	Key   SortKey
	Order SortOrder
}

// DefaultSort orders sales newest first
var DefaultSort = Sort{Key: SortByDate, Order: SortOrderDesc}

// normalize replaces unknown keys and orders with the defaults
func (s Sort) normalize() Sort {
	if !s.Key.Valid() {
		s.Key = DefaultSort.Key
	}
	if s.Order != SortOrderAsc && s.Order != SortOrderDesc {
		s.Order = DefaultSort.Order
	}
	return s
}

// Page selects a 1-indexed window of the sorted result
type Page struct {
	Number int
	Size   int
}

// Normalized applies the default size and clamps the number to at least 1
func (p Page) Normalized() Page {
	return p.normalize()
}

func (p Page) normalize() Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Number <= 0 {
		p.Number = 1
	}
	return p
}
