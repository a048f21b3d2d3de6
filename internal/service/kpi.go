package service

import "retail-desk/internal/domain"

// SalesKPIs are the header figures of the sales page
type SalesKPIs struct {
	Count            int     `json:"count"`
	CompletedRevenue float64 `json:"completed_revenue"`
	CompletedCount   int     `json:"completed_count"`
	PendingCount     int     `json:"pending_count"`
	CancelledCount   int     `json:"cancelled_count"`
	AverageTicket    float64 `json:"average_ticket"`
}

// ComputeSalesKPIs summarizes a set of sales. The average ticket is the
// completed revenue over the completed count, 0 when nothing is completed.
func ComputeSalesKPIs(sales []*domain.Sale) SalesKPIs {
	var k SalesKPIs
	for _, s := range sales {
		k.Count++
		switch s.Status {
		case domain.SaleStatusCompleted:
			k.CompletedCount++
			k.CompletedRevenue += s.Total
		case domain.SaleStatusPending:
			k.PendingCount++
		case domain.SaleStatusCancelled:
			k.CancelledCount++
		}
	}
	if k.CompletedCount > 0 {
		k.AverageTicket = k.CompletedRevenue / float64(k.CompletedCount)
	}
	return k
}

// InventoryKPIs are the header figures of the inventory report
type InventoryKPIs struct {
	TotalProducts   int     `json:"total_products"`
	TotalUnits      int     `json:"total_units"`
	InventoryValue  float64 `json:"inventory_value"`
	LowStockCount   int     `json:"low_stock_count"`
	OutOfStockCount int     `json:"out_of_stock_count"`
}

// ComputeInventoryKPIs summarizes the catalog
func ComputeInventoryKPIs(products []*domain.Product) InventoryKPIs {
	var k InventoryKPIs
	for _, p := range products {
		k.TotalProducts++
		k.TotalUnits += p.Stock
		k.InventoryValue += p.Price * float64(p.Stock)
		switch p.StockStatus() {
		case domain.StockStatusLow:
			k.LowStockCount++
		case domain.StockStatusOut:
			k.OutOfStockCount++
		}
	}
	return k
}
