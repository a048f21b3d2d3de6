package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"retail-desk/internal/domain"
	"retail-desk/internal/format"
	"retail-desk/internal/query"
	"retail-desk/internal/replenishment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uncategorized is the breakdown bucket of products without a known category
const Uncategorized = "Sin categoría"

// ProductSortKey orders the inventory product list
type ProductSortKey string

const (
	SortProductsByName  ProductSortKey = "name"
	SortProductsBySKU   ProductSortKey = "sku"
	SortProductsByPrice ProductSortKey = "price"
	SortProductsByStock ProductSortKey = "stock"
	SortProductsByValue ProductSortKey = "value"
)

// InventoryService defines the interface for the inventory screens
type InventoryService interface {
	Report(ctx context.Context, q InventoryQuery) (*InventoryReport, error)
	Replenishment(ctx context.Context, productID uuid.UUID) (*ReplenishmentView, error)
	RequestReplenishment(ctx context.Context, order domain.ReplenishmentOrder) (domain.ReplenishmentOrder, error)
}

// InventoryQuery filters, orders and pages the product list
type InventoryQuery struct {
	CategoryID uuid.UUID
	Status     domain.StockStatus
	Search     string
	Sort       ProductSortKey
	Order      query.SortOrder
	Page       query.Page
}

// ProductRow is one row of the inventory table
type ProductRow struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	SKU          string             `json:"sku"`
	CategoryID   uuid.UUID          `json:"category_id"`
	CategoryName string             `json:"category_name"`
	Price        Money              `json:"price"`
	Stock        int                `json:"stock"`
	MinStock     int                `json:"min_stock"`
	Value        Money              `json:"value"`
	Status       domain.StockStatus `json:"status"`
	StatusLabel  string             `json:"status_label"`
}

// CategoryBreakdown summarizes one category
type CategoryBreakdown struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Products   int       `json:"products"`
	Units      int       `json:"units"`
	Value      Money     `json:"value"`
}

// InventoryKPIView is InventoryKPIs with the value formatted
type InventoryKPIView struct {
	InventoryKPIs
	InventoryValueLabel string `json:"inventory_value_label"`
}

// InventoryReport is the inventory page
type InventoryReport struct {
	KPIs         InventoryKPIView    `json:"kpis"`
	Categories   []CategoryBreakdown `json:"categories"`
	Products     []ProductRow        `json:"products"`
	TotalMatches int                 `json:"total_matches"`
	Page         int                 `json:"page"`
	PageSize     int                 `json:"page_size"`
	TotalPages   int                 `json:"total_pages"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// ReplenishmentView is the replenishment dialog of one product
type ReplenishmentView struct {
	Product           ProductRow                     `json:"product"`
	Suggestion        domain.ReplenishmentSuggestion `json:"suggestion"`
	Draft             domain.ReplenishmentOrder      `json:"draft"`
	DeliveryDateLabel string                         `json:"delivery_date_label"`
	UnitCostLabel     string                         `json:"unit_cost_label"`
	EstimatedTotal    Money                          `json:"estimated_total"`
	PriorityLabel     string                         `json:"priority_label"`
}

type inventoryService struct {
	ws            Workspace
	replenishment *replenishment.Service
	formatter     *format.Formatter
	pageSize      int
	logger        *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(ws Workspace, repl *replenishment.Service, formatter *format.Formatter, pageSize int, logger *zap.Logger) InventoryService {
	return &inventoryService{
		ws:            ws,
		replenishment: repl,
		formatter:     formatter,
		pageSize:      pageSize,
		logger:        logger,
	}
}

func (s *inventoryService) money(amount float64) Money {
	return Money{Amount: amount, Label: s.formatter.Currency(amount)}
}

// Report builds the KPIs, the per-category breakdown and one page of products
func (s *inventoryService) Report(ctx context.Context, q InventoryQuery) (*InventoryReport, error) {
	snap := s.ws.Snapshot()
	names := categoryNames(snap.Categories)

	kpis := ComputeInventoryKPIs(snap.Products)

	matched := FilterProducts(snap.Products, q)
	SortProducts(matched, q.Sort, q.Order)

	if q.Page.Size <= 0 {
		q.Page.Size = s.pageSize
	}
	page := q.Page.Normalized()
	window := query.Window(matched, page)

	rows := make([]ProductRow, 0, len(window))
	for _, p := range window {
		rows = append(rows, s.productRow(p, names))
	}

	return &InventoryReport{
		KPIs: InventoryKPIView{
			InventoryKPIs:       kpis,
			InventoryValueLabel: s.formatter.Currency(kpis.InventoryValue),
		},
		Categories:   s.breakdown(snap.Products, names),
		Products:     rows,
		TotalMatches: len(matched),
		Page:         page.Number,
		PageSize:     page.Size,
		TotalPages:   query.TotalPages(len(matched), page.Size),
		Warnings:     warnings(snap),
	}, nil
}

func categoryNames(categories []*domain.Category) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func (s *inventoryService) productRow(p *domain.Product, names map[uuid.UUID]string) ProductRow {
	category, ok := names[p.CategoryID]
	if !ok {
		category = Uncategorized
	}
	status := p.StockStatus()
	return ProductRow{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		CategoryID:   p.CategoryID,
		CategoryName: category,
		Price:        s.money(p.Price),
		Stock:        p.Stock,
		MinStock:     p.Threshold(),
		Value:        s.money(p.Price * float64(p.Stock)),
		Status:       status,
		StatusLabel:  format.StockStatus(status),
	}
}

func (s *inventoryService) breakdown(products []*domain.Product, names map[uuid.UUID]string) []CategoryBreakdown {
	byID := make(map[uuid.UUID]*CategoryBreakdown)
	for _, p := range products {
		id := p.CategoryID
		if _, ok := names[id]; !ok {
			id = uuid.Nil
		}
		b, ok := byID[id]
		if !ok {
			name := Uncategorized
			if id != uuid.Nil {
				name = names[id]
			}
			b = &CategoryBreakdown{CategoryID: id, Name: name}
			byID[id] = b
		}
		b.Products++
		b.Units += p.Stock
		b.Value.Amount += p.Price * float64(p.Stock)
	}

	out := make([]CategoryBreakdown, 0, len(byID))
	for _, b := range byID {
		b.Value.Label = s.formatter.Currency(b.Value.Amount)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FilterProducts returns the products matching the category, stock status
// and name/SKU search of q, in input order
func FilterProducts(products []*domain.Product, q InventoryQuery) []*domain.Product {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if q.CategoryID != uuid.Nil && p.CategoryID != q.CategoryID {
			continue
		}
		if q.Status != "" && p.StockStatus() != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.SKU), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts orders products in place. Unknown keys sort by name; the
// order defaults to ascending.
func SortProducts(products []*domain.Product, key ProductSortKey, order query.SortOrder) {
	var less func(a, b *domain.Product) bool
	switch key {
	case SortProductsBySKU:
		less = func(a, b *domain.Product) bool { return a.SKU < b.SKU }
	case SortProductsByPrice:
		less = func(a, b *domain.Product) bool { return a.Price < b.Price }
	case SortProductsByStock:
		less = func(a, b *domain.Product) bool { return a.Stock < b.Stock }
	case SortProductsByValue:
		less = func(a, b *domain.Product) bool {
			return a.Price*float64(a.Stock) < b.Price*float64(b.Stock)
		}
	default:
		less = func(a, b *domain.Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}

	desc := order == query.SortOrderDesc
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

// Replenishment returns the suggestion and the prefilled order of a product
func (s *inventoryService) Replenishment(ctx context.Context, productID uuid.UUID) (*ReplenishmentView, error) {
	suggestion, product, err := s.replenishment.Suggest(ctx, productID)
	if errors.Is(err, replenishment.ErrUnknownProduct) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to suggest replenishment: %w", err)
	}

	snap := s.ws.Snapshot()
	draft := replenishment.Draft(suggestion)

	return &ReplenishmentView{
		Product:           s.productRow(product, categoryNames(snap.Categories)),
		Suggestion:        suggestion,
		Draft:             draft,
		DeliveryDateLabel: format.LongDateOf(suggestion.EstimatedDeliveryDate),
		UnitCostLabel:     s.formatter.Currency(suggestion.EstimatedUnitCost),
		EstimatedTotal:    s.money(suggestion.EstimatedUnitCost * float64(suggestion.SuggestedQuantity)),
		PriorityLabel:     format.Priority(suggestion.Priority),
	}, nil
}

// RequestReplenishment records an order for a product
func (s *inventoryService) RequestReplenishment(ctx context.Context, order domain.ReplenishmentOrder) (domain.ReplenishmentOrder, error) {
	return s.replenishment.Request(ctx, order)
}
