package transport

import (
	"net/url"
	"strconv"
	"strings"

	"retail-desk/internal/domain"
	"retail-desk/internal/format"
	"retail-desk/internal/middleware"
	"retail-desk/internal/query"
	"retail-desk/internal/service"

	"github.com/google/uuid"
)

// paramParser collects query parameter errors instead of stopping at the first
type paramParser struct {
	values url.Values
	errs   []middleware.ValidationError
}

func (p *paramParser) fail(field, message string) {
	p.errs = append(p.errs, middleware.ValidationError{Field: field, Message: message})
}

func (p *paramParser) str(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *paramParser) integer(name string) int {
	raw := p.str(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(name, "Value must be an integer")
		return 0
	}
	return n
}

func (p *paramParser) bound(name string) query.Bound {
	raw := p.str(name)
	if raw == "" {
		return query.Bound{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, "Value must be a number")
		return query.Bound{}
	}
	return query.At(v)
}

func (p *paramParser) id(name string) uuid.UUID {
	raw := p.str(name)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		p.fail(name, "Value must be a UUID")
		return uuid.Nil
	}
	return id
}

func (p *paramParser) day(name string) string {
	raw := p.str(name)
	if raw == "" {
		return ""
	}
	t, ok := format.ParseDate(raw)
	if !ok {
		p.fail(name, "Value must be a date (YYYY-MM-DD)")
		return ""
	}
	return t.Format(domain.DayLayout)
}

func (p *paramParser) page() query.Page {
	return query.Page{Number: p.integer("page"), Size: p.integer("page_size")}
}

// parseSalesQuery maps list parameters 1:1 onto the query criteria
func parseSalesQuery(values url.Values) (service.SalesQuery, []middleware.ValidationError) {
	p := &paramParser{values: values}

	status := domain.SaleStatus(p.str("status"))
	if status != "" && !status.Valid() {
		p.fail("status", "Value must be one of: pending completed cancelled")
	}
	method := domain.PaymentMethod(p.str("payment_method"))
	if method != "" && !method.Valid() {
		p.fail("payment_method", "Value must be one of: cash card transfer")
	}

	q := service.SalesQuery{
		Criteria: query.Criteria{
			ClientName:    p.values.Get("client"),
			ClientID:      p.id("client_id"),
			Status:        status,
			PaymentMethod: method,
			DateFrom:      p.day("date_from"),
			DateTo:        p.day("date_to"),
			AmountMin:     p.bound("amount_min"),
			AmountMax:     p.bound("amount_max"),
		},
		Sort: query.Sort{
			Key:   query.SortKey(p.str("sort")),
			Order: query.ParseSortOrder(p.str("order")),
		},
		Page: p.page(),
	}
	return q, p.errs
}

// parseInventoryQuery reads the product list parameters
func parseInventoryQuery(values url.Values) (service.InventoryQuery, []middleware.ValidationError) {
	p := &paramParser{values: values}

	status := domain.StockStatus(p.str("stock_status"))
	if status != "" && !status.Valid() {
		p.fail("stock_status", "Value must be one of: ok low out_of_stock")
	}

	order := query.SortOrderAsc
	if raw := p.str("order"); raw != "" {
		order = query.ParseSortOrder(raw)
	}

	q := service.InventoryQuery{
		CategoryID: p.id("category_id"),
		Status:     status,
		Search:     p.str("search"),
		Sort:       service.ProductSortKey(p.str("sort")),
		Order:      order,
		Page:       p.page(),
	}
	return q, p.errs
}
