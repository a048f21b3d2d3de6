package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/form"
	"retail-desk/internal/format"
	"retail-desk/internal/pricing"
	"retail-desk/internal/query"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesService defines the interface for the sales screens
type SalesService interface {
	List(ctx context.Context, q SalesQuery) (*SalesPage, error)
	Preview(ctx context.Context, id uuid.UUID) (*SalePreview, error)
	Quote(ctx context.Context, in SaleInput) (*Quote, error)
	Create(ctx context.Context, in SaleInput) (*domain.Sale, error)
	Update(ctx context.Context, id uuid.UUID, in SaleInput) (*domain.Sale, error)
}

// SalesQuery is the list request: filters, ordering and page
type SalesQuery struct {
	Criteria query.Criteria
	Sort     query.Sort
	Page     query.Page
}

// SaleInput is a submitted sale draft. Nil percentages keep the form defaults.
type SaleInput struct {
	ClientID           uuid.UUID            `json:"client_id"`
	Items              []ItemInput          `json:"items" validate:"max=100"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method"`
	Status             domain.SaleStatus    `json:"status"`
	Notes              string               `json:"notes" validate:"max=1000"`
	GeneralDiscountPct *float64             `json:"general_discount_pct"`
	TaxPct             *float64             `json:"tax_pct"`
}

// ItemInput is one submitted line item
type ItemInput struct {
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	DiscountPct float64   `json:"discount_pct"`
}

// SaleRow is one row of the sales table
type SaleRow struct {
	ID                 uuid.UUID            `json:"id"`
	Date               time.Time            `json:"date"`
	DateLabel          string               `json:"date_label"`
	ClientID           uuid.UUID            `json:"client_id"`
	ClientName         string               `json:"client_name"`
	ItemCount          int                  `json:"item_count"`
	Total              float64              `json:"total"`
	TotalLabel         string               `json:"total_label"`
	Status             domain.SaleStatus    `json:"status"`
	StatusLabel        string               `json:"status_label"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method"`
	PaymentMethodLabel string               `json:"payment_method_label"`
}

// SalesKPIView is SalesKPIs with money fields formatted
type SalesKPIView struct {
	SalesKPIs
	CompletedRevenueLabel string `json:"completed_revenue_label"`
	AverageTicketLabel    string `json:"average_ticket_label"`
}

// SalesPage is one page of the sales table with its header figures
type SalesPage struct {
	Items        []SaleRow    `json:"items"`
	TotalMatches int          `json:"total_matches"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	TotalPages   int          `json:"total_pages"`
	KPIs         SalesKPIView `json:"kpis"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// Money is an amount with its display form
type Money struct {
	Amount float64 `json:"amount"`
	Label  string  `json:"label"`
}

// TotalsView is pricing.Totals with display forms
type TotalsView struct {
	Subtotal        Money `json:"subtotal"`
	GeneralDiscount Money `json:"general_discount"`
	Tax             Money `json:"tax"`
	Total           Money `json:"total"`
}

// PreviewLine is one line of the preview panel
type PreviewLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   Money     `json:"unit_price"`
	DiscountPct float64   `json:"discount_pct"`
	Subtotal    Money     `json:"subtotal"`
	Discount    Money     `json:"discount"`
	Total       Money     `json:"total"`
}

// SalePreview is the read-only detail panel of a sale
type SalePreview struct {
	ID                 uuid.UUID            `json:"id"`
	Date               time.Time            `json:"date"`
	DateLabel          string               `json:"date_label"`
	Client             *domain.Client       `json:"client,omitempty"`
	ClientName         string               `json:"client_name"`
	ClientTypeLabel    string               `json:"client_type_label,omitempty"`
	Lines              []PreviewLine        `json:"lines"`
	GeneralDiscountPct float64              `json:"general_discount_pct"`
	TaxPct             float64              `json:"tax_pct"`
	Totals             TotalsView           `json:"totals"`
	Status             domain.SaleStatus    `json:"status"`
	StatusLabel        string               `json:"status_label"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method"`
	PaymentMethodLabel string               `json:"payment_method_label"`
	Notes              string               `json:"notes"`
}

// Quote is the live total of a draft plus what would block its submission
type Quote struct {
	Totals TotalsView       `json:"totals"`
	Errors form.FieldErrors `json:"errors,omitempty"`
}

// SalesOptions configures the sales service
type SalesOptions struct {
	DefaultTaxPct float64
	PageSize      int
}

type salesService struct {
	ws        Workspace
	writer    form.Writer
	pipeline  *query.Pipeline
	formatter *format.Formatter
	opts      SalesOptions
	logger    *zap.Logger
}

// NewSalesService creates a new instance of SalesService
func NewSalesService(ws Workspace, writer form.Writer, formatter *format.Formatter, opts SalesOptions, logger *zap.Logger) SalesService {
	return &salesService{
		ws:        ws,
		writer:    writer,
		pipeline:  query.NewPipeline(),
		formatter: formatter,
		opts:      opts,
		logger:    logger,
	}
}

// List filters, sorts and pages the sales and summarizes the matches
func (s *salesService) List(ctx context.Context, q SalesQuery) (*SalesPage, error) {
	snap := s.ws.Snapshot()

	if q.Page.Size <= 0 {
		q.Page.Size = s.opts.PageSize
	}
	result := s.pipeline.Run(snap.Version, snap.Sales, snap.ClientIndex, q.Criteria, q.Sort, q.Page)

	rows := make([]SaleRow, 0, len(result.Items))
	for _, sale := range result.Items {
		rows = append(rows, s.row(sale, snap.ClientIndex))
	}

	kpis := ComputeSalesKPIs(result.Matches)

	return &SalesPage{
		Items:        rows,
		TotalMatches: result.TotalMatches,
		Page:         result.Page,
		PageSize:     result.PageSize,
		TotalPages:   result.TotalPages,
		KPIs: SalesKPIView{
			SalesKPIs:             kpis,
			CompletedRevenueLabel: s.formatter.Currency(kpis.CompletedRevenue),
			AverageTicketLabel:    s.formatter.Currency(kpis.AverageTicket),
		},
		Warnings: warnings(snap),
	}, nil
}

func (s *salesService) row(sale *domain.Sale, clients domain.ClientIndex) SaleRow {
	return SaleRow{
		ID:                 sale.ID,
		Date:               sale.Date,
		DateLabel:          format.ShortDate(sale.Date),
		ClientID:           sale.ClientID,
		ClientName:         clients.Name(sale.ClientID),
		ItemCount:          len(sale.Items),
		Total:              sale.Total,
		TotalLabel:         s.formatter.Currency(sale.Total),
		Status:             sale.Status,
		StatusLabel:        format.SaleStatus(sale.Status),
		PaymentMethod:      sale.PaymentMethod,
		PaymentMethodLabel: format.PaymentMethod(sale.PaymentMethod),
	}
}

func (s *salesService) money(amount float64) Money {
	return Money{Amount: amount, Label: s.formatter.Currency(amount)}
}

func (s *salesService) totals(t pricing.Totals) TotalsView {
	return TotalsView{
		Subtotal:        s.money(t.Subtotal),
		GeneralDiscount: s.money(t.GeneralDiscountAmount),
		Tax:             s.money(t.TaxAmount),
		Total:           s.money(t.Total),
	}
}

// Preview resolves a sale into its detail panel
func (s *salesService) Preview(ctx context.Context, id uuid.UUID) (*SalePreview, error) {
	sale, ok := s.ws.Sale(id)
	if !ok {
		return nil, ErrSaleNotFound
	}
	snap := s.ws.Snapshot()

	preview := &SalePreview{
		ID:                 sale.ID,
		Date:               sale.Date,
		DateLabel:          format.LongDateOf(sale.Date),
		ClientName:         snap.ClientIndex.Name(sale.ClientID),
		GeneralDiscountPct: sale.GeneralDiscountPct,
		TaxPct:             sale.TaxPct,
		Totals:             s.totals(pricing.ForSale(sale)),
		Status:             sale.Status,
		StatusLabel:        format.SaleStatus(sale.Status),
		PaymentMethod:      sale.PaymentMethod,
		PaymentMethodLabel: format.PaymentMethod(sale.PaymentMethod),
		Notes:              sale.Notes,
	}
	if client, ok := snap.ClientIndex[sale.ClientID]; ok {
		preview.Client = client
		preview.ClientTypeLabel = format.ClientType(client.Type)
	}

	preview.Lines = make([]PreviewLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		line := pricing.Line(item)
		pl := PreviewLine{
			ProductID:   item.ProductID,
			ProductName: ProductNotFound,
			Quantity:    item.Quantity,
			UnitPrice:   s.money(item.UnitPrice),
			DiscountPct: item.DiscountPct,
			Subtotal:    s.money(line.Subtotal),
			Discount:    s.money(line.Discount),
			Total:       s.money(line.Total),
		}
		if product, ok := snap.ProductIdx.Get(item.ProductID); ok {
			pl.ProductName = product.Name
			pl.SKU = product.SKU
		}
		preview.Lines = append(preview.Lines, pl)
	}

	return preview, nil
}

// Quote computes the live totals of a draft without submitting it
func (s *salesService) Quote(ctx context.Context, in SaleInput) (*Quote, error) {
	c := s.newCreate()
	if errs := apply(c, nil, in); errs != nil {
		return &Quote{Totals: s.totals(c.Totals()), Errors: errs}, nil
	}
	return &Quote{Totals: s.totals(c.Totals()), Errors: c.Validate()}, nil
}

// Create submits a new sale through the form controller
func (s *salesService) Create(ctx context.Context, in SaleInput) (*domain.Sale, error) {
	c := s.newCreate()
	if errs := apply(c, nil, in); errs != nil {
		return nil, errs
	}
	return s.submit(ctx, c)
}

// Update submits changes to an existing sale through the form controller
func (s *salesService) Update(ctx context.Context, id uuid.UUID, in SaleInput) (*domain.Sale, error) {
	existing, ok := s.ws.Sale(id)
	if !ok {
		return nil, ErrSaleNotFound
	}
	snap := s.ws.Snapshot()

	c := form.NewEdit(s.writer, existing, snap.ProductIdx, snap.ClientIndex, s.logger)
	if errs := apply(c, existing.Items, in); errs != nil {
		return nil, errs
	}
	return s.submit(ctx, c)
}

func (s *salesService) newCreate() *form.Controller {
	snap := s.ws.Snapshot()
	return form.NewCreate(s.writer, snap.ProductIdx, snap.ClientIndex, form.Defaults{TaxPct: s.opts.DefaultTaxPct}, s.logger)
}

func (s *salesService) submit(ctx context.Context, c *form.Controller) (*domain.Sale, error) {
	sale, err := c.Submit(ctx)
	if err != nil {
		var fieldErrs form.FieldErrors
		if errors.As(err, &fieldErrs) {
			return nil, fieldErrs
		}
		return nil, fmt.Errorf("failed to submit sale: %w", err)
	}

	// The list must show the write, so refresh before answering
	s.ws.Invalidate()
	if err := s.ws.Refresh(ctx); err != nil {
		s.logger.Warn("Failed to refresh workspace after save", zap.Error(err))
	}

	return sale, nil
}

// apply replays a submitted draft onto the controller. Lines keep their
// captured price when the product at that position is unchanged.
func apply(c *form.Controller, previous []domain.LineItem, in SaleInput) form.FieldErrors {
	errs := form.FieldErrors{}

	if in.ClientID != uuid.Nil {
		err := c.SetClient(in.ClientID)
		if errors.Is(err, form.ErrUnknownClient) {
			err = errors.New(domain.ClientNotFound)
		}
		record(errs, form.FieldClient, err)
	}

	want := len(in.Items)
	if want == 0 {
		want = 1
	}
	for len(c.Draft().Items) < want {
		if _, err := c.AddItem(); err != nil {
			errs[form.FieldItems] = err.Error()
			return errs
		}
	}
	for n := len(c.Draft().Items); n > want; n-- {
		if err := c.RemoveItem(n - 1); err != nil {
			errs[form.FieldItems] = err.Error()
			return errs
		}
	}

	for i, item := range in.Items {
		unchanged := i < len(previous) && previous[i].ProductID == item.ProductID
		if !unchanged {
			if err := c.SetItemProduct(i, item.ProductID); err != nil {
				if errors.Is(err, form.ErrUnknownProduct) {
					err = errors.New(ProductNotFound)
				}
				record(errs, form.ItemField(i, "product_id"), err)
				continue
			}
		}
		record(errs, form.ItemField(i, "quantity"), c.SetItemQuantity(i, item.Quantity))
		record(errs, form.ItemField(i, "discount_pct"), c.SetItemDiscount(i, item.DiscountPct))
	}

	if in.GeneralDiscountPct != nil {
		record(errs, form.FieldGeneralDiscount, c.SetGeneralDiscount(*in.GeneralDiscountPct))
	}
	if in.TaxPct != nil {
		record(errs, form.FieldTax, c.SetTax(*in.TaxPct))
	}
	if in.Status != "" {
		record(errs, form.FieldStatus, c.SetStatus(in.Status))
	}
	if in.PaymentMethod != "" {
		record(errs, form.FieldPaymentMethod, c.SetPaymentMethod(in.PaymentMethod))
	}
	record(errs, form.FieldNotes, c.SetNotes(in.Notes))

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// record keeps the first setter error for field
func record(errs form.FieldErrors, field string, err error) {
	if err == nil {
		return
	}
	if _, ok := errs[field]; !ok {
		errs[field] = err.Error()
	}
}
