// Package form implements the create/edit sale form: it owns the draft,
// validates it and submits it to the gateway.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/pricing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is where the form is in its lifecycle
type State string

const (
	StateEmptyDraft   State = "empty_draft"
	StateEditing      State = "editing"
	StateValidating   State = "validating"
	StateInvalid      State = "invalid"
	StateSubmitting   State = "submitting"
	StateSubmitted    State = "submitted"
	StateSubmitFailed State = "submit_failed"
)

// Mode tells whether the form creates a new sale or edits an existing one
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Writer persists sales
type Writer interface {
	CreateSale(ctx context.Context, sale *domain.Sale) error
	UpdateSale(ctx context.Context, sale *domain.Sale) error
}

// Draft is the mutable sale being edited
type Draft struct {
	ID                 uuid.UUID            `json:"id"`
	Date               time.Time            `json:"date"`
	ClientID           uuid.UUID            `json:"client_id"`
	Items              []domain.LineItem    `json:"items"`
	PaymentMethod      domain.PaymentMethod `json:"payment_method" validate:"oneof=cash card transfer"`
	Status             domain.SaleStatus    `json:"status" validate:"oneof=pending completed cancelled"`
	Notes              string               `json:"notes"`
	GeneralDiscountPct float64              `json:"general_discount_pct" validate:"gte=0,lte=100"`
	TaxPct             float64              `json:"tax_pct" validate:"gte=0,lte=100"`
}

// Defaults seeds a new draft
type Defaults struct {
	TaxPct        float64
	PaymentMethod domain.PaymentMethod
	Status        domain.SaleStatus
}

// Controller owns a single draft sale. It is not safe for concurrent use.
type Controller struct {
	mode     Mode
	state    State
	draft    Draft
	created  time.Time
	products domain.ProductIndex
	clients  domain.ClientIndex
	writer   Writer
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	errors       FieldErrors
	generalError string
}

var validate = validator.New()

// NewCreate starts an empty draft with one blank line item
func NewCreate(writer Writer, products domain.ProductIndex, clients domain.ClientIndex, defaults Defaults, logger *zap.Logger) *Controller {
	if defaults.PaymentMethod == "" {
		defaults.PaymentMethod = domain.PaymentMethodCash
	}
	if defaults.Status == "" {
		defaults.Status = domain.SaleStatusPending
	}

	c := newController(ModeCreate, writer, products, clients, logger)
	c.state = StateEmptyDraft
	c.draft = Draft{
		Items:         []domain.LineItem{blankItem()},
		PaymentMethod: defaults.PaymentMethod,
		Status:        defaults.Status,
		TaxPct:        defaults.TaxPct,
	}
	return c
}

// NewEdit loads an existing sale into the draft
func NewEdit(writer Writer, sale *domain.Sale, products domain.ProductIndex, clients domain.ClientIndex, logger *zap.Logger) *Controller {
	c := newController(ModeEdit, writer, products, clients, logger)
	c.state = StateEditing
	c.created = sale.CreatedAt
	c.draft = Draft{
		ID:                 sale.ID,
		Date:               sale.Date,
		ClientID:           sale.ClientID,
		Items:              append([]domain.LineItem(nil), sale.Items...),
		PaymentMethod:      sale.PaymentMethod,
		Status:             sale.Status,
		Notes:              sale.Notes,
		GeneralDiscountPct: sale.GeneralDiscountPct,
		TaxPct:             sale.TaxPct,
	}
	if len(c.draft.Items) == 0 {
		c.draft.Items = []domain.LineItem{blankItem()}
	}
	return c
}

func newController(mode Mode, writer Writer, products domain.ProductIndex, clients domain.ClientIndex, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		mode:     mode,
		products: products,
		clients:  clients,
		writer:   writer,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

func blankItem() domain.LineItem {
	return domain.LineItem{Quantity: 1}
}

// Mode returns whether the form creates or edits
func (c *Controller) Mode() Mode { return c.mode }

// State returns the current lifecycle state
func (c *Controller) State() State { return c.state }

// Errors returns the field errors of the last validation
func (c *Controller) Errors() FieldErrors { return c.errors }

// GeneralError returns the message of the last failed submission
func (c *Controller) GeneralError() string { return c.generalError }

// Draft returns a copy of the draft
func (c *Controller) Draft() Draft {
	d := c.draft
	d.Items = append([]domain.LineItem(nil), c.draft.Items...)
	return d
}

// edit runs a mutation, moving the form back to Editing
func (c *Controller) edit(fn func() error) error {
	switch c.state {
	case StateSubmitted:
		return ErrClosed
	case StateSubmitting, StateValidating:
		return ErrBusy
	}
	if err := fn(); err != nil {
		return err
	}
	c.state = StateEditing
	return nil
}

func (c *Controller) item(i int) (*domain.LineItem, error) {
	if i < 0 || i >= len(c.draft.Items) {
		return nil, ErrItemOutOfRange
	}
	return &c.draft.Items[i], nil
}

// SetClient selects the client of the sale
func (c *Controller) SetClient(id uuid.UUID) error {
	return c.edit(func() error {
		if _, ok := c.clients[id]; !ok && id != uuid.Nil {
			return ErrUnknownClient
		}
		c.draft.ClientID = id
		return nil
	})
}

// AddItem appends a blank line item and returns its index
func (c *Controller) AddItem() (int, error) {
	err := c.edit(func() error {
		c.draft.Items = append(c.draft.Items, blankItem())
		return nil
	})
	return len(c.draft.Items) - 1, err
}

// RemoveItem deletes a line item; the last remaining one can't be removed
func (c *Controller) RemoveItem(i int) error {
	return c.edit(func() error {
		if _, err := c.item(i); err != nil {
			return err
		}
		if len(c.draft.Items) == 1 {
			return ErrLastItem
		}
		c.draft.Items = append(c.draft.Items[:i], c.draft.Items[i+1:]...)
		return nil
	})
}

// SetItemProduct selects a product for a line and captures its current price.
// uuid.Nil clears the line back to blank.
func (c *Controller) SetItemProduct(i int, productID uuid.UUID) error {
	return c.edit(func() error {
		item, err := c.item(i)
		if err != nil {
			return err
		}
		if productID == uuid.Nil {
			item.ProductID = uuid.Nil
			item.UnitPrice = 0
			return nil
		}
		product, ok := c.products.Get(productID)
		if !ok {
			return ErrUnknownProduct
		}
		item.ProductID = product.ID
		item.UnitPrice = product.Price
		return nil
	})
}

// SetItemQuantity sets the quantity of a line
func (c *Controller) SetItemQuantity(i, quantity int) error {
	return c.edit(func() error {
		item, err := c.item(i)
		if err != nil {
			return err
		}
		item.Quantity = quantity
		return nil
	})
}

// SetItemDiscount sets the per-line discount percentage
func (c *Controller) SetItemDiscount(i int, pct float64) error {
	return c.edit(func() error {
		item, err := c.item(i)
		if err != nil {
			return err
		}
		item.DiscountPct = pct
		return nil
	})
}

// SetGeneralDiscount sets the discount applied to the whole subtotal
func (c *Controller) SetGeneralDiscount(pct float64) error {
	return c.edit(func() error {
		c.draft.GeneralDiscountPct = pct
		return nil
	})
}

// SetTax sets the tax percentage
func (c *Controller) SetTax(pct float64) error {
	return c.edit(func() error {
		c.draft.TaxPct = pct
		return nil
	})
}

// SetStatus sets the sale status
func (c *Controller) SetStatus(status domain.SaleStatus) error {
	return c.edit(func() error {
		c.draft.Status = status
		return nil
	})
}

// SetPaymentMethod sets how the sale is paid
func (c *Controller) SetPaymentMethod(method domain.PaymentMethod) error {
	return c.edit(func() error {
		c.draft.PaymentMethod = method
		return nil
	})
}

// SetNotes sets the free-text notes
func (c *Controller) SetNotes(notes string) error {
	return c.edit(func() error {
		c.draft.Notes = notes
		return nil
	})
}

// selectedItems returns the lines that reference a known product, with their
// draft positions
func (c *Controller) selectedItems() ([]domain.LineItem, []int) {
	var items []domain.LineItem
	var positions []int
	for i, item := range c.draft.Items {
		if _, ok := c.products.Get(item.ProductID); ok {
			items = append(items, item)
			positions = append(positions, i)
		}
	}
	return items, positions
}

// Totals returns the live totals of the lines with a product selected
func (c *Controller) Totals() pricing.Totals {
	items, _ := c.selectedItems()
	return pricing.Calculate(items, c.draft.GeneralDiscountPct, c.draft.TaxPct)
}

// Validate checks the draft. It returns nil and leaves the form in Editing
// when the draft is valid, or the field errors and the Invalid state.
func (c *Controller) Validate() FieldErrors {
	if c.state == StateSubmitted || c.state == StateSubmitting {
		return c.errors
	}
	c.state = StateValidating

	errs := FieldErrors{}

	if _, ok := c.clients[c.draft.ClientID]; !ok {
		errs[FieldClient] = "Debe seleccionar un cliente"
	}

	if err := c.validate.Struct(c.draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[draftField(fe.Field())] = fieldMessage(fe)
			}
		}
	}

	items, positions := c.selectedItems()
	if len(items) == 0 {
		errs[FieldItems] = "Debe agregar al menos un producto"
	}

	for n, item := range items {
		i := positions[n]
		if err := c.validate.Struct(item); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs[ItemField(i, itemField(fe.Field()))] = fieldMessage(fe)
				}
			}
		}

		product, _ := c.products.Get(item.ProductID)
		if item.Quantity > product.Stock {
			errs[ItemField(i, "quantity")] = fmt.Sprintf("Stock insuficiente. Disponible: %d", product.Stock)
		}
	}

	if total := pricing.Calculate(items, c.draft.GeneralDiscountPct, c.draft.TaxPct).Total; !(total > 0) {
		errs[FieldTotal] = "El total debe ser mayor a cero"
	}

	if len(errs) > 0 {
		c.errors = errs
		c.state = StateInvalid
		return errs
	}

	c.errors = nil
	c.state = StateEditing
	return nil
}

func draftField(name string) string {
	switch name {
	case "GeneralDiscountPct":
		return FieldGeneralDiscount
	case "TaxPct":
		return FieldTax
	case "Status":
		return FieldStatus
	case "PaymentMethod":
		return FieldPaymentMethod
	default:
		return strings.ToLower(name)
	}
}

func itemField(name string) string {
	switch name {
	case "Quantity":
		return "quantity"
	case "DiscountPct":
		return "discount_pct"
	case "UnitPrice":
		return "unit_price"
	case "ProductID":
		return "product_id"
	default:
		return strings.ToLower(name)
	}
}

// Payload builds the normalized sale that Submit writes
func (c *Controller) Payload() *domain.Sale {
	items, _ := c.selectedItems()
	now := c.now()

	sale := &domain.Sale{
		ID:                 c.draft.ID,
		Date:               c.draft.Date,
		ClientID:           c.draft.ClientID,
		Items:              items,
		PaymentMethod:      c.draft.PaymentMethod,
		Status:             c.draft.Status,
		Notes:              strings.TrimSpace(c.draft.Notes),
		GeneralDiscountPct: c.draft.GeneralDiscountPct,
		TaxPct:             c.draft.TaxPct,
		CreatedAt:          c.created,
		UpdatedAt:          now,
	}
	if sale.Date.IsZero() {
		sale.Date = now
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	sale.Total = pricing.ForSale(sale).Total
	return sale
}

// Submit validates the draft and writes it, waiting for the write to finish.
// A failed write leaves the form open in SubmitFailed; it is not retried.
func (c *Controller) Submit(ctx context.Context) (*domain.Sale, error) {
	switch c.state {
	case StateSubmitted:
		return nil, ErrClosed
	case StateSubmitting:
		return nil, ErrBusy
	}

	if errs := c.Validate(); errs != nil {
		return nil, errs
	}

	c.state = StateSubmitting
	c.generalError = ""

	sale := c.Payload()
	var err error
	if c.mode == ModeEdit {
		err = c.writer.UpdateSale(ctx, sale)
	} else {
		if sale.ID == uuid.Nil {
			sale.ID = uuid.New()
		}
		err = c.writer.CreateSale(ctx, sale)
	}

	if err != nil {
		c.state = StateSubmitFailed
		c.generalError = SubmitFailedMessage
		c.logger.Error("Failed to save sale",
			zap.String("mode", string(c.mode)),
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	c.state = StateSubmitted
	c.draft.ID = sale.ID
	c.logger.Info("Sale saved",
		zap.String("mode", string(c.mode)),
		zap.String("sale_id", sale.ID.String()),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}
