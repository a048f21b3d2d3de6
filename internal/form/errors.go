package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalid        = errors.New("sale form has validation errors")
	ErrSubmitFailed   = errors.New("sale could not be saved")
	ErrClosed         = errors.New("sale form already submitted")
	ErrBusy           = errors.New("sale form is being submitted")
	ErrItemOutOfRange = errors.New("line item index out of range")
	ErrUnknownProduct = errors.New("product not found")
	ErrUnknownClient  = errors.New("client not found")
	ErrLastItem       = errors.New("a sale needs at least one line item")
)

// SubmitFailedMessage is the single message shown when the write fails
const SubmitFailedMessage = "Error al guardar la venta. Intente nuevamente."

// Field keys used in FieldErrors
const (
	FieldClient          = "client"
	FieldItems           = "items"
	FieldTotal           = "total"
	FieldGeneralDiscount = "general_discount_pct"
	FieldTax             = "tax_pct"
	FieldStatus          = "status"
	FieldPaymentMethod   = "payment_method"
	FieldNotes           = "notes"
)

// ItemField returns the error key of a field of the i-th line item
func ItemField(i int, field string) string {
	return fmt.Sprintf("items[%d].%s", i, field)
}

// FieldErrors maps a field key to a user-facing message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalid) match a FieldErrors value
func (e FieldErrors) Is(target error) bool {
	return target == ErrInvalid
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "gte":
		return "Debe ser mayor o igual a " + e.Param()
	case "lte":
		return "Debe ser menor o igual a " + e.Param()
	case "oneof":
		return "Valor no permitido"
	default:
		return "Valor inválido"
	}
}
