package transport

import (
	"errors"
	"net/http"

	"retail-desk/internal/form"
	"retail-desk/internal/middleware"
	"retail-desk/internal/replenishment"
	"retail-desk/internal/service"

	"go.uber.org/zap"
)

// Codes of the sales and inventory endpoints
const (
	CodeInvalidSale       middleware.ErrorCode = "invalid_sale"
	CodeSaleNotFound      middleware.ErrorCode = "sale_not_found"
	CodeProductNotFound   middleware.ErrorCode = "product_not_found"
	CodeSubmitFailed      middleware.ErrorCode = "submit_failed"
	CodeDeliveryInPast    middleware.ErrorCode = "delivery_in_past"
	CodeInvalidPriority   middleware.ErrorCode = "invalid_priority"
	CodeInvalidIdentifier middleware.ErrorCode = "invalid_id"
)

var (
	errInvalidSale = middleware.APIError{Status: http.StatusBadRequest, Code: CodeInvalidSale, Message: "sale has validation errors"}
	errInvalidID   = middleware.APIError{Status: http.StatusBadRequest, Code: CodeInvalidIdentifier, Message: "invalid id"}
)

// domainErrors maps service sentinels to their answer, first match wins
var domainErrors = []struct {
	target error
	api    middleware.APIError
}{
	{service.ErrSaleNotFound, middleware.APIError{Status: http.StatusNotFound, Code: CodeSaleNotFound, Message: "sale not found"}},
	{service.ErrProductNotFound, middleware.APIError{Status: http.StatusNotFound, Code: CodeProductNotFound, Message: "product not found"}},
	{replenishment.ErrUnknownProduct, middleware.APIError{Status: http.StatusNotFound, Code: CodeProductNotFound, Message: "product not found"}},
	{replenishment.ErrDeliveryInPast, middleware.APIError{Status: http.StatusBadRequest, Code: CodeDeliveryInPast, Message: replenishment.ErrDeliveryInPast.Error()}},
	{replenishment.ErrInvalidPriority, middleware.APIError{Status: http.StatusBadRequest, Code: CodeInvalidPriority, Message: replenishment.ErrInvalidPriority.Error()}},
	{form.ErrSubmitFailed, middleware.APIError{Status: http.StatusBadGateway, Code: CodeSubmitFailed, Message: form.SubmitFailedMessage}},
}

// toAPIError resolves err against the domain table. Unknown errors become an
// internal error carrying fallback.
func toAPIError(err error, fallback string) (middleware.APIError, bool) {
	for _, e := range domainErrors {
		if errors.Is(err, e.target) {
			return e.api, true
		}
	}
	return middleware.APIError{Status: http.StatusInternalServerError, Code: middleware.CodeInternal, Message: fallback}, false
}

// respondDomainError answers err, logging the ones no table entry explains
func respondDomainError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var fieldErrs form.FieldErrors
	if errors.As(err, &fieldErrs) {
		middleware.RespondWithFieldErrors(w, errInvalidSale, fieldErrs)
		return
	}

	api, known := toAPIError(err, fallback)
	if !known || api.Status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", string(api.Code)), zap.Error(err))
	}
	middleware.Respond(w, api, nil)
}
