package transport

import (
	"net/http"
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/middleware"
	"retail-desk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReplenishmentRequest is the submitted replenishment order
type ReplenishmentRequest struct {
	ProductID    uuid.UUID       `json:"product_id" validate:"required"`
	Quantity     int             `json:"quantity" validate:"gte=1"`
	Supplier     string          `json:"supplier" validate:"max=200"`
	UnitCost     float64         `json:"unit_cost" validate:"gte=0"`
	DeliveryDate string          `json:"delivery_date" validate:"required"`
	Priority     domain.Priority `json:"priority" validate:"required,oneof=low medium high urgent"`
	Notes        string          `json:"notes" validate:"max=1000"`
}

// InventoryHandler handles HTTP requests for the inventory screens
type InventoryHandler struct {
	inventoryService service.InventoryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           logger,
	}
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/report", h.Report)
		r.Get("/products/{id}/replenishment", h.Replenishment)
		r.Post("/replenishment", h.RequestReplenishment)
	})
}

// Report handles the inventory KPIs and product list
func (h *InventoryHandler) Report(w http.ResponseWriter, r *http.Request) {
	q, errs := parseInventoryQuery(r.URL.Query())
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	report, err := h.inventoryService.Report(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to build inventory report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build inventory report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// Replenishment handles the suggestion of one product
func (h *InventoryHandler) Replenishment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.inventoryService.Replenishment(r.Context(), id)
	if err != nil {
		respondDomainError(w, h.logger, err, "failed to suggest replenishment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RequestReplenishment handles a replenishment order submission
func (h *InventoryHandler) RequestReplenishment(w http.ResponseWriter, r *http.Request) {
	var req ReplenishmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Replenishment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delivery, err := time.ParseInLocation(domain.DayLayout, req.DeliveryDate, time.Local)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{
			Field:   "delivery_date",
			Message: "Value must be a date (YYYY-MM-DD)",
		}})
		return
	}

	order, err := h.inventoryService.RequestReplenishment(r.Context(), domain.ReplenishmentOrder{
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		UnitCost:     req.UnitCost,
		DeliveryDate: delivery,
		Priority:     req.Priority,
		Notes:        req.Notes,
	})
	if err != nil {
		respondDomainError(w, h.logger, err, "failed to request replenishment")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}
