package transport

import (
	"net/http"

	"retail-desk/internal/form"
	"retail-desk/internal/middleware"
	"retail-desk/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesHandler handles HTTP requests for the sales screens
type SalesHandler struct {
	salesService service.SalesService
	logger       *zap.Logger
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService service.SalesService, logger *zap.Logger) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// RegisterRoutes registers all sale routes. Sales can't be deleted.
func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/quote", h.Quote)
		r.Get("/{id}", h.Preview)
		r.Put("/{id}", h.Update)
	})
}

// List handles the filtered, sorted and paged sales table
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) {
	q, errs := parseSalesQuery(r.URL.Query())
	if len(errs) > 0 {
		middleware.RespondWithValidationErrors(w, errs)
		return
	}

	page, err := h.salesService.List(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Preview handles the detail panel of one sale
func (h *SalesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	preview, err := h.salesService.Preview(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to load sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, preview)
}

// Quote handles live totals of a draft
func (h *SalesHandler) Quote(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	quote, err := h.salesService.Quote(r.Context(), in)
	if err != nil {
		h.respondError(w, err, "failed to quote sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, quote)
}

// Create handles a new sale submission
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	sale, err := h.salesService.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, err, form.SubmitFailedMessage)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// Update handles changes to an existing sale
func (h *SalesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	sale, err := h.salesService.Update(r.Context(), id, in)
	if err != nil {
		h.respondError(w, err, form.SubmitFailedMessage)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

func (h *SalesHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.SaleInput, bool) {
	var in service.SaleInput
	if err := middleware.DecodeAndValidate(r, &in); err != nil {
		h.logger.Debug("Sale request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return in, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return in, false
	}
	return in, true
}

func (h *SalesHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	respondDomainError(w, h.logger, err, fallback)
}

// pathID parses the {id} URL parameter, answering 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.Respond(w, errInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
