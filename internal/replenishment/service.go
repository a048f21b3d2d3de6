package replenishment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retail-desk/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrDeliveryInPast  = errors.New("delivery date is before today")
	ErrUnknownProduct  = errors.New("product not found")
)

// ProductLookup resolves products by ID
type ProductLookup interface {
	Product(id uuid.UUID) (*domain.Product, bool)
}

// Service accepts replenishment requests. Orders are kept in memory only;
// nothing is sent to a supplier or written to the gateway.
type Service struct {
	products ProductLookup
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	orders []domain.ReplenishmentOrder
}

// NewService creates a replenishment Service
func NewService(products ProductLookup, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Suggest returns the suggestion for a known product
func (s *Service) Suggest(ctx context.Context, productID uuid.UUID) (domain.ReplenishmentSuggestion, *domain.Product, error) {
	product, ok := s.products.Product(productID)
	if !ok {
		return domain.ReplenishmentSuggestion{}, nil, ErrUnknownProduct
	}
	return Suggest(product, s.now()), product, nil
}

// Request validates and records an order
func (s *Service) Request(ctx context.Context, order domain.ReplenishmentOrder) (domain.ReplenishmentOrder, error) {
	if err := s.validate.Struct(order); err != nil {
		return domain.ReplenishmentOrder{}, err
	}
	if !order.Priority.Valid() {
		return domain.ReplenishmentOrder{}, ErrInvalidPriority
	}
	if _, ok := s.products.Product(order.ProductID); !ok {
		return domain.ReplenishmentOrder{}, ErrUnknownProduct
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if order.DeliveryDate.Before(today) {
		return domain.ReplenishmentOrder{}, fmt.Errorf("%w: %s", ErrDeliveryInPast, order.DeliveryDate.Format(domain.DayLayout))
	}

	order.ID = uuid.New()
	order.RequestedAt = now

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	s.logger.Info("Replenishment requested",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", order.ProductID.String()),
		zap.Int("quantity", order.Quantity),
		zap.String("priority", string(order.Priority)),
	)

	return order, nil
}

// Orders returns a copy of the recorded orders, oldest first
func (s *Service) Orders() []domain.ReplenishmentOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ReplenishmentOrder(nil), s.orders...)
}
