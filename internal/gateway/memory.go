package gateway

import (
	"context"
	"sync"
	"time"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
)

// Memory is an in-process gateway holding demo data. Every call waits for
// the configured latency to mimic a remote data source.
type Memory struct {
	mu         sync.RWMutex
	latency    time.Duration
	clients    []*domain.Client
	products   []*domain.Product
	categories []*domain.Category
	sales      []*domain.Sale
}

// NewMemory creates a Memory gateway over the given data set
func NewMemory(data Dataset, latency time.Duration) *Memory {
	return &Memory{
		latency:    latency,
		clients:    data.Clients,
		products:   data.Products,
		categories: data.Categories,
		sales:      data.Sales,
	}
}

func (m *Memory) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchClients returns copies of all clients
func (m *Memory) FetchClients(ctx context.Context) ([]*domain.Client, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Client, len(m.clients))
	for i, c := range m.clients {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

// FetchProducts returns copies of all products
func (m *Memory) FetchProducts(ctx context.Context) ([]*domain.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Product, len(m.products))
	for i, p := range m.products {
		cp := *p
		out[i] = &cp
	}
	return out, nil
}

// FetchCategories returns copies of all categories
func (m *Memory) FetchCategories(ctx context.Context) ([]*domain.Category, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Category, len(m.categories))
	for i, c := range m.categories {
		cp := *c
		out[i] = &cp
	}
	return out, nil
}

// FetchSales returns deep copies of all sales
func (m *Memory) FetchSales(ctx context.Context) ([]*domain.Sale, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Sale, len(m.sales))
	for i, s := range m.sales {
		out[i] = s.Clone()
	}
	return out, nil
}

// CreateSale appends a sale, assigning an ID when missing
func (m *Memory) CreateSale(ctx context.Context, sale *domain.Sale) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	stored := sale.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
		sale.ID = stored.ID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sales = append(m.sales, stored)
	for _, c := range m.clients {
		if c.ID == stored.ClientID {
			c.PurchaseCount++
		}
	}
	return nil
}

// UpdateSale replaces a stored sale
func (m *Memory) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.sales {
		if s.ID == sale.ID {
			m.sales[i] = sale.Clone()
			return nil
		}
	}
	return ErrSaleNotFound
}
