// Package gateway is the data access boundary for clients, products and sales.
package gateway

import (
	"context"
	"errors"

	"retail-desk/internal/domain"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// Gateway is the data source the screens read from and write sales to
type Gateway interface {
	FetchClients(ctx context.Context) ([]*domain.Client, error)
	FetchProducts(ctx context.Context) ([]*domain.Product, error)
	FetchCategories(ctx context.Context) ([]*domain.Category, error)
	FetchSales(ctx context.Context) ([]*domain.Sale, error)
	CreateSale(ctx context.Context, sale *domain.Sale) error
	UpdateSale(ctx context.Context, sale *domain.Sale) error
}
