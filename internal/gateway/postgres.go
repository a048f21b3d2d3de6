package gateway

import (
	"context"
	"errors"

	"retail-desk/internal/domain"
	"retail-desk/internal/repository"
)

// Postgres is a gateway backed by the SQL repositories
type Postgres struct {
	clients    repository.ClientRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	sales      repository.SaleRepository
}

// NewPostgres creates a Postgres gateway
func NewPostgres(
	clients repository.ClientRepository,
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	sales repository.SaleRepository,
) *Postgres {
	return &Postgres{
		clients:    clients,
		products:   products,
		categories: categories,
		sales:      sales,
	}
}

func (g *Postgres) FetchClients(ctx context.Context) ([]*domain.Client, error) {
	return g.clients.List(ctx)
}

func (g *Postgres) FetchProducts(ctx context.Context) ([]*domain.Product, error) {
	return g.products.List(ctx)
}

func (g *Postgres) FetchCategories(ctx context.Context) ([]*domain.Category, error) {
	return g.categories.List(ctx)
}

func (g *Postgres) FetchSales(ctx context.Context) ([]*domain.Sale, error) {
	return g.sales.List(ctx)
}

func (g *Postgres) CreateSale(ctx context.Context, sale *domain.Sale) error {
	return g.sales.Create(ctx, sale)
}

func (g *Postgres) UpdateSale(ctx context.Context, sale *domain.Sale) error {
	if err := g.sales.Update(ctx, sale); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return ErrSaleNotFound
		}
		return err
	}
	return nil
}

// Seed writes a dataset through the repositories, categories and clients first
func Seed(ctx context.Context, g *Postgres, data Dataset) error {
	for _, c := range data.Categories {
		if err := g.categories.Create(ctx, c); err != nil && !errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return err
		}
	}
	for _, c := range data.Clients {
		purchases := c.PurchaseCount
		// purchase counts are rebuilt as the sales are inserted
		c.PurchaseCount = 0
		if err := g.clients.Create(ctx, c); err != nil {
			return err
		}
		c.PurchaseCount = purchases
	}
	for _, p := range data.Products {
		if err := g.products.Create(ctx, p); err != nil {
			return err
		}
	}
	for _, s := range data.Sales {
		if err := g.sales.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
