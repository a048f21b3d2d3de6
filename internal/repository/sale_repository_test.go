package repository

import (
	"context"
	"testing"
	"time"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleRepository_CreateKeepsLineOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSaleRepository(testDB)
	clients := NewClientRepository(testDB)

	category := createCategory(t)
	client := createClient(t)
	p1 := createProduct(t, category.ID, 1000, 10)
	p2 := createProduct(t, category.ID, 500, 10)

	now := time.Now().UTC().Truncate(time.Second)
	sale := &domain.Sale{
		ID:       uuid.New(),
		Date:     now,
		ClientID: client.ID,
		Items: []domain.LineItem{
			{ProductID: p2.ID, Quantity: 1, UnitPrice: 500},
			{ProductID: p1.ID, Quantity: 2, UnitPrice: 1000, DiscountPct: 10},
		},
		PaymentMethod:      domain.PaymentMethodCard,
		Status:             domain.SaleStatusPending,
		Notes:              "entrega en tienda",
		GeneralDiscountPct: 5,
		TaxPct:             19,
		Total:              2600.15,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, repo.Create(ctx, sale))

	found, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, p2.ID, found.Items[0].ProductID)
	assert.Equal(t, p1.ID, found.Items[1].ProductID)
	assert.Equal(t, 10.0, found.Items[1].DiscountPct)
	assert.InDelta(t, 2600.15, found.Total, 0.001)
	assert.Equal(t, domain.PaymentMethodCard, found.PaymentMethod)
	assert.Equal(t, "entrega en tienda", found.Notes)

	updatedClient, err := clients.FindByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedClient.PurchaseCount)
}

func TestSaleRepository_UpdateReplacesItems(t *testing.T) {
	ctx := context.Background()
	repo := NewSaleRepository(testDB)

	category := createCategory(t)
	client := createClient(t)
	product := createProduct(t, category.ID, 1000, 10)

	now := time.Now().UTC()
	sale := &domain.Sale{
		ID:            uuid.New(),
		Date:          now,
		ClientID:      client.ID,
		Items:         []domain.LineItem{{ProductID: product.ID, Quantity: 1, UnitPrice: 1000}},
		PaymentMethod: domain.PaymentMethodCash,
		Status:        domain.SaleStatusPending,
		Total:         1000,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.Create(ctx, sale))

	sale.Items = []domain.LineItem{{ProductID: product.ID, Quantity: 3, UnitPrice: 1000}}
	sale.Status = domain.SaleStatusCompleted
	sale.Total = 3000
	require.NoError(t, repo.Update(ctx, sale))

	all, err := repo.List(ctx)
	require.NoError(t, err)

	var found *domain.Sale
	for _, s := range all {
		if s.ID == sale.ID {
			found = s
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 3, found.Items[0].Quantity)
	assert.Equal(t, domain.SaleStatusCompleted, found.Status)
}

func TestSaleRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSaleRepository(testDB)

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSaleNotFound)

	err = repo.Update(ctx, &domain.Sale{ID: uuid.New(), ClientID: uuid.New(), PaymentMethod: domain.PaymentMethodCash, Status: domain.SaleStatusPending})
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
