package repository

import (
	"context"
	"testing"
	"time"

	"retail-desk/internal/domain"

	"github.com/google/uuid"
)

func createCategory(t *testing.T) *domain.Category {
	t.Helper()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        "Category " + uuid.NewString(),
		Description: "test",
		CreatedAt:   time.Now().UTC(),
	}
	if err := NewCategoryRepository(testDB).Create(context.Background(), category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func createClient(t *testing.T) *domain.Client {
	t.Helper()
	client := &domain.Client{
		ID:        uuid.New(),
		Name:      "Cliente " + uuid.NewString()[:8],
		Email:     "cliente@example.com",
		Type:      domain.ClientTypeBusiness,
		CreatedAt: time.Now().UTC(),
	}
	if err := NewClientRepository(testDB).Create(context.Background(), client); err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func createProduct(t *testing.T, categoryID uuid.UUID, price float64, stock int) *domain.Product {
	t.Helper()
	now := time.Now().UTC()
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Producto",
		SKU:        "SKU-" + uuid.NewString()[:12],
		Price:      price,
		Stock:      stock,
		MinStock:   5,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}
