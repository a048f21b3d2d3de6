package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"retail-desk/internal/domain"
	"retail-desk/internal/workspace"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound    = errors.New("sale not found")
	ErrProductNotFound = errors.New("product not found")
)

// ProductNotFound is the name shown for a line whose product can't be resolved
const ProductNotFound = "Producto no encontrado"

// Workspace is the read side the services work from
type Workspace interface {
	Snapshot() workspace.Snapshot
	Sale(id uuid.UUID) (*domain.Sale, bool)
	Product(id uuid.UUID) (*domain.Product, bool)
	Refresh(ctx context.Context) error
	Invalidate()
}

// warnings lists the collections whose last fetch failed, sorted by name
func warnings(snap workspace.Snapshot) []string {
	if len(snap.Errors) == 0 {
		return nil
	}

	out := make([]string, 0, len(snap.Errors))
	for name, err := range snap.Errors {
		out = append(out, fmt.Sprintf("%s: %v", name, err))
	}
	sort.Strings(out)
	return out
}
