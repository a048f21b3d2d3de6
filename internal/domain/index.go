package domain

import "github.com/google/uuid"

// ClientNotFound is the name shown for a sale whose client can't be resolved
const ClientNotFound = "Cliente no encontrado"

// ClientIndex maps client IDs to clients
type ClientIndex map[uuid.UUID]*Client

// NewClientIndex builds an index over clients. Later duplicates win.
func NewClientIndex(clients []*Client) ClientIndex {
	idx := make(ClientIndex, len(clients))
	for _, c := range clients {
		if c != nil {
			idx[c.ID] = c
		}
	}
	return idx
}

// Name resolves a client name, falling back to ClientNotFound
func (idx ClientIndex) Name(id uuid.UUID) string {
	if c, ok := idx[id]; ok {
		return c.Name
	}
	return ClientNotFound
}

// ProductIndex maps product IDs to products
type ProductIndex map[uuid.UUID]*Product

// NewProductIndex builds an index over products
func NewProductIndex(products []*Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		if p != nil {
			idx[p.ID] = p
		}
	}
	return idx
}

// Get returns the product with the given ID
func (idx ProductIndex) Get(id uuid.UUID) (*Product, bool) {
	p, ok := idx[id]
	return p, ok
}
