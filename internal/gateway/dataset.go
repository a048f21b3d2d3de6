package gateway

import (
	"time"

	"retail-desk/internal/domain"
	"retail-desk/internal/pricing"

	"github.com/google/uuid"
)

// Dataset is a complete set of records for seeding a gateway
type Dataset struct {
	Clients    []*domain.Client
	Products   []*domain.Product
	Categories []*domain.Category
	Sales      []*domain.Sale
}

var demoNamespace = uuid.MustParse("6f1c2a8e-4b7d-4c3e-9a51-0d2b7e9f4c10")

func demoID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(kind+":"+name))
}

func avg(v float64) *float64 { return &v }

// DemoDataset returns a small store catalog with sales spread over the
// thirty days before now. IDs are stable between calls.
func DemoDataset(now time.Time) Dataset {
	categories := []*domain.Category{
		{Name: "Bebidas", Description: "Jugos, aguas y bebidas"},
		{Name: "Abarrotes", Description: "Productos secos y despensa"},
		{Name: "Lácteos", Description: "Leche, quesos y yogures"},
		{Name: "Limpieza", Description: "Aseo del hogar"},
	}
	for _, c := range categories {
		c.ID = demoID("category", c.Name)
		c.CreatedAt = now.AddDate(0, -6, 0)
	}

	products := []*domain.Product{
		{Name: "Agua mineral 1.5L", SKU: "BEB-001", Price: 990, Stock: 48, AvgMonthlySales: avg(60), CategoryID: categories[0].ID},
		{Name: "Jugo de naranja 1L", SKU: "BEB-002", Price: 1790, Stock: 4, AvgMonthlySales: avg(22), CategoryID: categories[0].ID},
		{Name: "Bebida cola 3L", SKU: "BEB-003", Price: 2890, Stock: 0, AvgMonthlySales: avg(35), CategoryID: categories[0].ID},
		{Name: "Arroz grado 1 1kg", SKU: "ABA-001", Price: 1490, Stock: 30, AvgMonthlySales: avg(25), CategoryID: categories[1].ID},
		{Name: "Aceite vegetal 1L", SKU: "ABA-002", Price: 2690, Stock: 12, CategoryID: categories[1].ID},
		{Name: "Fideos spaghetti 400g", SKU: "ABA-003", Price: 890, Stock: 3, AvgMonthlySales: avg(40), CategoryID: categories[1].ID},
		{Name: "Leche entera 1L", SKU: "LAC-001", Price: 1150, Stock: 24, AvgMonthlySales: avg(70), CategoryID: categories[2].ID},
		{Name: "Queso gauda 250g", SKU: "LAC-002", Price: 3490, Stock: 0, CategoryID: categories[2].ID},
		{Name: "Detergente 3L", SKU: "LIM-001", Price: 7990, Stock: 9, AvgMonthlySales: avg(8), CategoryID: categories[3].ID},
		{Name: "Cloro 1L", SKU: "LIM-002", Price: 1090, Stock: 15, AvgMonthlySales: avg(12), CategoryID: categories[3].ID},
	}
	for _, p := range products {
		p.ID = demoID("product", p.SKU)
		p.MinStock = domain.DefaultMinStock
		p.ImageURL = "/img/products/" + p.SKU + ".jpg"
		p.CreatedAt = now.AddDate(0, -3, 0)
		p.UpdatedAt = p.CreatedAt
	}

	clients := []*domain.Client{
		{Name: "María González", Email: "maria.gonzalez@example.com", Phone: "+56 9 1234 5678", Address: "Av. Providencia 1234, Santiago", Type: domain.ClientTypeIndividual},
		{Name: "Juan Pérez", Email: "juan.perez@example.com", Phone: "+56 9 8765 4321", Address: "Los Aromos 55, Ñuñoa", Type: domain.ClientTypeIndividual},
		{Name: "Comercial Los Andes Ltda.", Email: "compras@losandes.example.com", Phone: "+56 2 2345 6789", Address: "Av. Matta 900, Santiago", Type: domain.ClientTypeBusiness},
		{Name: "Ana Rojas", Email: "ana.rojas@example.com", Phone: "+56 9 5555 0101", Address: "Pasaje Azul 12, Maipú", Type: domain.ClientTypeIndividual},
		{Name: "Restaurante El Puerto SpA", Email: "contacto@elpuerto.example.com", Phone: "+56 32 222 3344", Address: "Av. Altamirano 300, Valparaíso", Type: domain.ClientTypeBusiness},
		{Name: "Pedro Soto", Email: "pedro.soto@example.com", Phone: "+56 9 4444 2020", Address: "Calle Larga 77, La Florida", Type: domain.ClientTypeIndividual},
	}
	for _, c := range clients {
		c.ID = demoID("client", c.Email)
		c.CreatedAt = now.AddDate(0, -2, 0)
	}

	statuses := []domain.SaleStatus{domain.SaleStatusCompleted, domain.SaleStatusCompleted, domain.SaleStatusPending, domain.SaleStatusCompleted, domain.SaleStatusCancelled}
	methods := []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodTransfer}

	sales := make([]*domain.Sale, 0, 25)
	for i := 0; i < 25; i++ {
		client := clients[i%len(clients)]
		first := products[(i*3)%len(products)]
		second := products[(i*7+1)%len(products)]

		items := []domain.LineItem{
			{ProductID: first.ID, Quantity: 1 + i%4, UnitPrice: first.Price},
		}
		if i%3 != 0 && second.ID != first.ID {
			items = append(items, domain.LineItem{ProductID: second.ID, Quantity: 1 + i%2, UnitPrice: second.Price, DiscountPct: float64((i % 3) * 5)})
		}

		date := now.AddDate(0, 0, -(i + 1)).Add(time.Duration(9+i%9) * time.Hour)
		sale := &domain.Sale{
			ID:                 demoID("sale", date.Format(time.RFC3339)+client.Email),
			Date:               date,
			ClientID:           client.ID,
			Items:              items,
			PaymentMethod:      methods[i%len(methods)],
			Status:             statuses[i%len(statuses)],
			GeneralDiscountPct: float64((i % 2) * 5),
			TaxPct:             19,
			CreatedAt:          date,
			UpdatedAt:          date,
		}
		sale.Total = pricing.ForSale(sale).Total
		client.PurchaseCount++
		sales = append(sales, sale)
	}

	return Dataset{
		Clients:    clients,
		Products:   products,
		Categories: categories,
		Sales:      sales,
	}
}
