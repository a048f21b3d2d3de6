package format

import "retail-desk/internal/domain"

var saleStatusLabels = map[domain.SaleStatus]string{
	domain.SaleStatusPending:   "Pendiente",
	domain.SaleStatusCompleted: "Completada",
	domain.SaleStatusCancelled: "Cancelada",
}

var paymentMethodLabels = map[domain.PaymentMethod]string{
	domain.PaymentMethodCash:     "Efectivo",
	domain.PaymentMethodCard:     "Tarjeta",
	domain.PaymentMethodTransfer: "Transferencia",
}

var clientTypeLabels = map[domain.ClientType]string{
	domain.ClientTypeIndividual: "Persona",
	domain.ClientTypeBusiness:   "Empresa",
}

var priorityLabels = map[domain.Priority]string{
	domain.PriorityLow:    "Baja",
	domain.PriorityMedium: "Media",
	domain.PriorityHigh:   "Alta",
	domain.PriorityUrgent: "Urgente",
}

var stockStatusLabels = map[domain.StockStatus]string{
	domain.StockStatusOK:  "Disponible",
	domain.StockStatusLow: "Stock bajo",
	domain.StockStatusOut: "Sin stock",
}

// SaleStatus returns the display label of a sale status, or the raw code if unknown
func SaleStatus(s domain.SaleStatus) string {
	if label, ok := saleStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// PaymentMethod returns the display label of a payment method
func PaymentMethod(m domain.PaymentMethod) string {
	if label, ok := paymentMethodLabels[m]; ok {
		return label
	}
	return string(m)
}

// ClientType returns the display label of a client type
func ClientType(t domain.ClientType) string {
	if label, ok := clientTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Priority returns the display label of a replenishment priority
func Priority(p domain.Priority) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// StockStatus returns the display label of a stock status
func StockStatus(s domain.StockStatus) string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
