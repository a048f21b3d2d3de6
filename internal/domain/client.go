package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClientType tags a client as a person or a company
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeBusiness   ClientType = "business"
)

// Valid reports whether t is a known client type
func (t ClientType) Valid() bool {
	return t == ClientTypeIndividual || t == ClientTypeBusiness
}

// Client represents a customer of the business
type Client struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	Address       string     `json:"address" db:"address"`
	Type          ClientType `json:"type" db:"client_type"`
	PurchaseCount int        `json:"purchase_count" db:"purchase_count"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
