package entity

import "time"

// Store representa un punto de venta de la organización; el stock se lleva por tienda.
type Store struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
