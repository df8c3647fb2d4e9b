package repository

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// ProductRepository lectura de productos con su modo de stock (CRUD de catálogo fuera del núcleo).
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// StoreRepository lectura de tiendas.
type StoreRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}
