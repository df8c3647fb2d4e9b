package repository

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia de ventas (cabecera + líneas).
type SaleRepository interface {
	// Create inserta la venta y sus líneas; debe ejecutarse en la misma tx que los ajustes de stock.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// ReturnedQuantitiesForUpdate bloquea la venta original y devuelve lo ya devuelto
	// por trocas anteriores, por clave de stock.
	ReturnedQuantitiesForUpdate(ctx context.Context, originalSaleID string) (map[entity.StockKey]int64, error)
}
