package repository

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// StockMovementRepository puerto del historial de movimientos de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, storeID, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
