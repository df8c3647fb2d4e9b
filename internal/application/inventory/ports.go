package inventory

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de stock: ajustes, movimientos y ventas se confirman juntos o no se confirman.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.InventoryRepository,
		movRepo repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
