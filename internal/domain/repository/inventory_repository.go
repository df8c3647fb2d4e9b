package repository

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// InventoryRepository puerto del libro de stock (tienda, producto, variante) → cantidad.
// Es el único punto de mutación de stock: ningún componente debe leer y luego escribir la cantidad.
type InventoryRepository interface {
	// GetQuantity devuelve 0 si no existe registro (ausencia = sin stock).
	GetQuantity(ctx context.Context, key entity.StockKey) (int64, error)
	// Get devuelve nil, nil si no existe registro.
	Get(ctx context.Context, key entity.StockKey) (*entity.InventoryRecord, error)
	// Adjust aplica delta con actualización condicional (quantity + delta >= 0).
	// Si el resultado fuese negativo devuelve *domain.InsufficientStockError (LineIndex -1).
	// Crea el registro si no existe y delta >= 0. Devuelve el registro resultante.
	Adjust(ctx context.Context, key entity.StockKey, delta int64) (*entity.InventoryRecord, error)
	// SetMinStock fija el umbral; crea el registro con cantidad 0 si no existe.
	SetMinStock(ctx context.Context, key entity.StockKey, minStock int64) (*entity.InventoryRecord, error)
	// ListByProduct registros de un producto en una tienda (fila directa y/o variantes).
	ListByProduct(ctx context.Context, storeID, productID string) ([]*entity.InventoryRecord, error)
	// ListLowStock registros con MinStock > 0 y Quantity <= MinStock (hasta limit) y el total sin límite.
	ListLowStock(ctx context.Context, storeID string, limit int) ([]*entity.InventoryRecord, int, error)
}
