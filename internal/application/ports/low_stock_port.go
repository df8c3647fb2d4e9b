package ports

import (
	"context"
	"time"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// LowStockSignal aviso de que una clave de stock quedó en o bajo su stock mínimo.
type LowStockSignal struct {
	OrganizationID string
	entity.StockKey
	Quantity    int64
	MinStock    int64
	ReferenceID string // venta, troca, traslado o ajuste que lo provocó
	At          time.Time
}

// LowStockPublisher define el puerto de salida para notificar stock bajo.
// Cualquier adaptador (stream Redis, log) debe implementar esta interfaz.
// Se invoca siempre después del commit: un fallo de publicación no deshace la operación.
type LowStockPublisher interface {
	PublishLowStock(ctx context.Context, signal LowStockSignal) error
}
