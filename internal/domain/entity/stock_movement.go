package entity

import "time"

// MovementType tipo de movimiento en el libro de stock.
type MovementType string

const (
	MovementTypeSale        MovementType = "sale"         // salida por venta
	MovementTypeExchangeIn  MovementType = "exchange_in"  // devolución en una troca
	MovementTypeExchangeOut MovementType = "exchange_out" // salida en una troca
	MovementTypeTransferOut MovementType = "transfer_out" // traslado, tienda origen
	MovementTypeTransferIn  MovementType = "transfer_in"  // traslado, tienda destino
	MovementTypeAdjustment  MovementType = "adjustment"   // entrada o ajuste manual
)

// StockMovement registro histórico de cada cambio aplicado a un InventoryRecord.
type StockMovement struct {
	ID             string
	OrganizationID string
	StockKey
	Type          MovementType
	Delta         int64 // positivo entrada, negativo salida
	QuantityAfter int64
	ReferenceID   string // venta, troca o traslado
	Reason        string
	CreatedBy     string
	CreatedAt     time.Time
}
