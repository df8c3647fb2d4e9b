package dto

import "time"

// AdjustStockRequest body para POST /api/inventory/adjustments. Quantity con signo.
type AdjustStockRequest struct {
	StoreID   string `json:"store_id,omitempty"` // por defecto la tienda de la sesión
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// TransferStockRequest body para POST /api/inventory/transfers.
type TransferStockRequest struct {
	FromStoreID string `json:"from_store_id"`
	ToStoreID   string `json:"to_store_id"`
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	Quantity    int64  `json:"quantity"`
}

// SetMinStockRequest body para PUT /api/inventory/min-stock.
type SetMinStockRequest struct {
	StoreID   string `json:"store_id,omitempty"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	MinStock  int64  `json:"min_stock"`
}

// StockRecordResponse registro de inventario.
type StockRecordResponse struct {
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id,omitempty"`
	Quantity  int64     `json:"quantity"`
	MinStock  int64     `json:"min_stock"`
	Low       bool      `json:"low"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductStockResponse stock total de un producto en una tienda con desglose por variante.
type ProductStockResponse struct {
	StoreID   string                `json:"store_id"`
	ProductID string                `json:"product_id"`
	Mode      string                `json:"mode"`
	Total     int64                 `json:"total"`
	Records   []StockRecordResponse `json:"records"`
}

// TransferResponse resultado de un traslado.
type TransferResponse struct {
	TransferID string              `json:"transfer_id"`
	From       StockRecordResponse `json:"from"`
	To         StockRecordResponse `json:"to"`
}

// LowStockResponse listado de registros en o bajo su stock mínimo.
type LowStockResponse struct {
	Items []StockRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockMovementResponse movimiento del historial de stock.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ProductID     string    `json:"product_id"`
	VariantID     string    `json:"variant_id,omitempty"`
	Type          string    `json:"type"`
	Delta         int64     `json:"delta"`
	QuantityAfter int64     `json:"quantity_after"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
