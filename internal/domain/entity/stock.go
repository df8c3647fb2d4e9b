package entity

import "time"

// StockKey identifica un registro de inventario: (tienda, producto, variante).
// VariantID vacío = stock directo del producto.
type StockKey struct {
	StoreID   string
	ProductID string
	VariantID string
}

// Less orden total de claves; se usa para bloquear filas siempre en el mismo orden.
func (k StockKey) Less(o StockKey) bool {
	if k.StoreID != o.StoreID {
		return k.StoreID < o.StoreID
	}
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.VariantID < o.VariantID
}

// InventoryRecord cantidad actual de una clave de stock. Quantity nunca es negativa.
type InventoryRecord struct {
	StockKey
	Quantity  int64
	MinStock  int64 // umbral de alerta de stock bajo (0 = sin alerta)
	UpdatedAt time.Time
}

// IsLow informa si el registro está en o bajo su umbral de stock mínimo.
func (r *InventoryRecord) IsLow() bool {
	return r.MinStock > 0 && r.Quantity <= r.MinStock
}
