package entity

import (
	"time"

	"github.com/jhoicas/retail-api/internal/domain"
)

// ProductStatus estado comercial del producto.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Product representa un producto del catálogo. El precio base se expresa en centavos.
type Product struct {
	ID             string
	OrganizationID string
	CategoryID     string
	Name           string
	BasePriceCents int64
	Status         ProductStatus
	Stock          StockMode // DirectStock o PerVariantStock, nunca ambos
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductVariant combinación color/talla de un producto.
type ProductVariant struct {
	ID        string
	ProductID string
	ColorID   string
	SizeID    string
}

// StockMode modo de control de stock de un producto (tipo suma cerrado).
type StockMode interface {
	// Name devuelve "direct" o "per_variant".
	Name() string
	stockMode()
}

// DirectStock: el stock se lleva en el propio producto (sin variantes).
type DirectStock struct{}

// PerVariantStock: el stock se lleva por variante; el producto tiene al menos una.
type PerVariantStock struct {
	Variants []ProductVariant
}

func (DirectStock) Name() string     { return "direct" }
func (DirectStock) stockMode()       {}
func (PerVariantStock) Name() string { return "per_variant" }
func (PerVariantStock) stockMode()   {}

// StockModeFor construye el modo a partir de las variantes persistidas.
func StockModeFor(variants []ProductVariant) StockMode {
	if len(variants) == 0 {
		return DirectStock{}
	}
	return PerVariantStock{Variants: variants}
}

// HasVariant informa si la variante pertenece al producto.
func (m PerVariantStock) HasVariant(variantID string) bool {
	for _, v := range m.Variants {
		if v.ID == variantID {
			return true
		}
	}
	return false
}

// StockKeyFor valida que variantID sea coherente con el modo de stock del producto y
// devuelve la clave del registro de inventario en la tienda.
//   - DirectStock: variantID debe ser vacío.
//   - PerVariantStock: variantID obligatorio y perteneciente al producto.
func (p *Product) StockKeyFor(storeID, variantID string) (StockKey, error) {
	switch mode := p.Stock.(type) {
	case PerVariantStock:
		if variantID == "" || !mode.HasVariant(variantID) {
			return StockKey{}, domain.ErrInvalidInput
		}
	case DirectStock, nil:
		if variantID != "" {
			return StockKey{}, domain.ErrInvalidInput
		}
	}
	return StockKey{StoreID: storeID, ProductID: p.ID, VariantID: variantID}, nil
}

// Sellable informa si el producto puede venderse o moverse.
func (p *Product) Sellable() bool {
	return p.Status == ProductStatusActive
}
