package entity

import (
	"math"
	"time"

	"github.com/jhoicas/retail-api/internal/domain"
)

// SaleKind distingue una venta de una troca (venta compensatoria).
type SaleKind string

const (
	SaleKindSale     SaleKind = "sale"
	SaleKindExchange SaleKind = "exchange"
)

// LineDirection sentido de la línea respecto al stock.
type LineDirection string

const (
	LineOut      LineDirection = "out"      // sale de la tienda
	LineReturned LineDirection = "returned" // vuelve a la tienda (troca)
)

// Límites por línea de venta y por ajuste de stock.
const (
	MaxLineQuantity   int64 = 1_000_000_000
	MaxUnitPriceCents int64 = 1_000_000_000_000
)

// ValidQuantity cantidad positiva dentro del límite.
func ValidQuantity(q int64) bool {
	return q > 0 && q <= MaxLineQuantity
}

// ValidPrice precio unitario no negativo dentro del límite.
func ValidPrice(cents int64) bool {
	return cents >= 0 && cents <= MaxUnitPriceCents
}

// SaleLine línea de venta. Quantity > 0 siempre; el sentido lo da Direction.
type SaleLine struct {
	ProductID      string
	VariantID      string
	Quantity       int64
	UnitPriceCents int64
	Direction      LineDirection
}

// TotalCents total de la línea con signo: negativo si es devolución.
func (l SaleLine) TotalCents() int64 {
	t := l.Quantity * l.UnitPriceCents
	if l.Direction == LineReturned {
		return -t
	}
	return t
}

// Sale venta confirmada junto con sus efectos de inventario. Inmutable tras el commit.
type Sale struct {
	ID             string
	OrganizationID string
	StoreID        string
	ClientID       string
	Kind           SaleKind
	OriginalSaleID string // solo para trocas
	TotalCents     int64
	CreatedBy      string
	CreatedAt      time.Time
	Lines          []SaleLine
}

// ComputeTotal suma los totales de línea en centavos; ErrInvalidInput si algún producto o suma desborda int64.
func (s *Sale) ComputeTotal() (int64, error) {
	var total int64
	for _, l := range s.Lines {
		t, ok := MulInt64(l.Quantity, l.UnitPriceCents)
		if !ok {
			return 0, domain.ErrInvalidInput
		}
		if l.Direction == LineReturned {
			t = -t
		}
		if total, ok = AddInt64(total, t); !ok {
			return 0, domain.ErrInvalidInput
		}
	}
	return total, nil
}

// SoldQuantities cantidades que salieron de la tienda por clave de stock.
func (s *Sale) SoldQuantities() map[StockKey]int64 {
	out := make(map[StockKey]int64)
	for _, l := range s.Lines {
		if l.Direction != LineOut {
			continue
		}
		out[StockKey{StoreID: s.StoreID, ProductID: l.ProductID, VariantID: l.VariantID}] += l.Quantity
	}
	return out
}

// AddInt64 a+b; ok=false si desborda.
func AddInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// MulInt64 a*b; ok=false si desborda.
func MulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}
