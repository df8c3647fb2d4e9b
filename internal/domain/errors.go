package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrMisconfigured     = errors.New("configuración requerida ausente")
)

// InsufficientStockError identifica la línea (y la clave de stock) que no pudo cubrirse.
// errors.Is(err, ErrInsufficientStock) es true para cualquier *InsufficientStockError.
type InsufficientStockError struct {
	LineIndex int // índice de la línea en la petición; -1 si la operación no tiene líneas
	StoreID   string
	ProductID string
	VariantID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	if e.LineIndex >= 0 {
		return fmt.Sprintf("stock insuficiente en línea %d (producto %s): solicitado %d, disponible %d",
			e.LineIndex, e.ProductID, e.Requested, e.Available)
	}
	return fmt.Sprintf("stock insuficiente (producto %s): solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// WithLine devuelve una copia del error asociada al índice de línea indicado.
func (e *InsufficientStockError) WithLine(index int) *InsufficientStockError {
	cp := *e
	cp.LineIndex = index
	return &cp
}
