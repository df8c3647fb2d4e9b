package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-api/internal/application/ports"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// Mutation un cambio de stock sobre una clave, con los datos de su movimiento.
type Mutation struct {
	Key            entity.StockKey
	OrganizationID string
	Delta          int64
	Type           entity.MovementType
	ReferenceID    string
	Reason         string
	CreatedBy      string
	At             time.Time
}

// SortMutations ordena por clave para que todas las transacciones bloqueen filas en el mismo orden.
func SortMutations(ms []Mutation) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Key.Less(ms[j].Key) })
}

// ApplyInTx aplica la mutación con los repositorios de la transacción del caller y registra el movimiento.
// El ajuste es condicional (nunca deja cantidad negativa); si falla, el caller debe abortar la tx.
func (uc *StockUseCase) ApplyInTx(
	ctx context.Context,
	stockRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	m Mutation,
) (*entity.InventoryRecord, error) {
	if m.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	rec, err := stockRepo.Adjust(ctx, m.Key, m.Delta)
	if err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		OrganizationID: m.OrganizationID,
		StockKey:       m.Key,
		Type:           m.Type,
		Delta:          m.Delta,
		QuantityAfter:  rec.Quantity,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.At,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return rec, nil
}

// RetryConflicts ejecuta fn y la repite mientras devuelva domain.ErrConflict, hasta maxAttempts intentos.
// Los errores de negocio (stock insuficiente, entrada inválida) no se reintentan.
func (uc *StockUseCase) RetryConflicts(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if attempt == uc.maxAttempts {
			break
		}
		uc.metrics.ConflictRetry()
		uc.log.Warn().Int("attempt", attempt).Err(err).Msg("conflicto de stock, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}
	return err
}

// NotifyLowStock publica un aviso por cada registro en o bajo su mínimo. Se llama tras el commit;
// los fallos solo se registran en log.
func (uc *StockUseCase) NotifyLowStock(ctx context.Context, organizationID, referenceID string, records []*entity.InventoryRecord) {
	if uc.publisher == nil {
		return
	}
	for _, rec := range records {
		if rec == nil || !rec.IsLow() {
			continue
		}
		signal := ports.LowStockSignal{
			OrganizationID: organizationID,
			StockKey:       rec.StockKey,
			Quantity:       rec.Quantity,
			MinStock:       rec.MinStock,
			ReferenceID:    referenceID,
			At:             uc.now(),
		}
		if err := uc.publisher.PublishLowStock(ctx, signal); err != nil {
			uc.metrics.LowStockSignal("failed")
			uc.log.Error().Err(err).
				Str("store_id", rec.StoreID).
				Str("product_id", rec.ProductID).
				Msg("no se pudo publicar aviso de stock bajo")
			continue
		}
		uc.metrics.LowStockSignal("published")
	}
}
