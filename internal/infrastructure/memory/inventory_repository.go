package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)
var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// InventoryRepo libro de stock en memoria.
type InventoryRepo struct {
	s  *Store
	tx *txState
}

// NewInventoryRepository repositorio fuera de transacción.
func NewInventoryRepository(s *Store) *InventoryRepo {
	return &InventoryRepo{s: s}
}

func (r *InventoryRepo) GetQuantity(ctx context.Context, key entity.StockKey) (int64, error) {
	defer r.s.lock(r.tx)()
	if rec, ok := r.s.inventory[key]; ok {
		return rec.Quantity, nil
	}
	return 0, nil
}

func (r *InventoryRepo) Get(ctx context.Context, key entity.StockKey) (*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	rec, ok := r.s.inventory[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Adjust aplica delta solo si la cantidad resultante no es negativa.
func (r *InventoryRepo) Adjust(ctx context.Context, key entity.StockKey, delta int64) (*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	rec, ok := r.s.inventory[key]
	var current int64
	if ok {
		current = rec.Quantity
	}
	next, inRange := entity.AddInt64(current, delta)
	if !inRange {
		return nil, fmt.Errorf("%w: ajuste fuera de rango", domain.ErrInvalidInput)
	}
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			LineIndex: -1,
			StoreID:   key.StoreID,
			ProductID: key.ProductID,
			VariantID: key.VariantID,
			Requested: -delta,
			Available: current,
		}
	}
	if !ok {
		rec = &entity.InventoryRecord{StockKey: key}
		r.s.inventory[key] = rec
		r.tx.record(func() { delete(r.s.inventory, key) })
	} else {
		prev := *rec
		r.tx.record(func() { *rec = prev })
	}
	rec.Quantity = next
	rec.UpdatedAt = r.s.now()
	cp := *rec
	return &cp, nil
}

func (r *InventoryRepo) SetMinStock(ctx context.Context, key entity.StockKey, minStock int64) (*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	rec, ok := r.s.inventory[key]
	if !ok {
		rec = &entity.InventoryRecord{StockKey: key}
		r.s.inventory[key] = rec
		r.tx.record(func() { delete(r.s.inventory, key) })
	} else {
		prev := *rec
		r.tx.record(func() { *rec = prev })
	}
	rec.MinStock = minStock
	rec.UpdatedAt = r.s.now()
	cp := *rec
	return &cp, nil
}

func (r *InventoryRepo) ListByProduct(ctx context.Context, storeID, productID string) ([]*entity.InventoryRecord, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.InventoryRecord
	for k, rec := range r.s.inventory {
		if k.StoreID == storeID && k.ProductID == productID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockKey.Less(out[j].StockKey) })
	return out, nil
}

// ListLowStock devuelve la página y el total de registros bajos de la tienda.
func (r *InventoryRepo) ListLowStock(ctx context.Context, storeID string, limit int) ([]*entity.InventoryRecord, int, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.InventoryRecord
	for k, rec := range r.s.inventory {
		if k.StoreID == storeID && rec.IsLow() {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].StockKey.Less(out[j].StockKey)
	})
	total := len(out)
	if limit > 0 && total > limit {
		out = out[:limit]
	}
	return out, total, nil
}

// StockMovementRepo historial de movimientos en memoria.
type StockMovementRepo struct {
	s  *Store
	tx *txState
}

// NewStockMovementRepository repositorio fuera de transacción.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	defer r.s.lock(r.tx)()
	cp := *m
	n := len(r.s.movements)
	r.s.movements = append(r.s.movements, &cp)
	r.tx.record(func() { r.s.movements = r.s.movements[:n] })
	return nil
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, storeID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.s.lock(r.tx)()
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.StoreID == storeID && m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*entity.StockMovement{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
