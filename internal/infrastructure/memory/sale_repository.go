package memory

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	s  *Store
	tx *txState
}

// NewSaleRepository repositorio fuera de transacción.
func NewSaleRepository(s *Store) *SaleRepo {
	return &SaleRepo{s: s}
}

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.sales[sale.ID] = cloneSale(sale)
	id := sale.ID
	r.tx.record(func() { delete(r.s.sales, id) })
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	defer r.s.lock(r.tx)()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(sale), nil
}

// ReturnedQuantitiesForUpdate suma las líneas devueltas por trocas previas de la venta original.
func (r *SaleRepo) ReturnedQuantitiesForUpdate(ctx context.Context, originalSaleID string) (map[entity.StockKey]int64, error) {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.sales[originalSaleID]; !ok {
		return nil, domain.ErrNotFound
	}
	out := make(map[entity.StockKey]int64)
	for _, sale := range r.s.sales {
		if sale.Kind != entity.SaleKindExchange || sale.OriginalSaleID != originalSaleID {
			continue
		}
		for _, l := range sale.Lines {
			if l.Direction == entity.LineReturned {
				out[entity.StockKey{StoreID: sale.StoreID, ProductID: l.ProductID, VariantID: l.VariantID}] += l.Quantity
			}
		}
	}
	return out, nil
}

func cloneSale(s *entity.Sale) *entity.Sale {
	cp := *s
	cp.Lines = append([]entity.SaleLine(nil), s.Lines...)
	return &cp
}
