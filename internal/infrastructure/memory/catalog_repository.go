package memory

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)
var _ repository.StoreRepository = (*StoreRepo)(nil)

// ProductRepo lectura de productos en memoria.
type ProductRepo struct {
	s *Store
}

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	if mode, ok := p.Stock.(entity.PerVariantStock); ok {
		cp.Stock = entity.PerVariantStock{Variants: append([]entity.ProductVariant(nil), mode.Variants...)}
	}
	return &cp, nil
}

// StoreRepo lectura de tiendas en memoria.
type StoreRepo struct {
	s *Store
}

// NewStoreRepository construye el repositorio.
func NewStoreRepository(s *Store) *StoreRepo {
	return &StoreRepo{s: s}
}

func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}
