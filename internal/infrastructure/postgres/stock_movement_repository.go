package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo historial de movimientos (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, organization_id, store_id, product_id, variant_id, type, delta,
			quantity_after, reference_id, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.OrganizationID, m.StoreID, m.ProductID, nullIfEmpty(m.VariantID), m.Type, m.Delta,
		m.QuantityAfter, nullIfEmpty(m.ReferenceID), nullIfEmpty(m.Reason), nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert stock movement", err)
	}
	return nil
}

func (r *StockMovementRepo) ListByProduct(ctx context.Context, storeID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, organization_id, store_id, product_id, variant_id, type, delta, quantity_after,
			reference_id, reason, created_by, created_at
		FROM stock_movements
		WHERE store_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, storeID, productID, limit, offset)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var variantID, referenceID, reason, createdBy *string
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.StoreID, &m.ProductID, &variantID, &m.Type, &m.Delta,
			&m.QuantityAfter, &referenceID, &reason, &createdBy, &m.CreatedAt); err != nil {
			return nil, wrapErr("scan stock movement", err)
		}
		m.VariantID = deref(variantID)
		m.ReferenceID = deref(referenceID)
		m.Reason = deref(reason)
		m.CreatedBy = deref(createdBy)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	return out, nil
}
