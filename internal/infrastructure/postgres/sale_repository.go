package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera y las líneas (batch en la misma conexión/tx).
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, organization_id, store_id, client_id, kind, original_sale_id, total_cents, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.OrganizationID, sale.StoreID, nullIfEmpty(sale.ClientID), sale.Kind,
		nullIfEmpty(sale.OriginalSaleID), sale.TotalCents, nullIfEmpty(sale.CreatedBy), sale.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert sale", err)
	}

	batch := &pgx.Batch{}
	for i, l := range sale.Lines {
		batch.Queue(`
			INSERT INTO sale_lines (sale_id, line_no, product_id, variant_id, quantity, unit_price_cents, direction)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sale.ID, i, l.ProductID, nullIfEmpty(l.VariantID), l.Quantity, l.UnitPriceCents, l.Direction,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return wrapErr("insert sale lines", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	query := `
		SELECT id, organization_id, store_id, client_id, kind, original_sale_id, total_cents, created_by, created_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	var clientID, originalID, createdBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.OrganizationID, &s.StoreID, &clientID, &s.Kind, &originalID, &s.TotalCents, &createdBy, &s.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get sale", err)
	}
	s.ClientID = deref(clientID)
	s.OriginalSaleID = deref(originalID)
	s.CreatedBy = deref(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT product_id, variant_id, quantity, unit_price_cents, direction
		FROM sale_lines WHERE sale_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, wrapErr("get sale lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		var variantID *string
		if err := rows.Scan(&l.ProductID, &variantID, &l.Quantity, &l.UnitPriceCents, &l.Direction); err != nil {
			return nil, wrapErr("scan sale line", err)
		}
		l.VariantID = deref(variantID)
		s.Lines = append(s.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get sale lines", err)
	}
	return &s, nil
}

// ReturnedQuantitiesForUpdate bloquea la venta original (SELECT FOR UPDATE) y suma lo devuelto por trocas previas.
func (r *SaleRepo) ReturnedQuantitiesForUpdate(ctx context.Context, originalSaleID string) (map[entity.StockKey]int64, error) {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM sales WHERE id = $1 FOR UPDATE`, originalSaleID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapErr("lock sale", err)
	}

	query := `
		SELECT s.store_id, l.product_id, l.variant_id, SUM(l.quantity)
		FROM sales s
		JOIN sale_lines l ON l.sale_id = s.id
		WHERE s.original_sale_id = $1 AND s.kind = 'exchange' AND l.direction = 'returned'
		GROUP BY s.store_id, l.product_id, l.variant_id`
	rows, err := r.q.Query(ctx, query, originalSaleID)
	if err != nil {
		return nil, wrapErr("returned quantities", err)
	}
	defer rows.Close()

	out := make(map[entity.StockKey]int64)
	for rows.Next() {
		var k entity.StockKey
		var variantID *string
		var qty int64
		if err := rows.Scan(&k.StoreID, &k.ProductID, &variantID, &qty); err != nil {
			return nil, wrapErr("scan returned quantity", err)
		}
		k.VariantID = deref(variantID)
		out[k] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("returned quantities", err)
	}
	return out, nil
}
