package postgres

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const inventoryColumns = `store_id, product_id, variant_id, quantity, min_stock, updated_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var variantID *string
	if err := row.Scan(&rec.StoreID, &rec.ProductID, &variantID, &rec.Quantity, &rec.MinStock, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.VariantID = deref(variantID)
	return &rec, nil
}

// GetQuantity cantidad actual; 0 si no hay registro.
func (r *InventoryRepo) GetQuantity(ctx context.Context, key entity.StockKey) (int64, error) {
	query := `
		SELECT quantity FROM inventory_records
		WHERE store_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3::uuid`
	var q int64
	err := r.q.QueryRow(ctx, query, key.StoreID, key.ProductID, nullIfEmpty(key.VariantID)).Scan(&q)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, wrapErr("get quantity", err)
	}
	return q, nil
}

func (r *InventoryRepo) Get(ctx context.Context, key entity.StockKey) (*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + ` FROM inventory_records
		WHERE store_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3::uuid`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, key.StoreID, key.ProductID, nullIfEmpty(key.VariantID)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get inventory record", err)
	}
	return rec, nil
}

// Adjust suma delta en una sola sentencia.
//   - delta >= 0: upsert (crea el registro si no existe).
//   - delta < 0: UPDATE con guarda quantity + delta >= 0; sin fila afectada = stock insuficiente.
func (r *InventoryRepo) Adjust(ctx context.Context, key entity.StockKey, delta int64) (*entity.InventoryRecord, error) {
	variant := nullIfEmpty(key.VariantID)
	if delta >= 0 {
		query := `
			INSERT INTO inventory_records (store_id, product_id, variant_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (store_id, product_id, variant_id)
			DO UPDATE SET quantity = inventory_records.quantity + EXCLUDED.quantity, updated_at = now()
			RETURNING ` + inventoryColumns
		rec, err := scanRecord(r.q.QueryRow(ctx, query, key.StoreID, key.ProductID, variant, delta))
		if err != nil {
			return nil, wrapErr("adjust stock", err)
		}
		return rec, nil
	}

	query := `
		UPDATE inventory_records
		SET quantity = quantity + $4, updated_at = now()
		WHERE store_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3::uuid
		  AND quantity + $4 >= 0
		RETURNING ` + inventoryColumns
	rec, err := scanRecord(r.q.QueryRow(ctx, query, key.StoreID, key.ProductID, variant, delta))
	if err == nil {
		return rec, nil
	}
	if !isNoRows(err) {
		return nil, wrapErr("adjust stock", err)
	}
	available, err := r.GetQuantity(ctx, key)
	if err != nil {
		return nil, err
	}
	return nil, &domain.InsufficientStockError{
		LineIndex: -1,
		StoreID:   key.StoreID,
		ProductID: key.ProductID,
		VariantID: key.VariantID,
		Requested: -delta,
		Available: available,
	}
}

func (r *InventoryRepo) SetMinStock(ctx context.Context, key entity.StockKey, minStock int64) (*entity.InventoryRecord, error) {
	query := `
		INSERT INTO inventory_records (store_id, product_id, variant_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, $3, 0, $4, now())
		ON CONFLICT (store_id, product_id, variant_id)
		DO UPDATE SET min_stock = EXCLUDED.min_stock, updated_at = now()
		RETURNING ` + inventoryColumns
	rec, err := scanRecord(r.q.QueryRow(ctx, query, key.StoreID, key.ProductID, nullIfEmpty(key.VariantID), minStock))
	if err != nil {
		return nil, wrapErr("set min stock", err)
	}
	return rec, nil
}

func (r *InventoryRepo) ListByProduct(ctx context.Context, storeID, productID string) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + ` FROM inventory_records
		WHERE store_id = $1 AND product_id = $2
		ORDER BY variant_id NULLS FIRST`
	return r.list(ctx, "list inventory by product", query, storeID, productID)
}

// ListLowStock página de registros bajos; el total sale de COUNT(*) OVER() en la misma consulta.
func (r *InventoryRepo) ListLowStock(ctx context.Context, storeID string, limit int) ([]*entity.InventoryRecord, int, error) {
	query := `
		SELECT ` + inventoryColumns + `, COUNT(*) OVER() FROM inventory_records
		WHERE store_id = $1 AND min_stock > 0 AND quantity <= min_stock
		ORDER BY quantity, product_id, variant_id NULLS FIRST
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, storeID, limit)
	if err != nil {
		return nil, 0, wrapErr("list low stock", err)
	}
	defer rows.Close()
	var out []*entity.InventoryRecord
	var total int
	for rows.Next() {
		var rec entity.InventoryRecord
		var variantID *string
		if err := rows.Scan(&rec.StoreID, &rec.ProductID, &variantID, &rec.Quantity, &rec.MinStock, &rec.UpdatedAt, &total); err != nil {
			return nil, 0, wrapErr("list low stock", err)
		}
		rec.VariantID = deref(variantID)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list low stock", err)
	}
	return out, total, nil
}

func (r *InventoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var out []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return out, nil
}
