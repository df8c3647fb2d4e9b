package postgres

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura de productos con sus variantes.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID carga el producto y deriva el modo de stock de sus variantes.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, organization_id, category_id, name, base_price_cents, status, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	var categoryID *string
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OrganizationID, &categoryID, &p.Name, &p.BasePriceCents, &status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	p.CategoryID = deref(categoryID)
	p.Status = entity.ProductStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, color_id, size_id
		FROM product_variants WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, wrapErr("get product variants", err)
	}
	defer rows.Close()
	var variants []entity.ProductVariant
	for rows.Next() {
		var v entity.ProductVariant
		var colorID, sizeID *string
		if err := rows.Scan(&v.ID, &v.ProductID, &colorID, &sizeID); err != nil {
			return nil, wrapErr("scan product variant", err)
		}
		v.ColorID = deref(colorID)
		v.SizeID = deref(sizeID)
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get product variants", err)
	}
	p.Stock = entity.StockModeFor(variants)
	return &p, nil
}
