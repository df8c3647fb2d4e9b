package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// Exchange registra una troca sobre una venta: lo devuelto vuelve al stock de la tienda original,
// lo llevado sale con la regla de stock insuficiente, y se guarda una venta de tipo exchange.
// Total = Σ llevado − Σ devuelto (negativo = crédito a favor del cliente).
func (uc *CheckoutUseCase) Exchange(ctx context.Context, sess entity.Session, originalSaleID string, in dto.ExchangeRequest) (*dto.SaleResponse, error) {
	sale, err := uc.exchange(ctx, sess, originalSaleID, in)
	uc.stock.Metrics().CheckoutResult(string(entity.SaleKindExchange), resultLabel(err))
	if err != nil {
		return nil, err
	}
	resp := SaleResponse(sale)
	return &resp, nil
}

func (uc *CheckoutUseCase) exchange(ctx context.Context, sess entity.Session, originalSaleID string, in dto.ExchangeRequest) (*entity.Sale, error) {
	if sess.OrganizationID == "" || len(in.Returned) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Returned {
		if !entity.ValidQuantity(l.Quantity) {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, l := range in.Taken {
		if !entity.ValidQuantity(l.Quantity) || !entity.ValidPrice(l.UnitPriceCents) {
			return nil, domain.ErrInvalidInput
		}
	}

	original, err := uc.loadSale(ctx, sess.OrganizationID, originalSaleID)
	if err != nil {
		return nil, err
	}
	if original.Kind != entity.SaleKindSale {
		return nil, fmt.Errorf("%w: solo se pueden trocar ventas", domain.ErrInvalidInput)
	}
	storeID := original.StoreID
	if _, err := uc.stock.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}

	sold := original.SoldQuantities()
	paid := paidPrices(original)

	lines := make([]entity.SaleLine, 0, len(in.Returned)+len(in.Taken))
	returned := newAggregate()
	for i, l := range in.Returned {
		// Lo devuelto puede estar hoy inactivo: no se exige que sea vendible.
		_, key, err := uc.stock.ResolveKey(ctx, sess.OrganizationID, storeID, l.ProductID, l.VariantID, false)
		if err != nil {
			return nil, err
		}
		if sold[key] == 0 {
			return nil, fmt.Errorf("%w: la línea devuelta %d no pertenece a la venta original", domain.ErrInvalidInput, i)
		}
		if err := returned.add(key, l.Quantity, i); err != nil {
			return nil, err
		}
		if returned.get(key) > sold[key] {
			return nil, fmt.Errorf("%w: la devolución excede lo vendido en la línea %d", domain.ErrInvalidInput, i)
		}
		lines = append(lines, entity.SaleLine{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: paid[key],
			Direction:      entity.LineReturned,
		})
	}

	taken := newAggregate()
	for i, l := range in.Taken {
		_, key, err := uc.stock.ResolveKey(ctx, sess.OrganizationID, storeID, l.ProductID, l.VariantID, true)
		if err != nil {
			return nil, err
		}
		if err := taken.add(key, l.Quantity, i); err != nil {
			return nil, err
		}
		lines = append(lines, entity.SaleLine{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			Direction:      entity.LineOut,
		})
	}

	for _, key := range taken.order {
		if err := uc.precheck(ctx, taken.byKey[key], returned.get(key)); err != nil {
			return nil, err
		}
	}

	now := uc.stock.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		OrganizationID: sess.OrganizationID,
		StoreID:        storeID,
		ClientID:       original.ClientID,
		Kind:           entity.SaleKindExchange,
		OriginalSaleID: original.ID,
		CreatedBy:      sess.UserID,
		CreatedAt:      now,
		Lines:          lines,
	}
	if sale.TotalCents, err = sale.ComputeTotal(); err != nil {
		return nil, err
	}

	// Devoluciones antes que salidas: con orden estable, una misma clave se repone antes de descontarse.
	muts := make([]inventory.Mutation, 0, len(returned.order)+len(taken.order))
	for _, key := range returned.order {
		muts = append(muts, inventory.Mutation{
			Key: key, OrganizationID: sess.OrganizationID, Delta: returned.get(key),
			Type: entity.MovementTypeExchangeIn, ReferenceID: sale.ID, CreatedBy: sess.UserID, At: now,
		})
	}
	for _, key := range taken.order {
		muts = append(muts, inventory.Mutation{
			Key: key, OrganizationID: sess.OrganizationID, Delta: -taken.get(key),
			Type: entity.MovementTypeExchangeOut, ReferenceID: sale.ID, CreatedBy: sess.UserID, At: now,
		})
	}
	inventory.SortMutations(muts)

	var touched []*entity.InventoryRecord
	err = uc.stock.RetryConflicts(ctx, func() error {
		touched = touched[:0]
		return uc.txRunner.Run(ctx, func(
			stockRepo repository.InventoryRepository,
			movRepo repository.StockMovementRepository,
			saleRepo repository.SaleRepository,
		) error {
			// Bloquea la venta original: dos trocas simultáneas no pueden superar lo vendido.
			already, err := saleRepo.ReturnedQuantitiesForUpdate(ctx, original.ID)
			if err != nil {
				return err
			}
			for _, key := range returned.order {
				if already[key]+returned.get(key) > sold[key] {
					return fmt.Errorf("%w: la devolución excede lo vendido menos lo ya devuelto (línea %d)",
						domain.ErrInvalidInput, returned.byKey[key].firstLine)
				}
			}
			for _, m := range muts {
				rec, err := uc.stock.ApplyInTx(ctx, stockRepo, movRepo, m)
				if err != nil {
					if m.Delta < 0 {
						return annotateLine(err, taken.byKey[m.Key].firstLine)
					}
					return err
				}
				if m.Delta < 0 {
					touched = append(touched, rec)
				}
			}
			return saleRepo.Create(ctx, sale)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.stock.Metrics().StockMutation(string(entity.MovementTypeExchangeIn))
	if len(taken.order) > 0 {
		uc.stock.Metrics().StockMutation(string(entity.MovementTypeExchangeOut))
	}
	uc.stock.NotifyLowStock(ctx, sess.OrganizationID, sale.ID, touched)
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("original_sale_id", original.ID).
		Int64("total_cents", sale.TotalCents).
		Msg("troca confirmada")
	return sale, nil
}

// paidPrices precio unitario pagado por clave en la venta original (primera línea de salida).
func paidPrices(s *entity.Sale) map[entity.StockKey]int64 {
	out := make(map[entity.StockKey]int64)
	for _, l := range s.Lines {
		if l.Direction != entity.LineOut {
			continue
		}
		key := entity.StockKey{StoreID: s.StoreID, ProductID: l.ProductID, VariantID: l.VariantID}
		if _, ok := out[key]; !ok {
			out[key] = l.UnitPriceCents
		}
	}
	return out
}
