package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// CheckoutUseCase convierte un carrito en una venta y sus salidas de stock, todo o nada.
type CheckoutUseCase struct {
	txRunner inventory.TxRunner
	stock    *inventory.StockUseCase
	saleRepo repository.SaleRepository
	log      zerolog.Logger
}

// NewCheckoutUseCase construye el caso de uso.
func NewCheckoutUseCase(
	txRunner inventory.TxRunner,
	stock *inventory.StockUseCase,
	saleRepo repository.SaleRepository,
	log zerolog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		txRunner: txRunner,
		stock:    stock,
		saleRepo: saleRepo,
		log:      log.With().Str("component", "checkout").Logger(),
	}
}

// demand cantidad pedida por clave y la primera línea que la pidió.
type demand struct {
	key       entity.StockKey
	quantity  int64
	firstLine int
}

// aggregate agrupa cantidades por clave conservando el orden de aparición.
type aggregate struct {
	order []entity.StockKey
	byKey map[entity.StockKey]*demand
}

func newAggregate() *aggregate {
	return &aggregate{byKey: make(map[entity.StockKey]*demand)}
}

// add suma qty a la clave; ErrInvalidInput si el acumulado supera el límite por línea.
func (a *aggregate) add(key entity.StockKey, qty int64, line int) error {
	if d, ok := a.byKey[key]; ok {
		sum, ok := entity.AddInt64(d.quantity, qty)
		if !ok || sum > entity.MaxLineQuantity {
			return fmt.Errorf("%w: cantidad acumulada excesiva en la línea %d", domain.ErrInvalidInput, line)
		}
		d.quantity = sum
		return nil
	}
	a.byKey[key] = &demand{key: key, quantity: qty, firstLine: line}
	a.order = append(a.order, key)
	return nil
}

func (a *aggregate) get(key entity.StockKey) int64 {
	if d, ok := a.byKey[key]; ok {
		return d.quantity
	}
	return 0
}

// Checkout valida el carrito, comprueba stock y confirma en una transacción: ajustes por clave
// en orden determinista, movimientos y venta. Si una clave no alcanza no se escribe nada.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, sess entity.Session, in dto.CheckoutRequest) (*dto.SaleResponse, error) {
	sale, err := uc.checkout(ctx, sess, in)
	uc.stock.Metrics().CheckoutResult(string(entity.SaleKindSale), resultLabel(err))
	if err != nil {
		return nil, err
	}
	resp := SaleResponse(sale)
	return &resp, nil
}

func (uc *CheckoutUseCase) checkout(ctx context.Context, sess entity.Session, in dto.CheckoutRequest) (*entity.Sale, error) {
	if sess.OrganizationID == "" || sess.StoreID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if !entity.ValidQuantity(l.Quantity) || !entity.ValidPrice(l.UnitPriceCents) {
			return nil, domain.ErrInvalidInput
		}
	}
	if _, err := uc.stock.ValidateStore(ctx, sess.OrganizationID, sess.StoreID); err != nil {
		return nil, err
	}

	// Validar productos y variantes (fuera de la tx, solo lectura)
	agg := newAggregate()
	lines := make([]entity.SaleLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		_, key, err := uc.stock.ResolveKey(ctx, sess.OrganizationID, sess.StoreID, l.ProductID, l.VariantID, true)
		if err != nil {
			return nil, err
		}
		if err := agg.add(key, l.Quantity, i); err != nil {
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

	// Pre-chequeo: rechaza pronto sin abrir transacción. La garantía real es el ajuste condicional.
	for _, key := range agg.order {
		d := agg.byKey[key]
		if err := uc.precheck(ctx, d, 0); err != nil {
			return nil, err
		}
	}

	now := uc.stock.Now()
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		OrganizationID: sess.OrganizationID,
		StoreID:        sess.StoreID,
		ClientID:       in.ClientID,
		Kind:           entity.SaleKindSale,
		CreatedBy:      sess.UserID,
		CreatedAt:      now,
		Lines:          lines,
	}
	total, err := sale.ComputeTotal()
	if err != nil {
		return nil, err
	}
	sale.TotalCents = total

	muts := make([]inventory.Mutation, 0, len(agg.order))
	for _, key := range agg.order {
		muts = append(muts, inventory.Mutation{
			Key:            key,
			OrganizationID: sess.OrganizationID,
			Delta:          -agg.byKey[key].quantity,
			Type:           entity.MovementTypeSale,
			ReferenceID:    sale.ID,
			CreatedBy:      sess.UserID,
			At:             now,
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
			for _, m := range muts {
				rec, err := uc.stock.ApplyInTx(ctx, stockRepo, movRepo, m)
				if err != nil {
					return annotateLine(err, agg.byKey[m.Key].firstLine)
				}
				touched = append(touched, rec)
			}
			return saleRepo.Create(ctx, sale)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.stock.Metrics().StockMutation(string(entity.MovementTypeSale))
	uc.stock.NotifyLowStock(ctx, sess.OrganizationID, sale.ID, touched)
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("organization_id", sale.OrganizationID).
		Str("store_id", sale.StoreID).
		Int("lines", len(sale.Lines)).
		Int64("total_cents", sale.TotalCents).
		Msg("venta confirmada")
	return sale, nil
}

// precheck compara la demanda con la cantidad actual más lo que la misma operación repone.
func (uc *CheckoutUseCase) precheck(ctx context.Context, d *demand, incoming int64) error {
	available, err := uc.stock.GetQuantity(ctx, d.key)
	if err != nil {
		return err
	}
	if available+incoming < d.quantity {
		return &domain.InsufficientStockError{
			LineIndex: d.firstLine,
			StoreID:   d.key.StoreID,
			ProductID: d.key.ProductID,
			VariantID: d.key.VariantID,
			Requested: d.quantity,
			Available: available + incoming,
		}
	}
	return nil
}

// GetSale venta de la organización de la sesión; ErrNotFound si no existe o es de otra organización.
func (uc *CheckoutUseCase) GetSale(ctx context.Context, sess entity.Session, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.loadSale(ctx, sess.OrganizationID, saleID)
	if err != nil {
		return nil, err
	}
	resp := SaleResponse(sale)
	return &resp, nil
}

func (uc *CheckoutUseCase) loadSale(ctx context.Context, organizationID, saleID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// annotateLine asocia un error de stock insuficiente a la línea de la petición.
func annotateLine(err error, line int) error {
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		return ise.WithLine(line)
	}
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

// SaleResponse convierte la venta a DTO.
func SaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		StoreID:        s.StoreID,
		ClientID:       s.ClientID,
		Kind:           string(s.Kind),
		OriginalSaleID: s.OriginalSaleID,
		TotalCents:     s.TotalCents,
		Total:          FormatCents(s.TotalCents),
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
		Lines:          make([]dto.SaleLineResponse, 0, len(s.Lines)),
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TotalCents:     l.TotalCents(),
			Direction:      string(l.Direction),
		})
	}
	return out
}

// FormatCents 12345 → "123.45".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

