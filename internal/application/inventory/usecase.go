package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/application/ports"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
	"github.com/jhoicas/retail-api/pkg/metrics"
)

// DefaultMaxAttempts intentos ante conflicto de serialización antes de devolver ErrConflict.
const DefaultMaxAttempts = 3

// Options ajustes opcionales del caso de uso.
type Options struct {
	MaxAttempts int
	Now         func() time.Time
}

// StockUseCase motor de mutaciones de stock: ajustes, traslados, stock mínimo y consultas.
// Toda escritura pasa por InventoryRepository.Adjust dentro de una transacción del TxRunner.
type StockUseCase struct {
	txRunner    TxRunner
	stockRepo   repository.InventoryRepository
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	publisher   ports.LowStockPublisher
	metrics     *metrics.Metrics
	log         zerolog.Logger
	maxAttempts int
	now         func() time.Time
}

// NewStockUseCase construye el caso de uso. publisher y m pueden ser nil.
func NewStockUseCase(
	txRunner TxRunner,
	stockRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	publisher ports.LowStockPublisher,
	m *metrics.Metrics,
	log zerolog.Logger,
	opts Options,
) *StockUseCase {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &StockUseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		publisher:   publisher,
		metrics:     m,
		log:         log.With().Str("component", "stock").Logger(),
		maxAttempts: opts.MaxAttempts,
		now:         opts.Now,
	}
}

// Now reloj del caso de uso (inyectable en tests).
func (uc *StockUseCase) Now() time.Time { return uc.now() }

// Metrics contadores compartidos con los orquestadores que usan este motor.
func (uc *StockUseCase) Metrics() *metrics.Metrics { return uc.metrics }

// ValidateStore comprueba que la tienda exista y pertenezca a la organización.
func (uc *StockUseCase) ValidateStore(ctx context.Context, organizationID, storeID string) (*entity.Store, error) {
	if storeID == "" {
		return nil, domain.ErrInvalidInput
	}
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil || store.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

// ResolveProduct carga el producto y comprueba que pertenezca a la organización.
func (uc *StockUseCase) ResolveProduct(ctx context.Context, organizationID, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.OrganizationID != organizationID {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// ResolveKey valida producto y variante contra el modo de stock y devuelve la clave en la tienda.
// Con requireSellable solo se aceptan productos activos (venta y troca).
func (uc *StockUseCase) ResolveKey(
	ctx context.Context,
	organizationID, storeID, productID, variantID string,
	requireSellable bool,
) (*entity.Product, entity.StockKey, error) {
	product, err := uc.ResolveProduct(ctx, organizationID, productID)
	if err != nil {
		return nil, entity.StockKey{}, err
	}
	if requireSellable && !product.Sellable() {
		return nil, entity.StockKey{}, domain.ErrInvalidInput
	}
	key, err := product.StockKeyFor(storeID, variantID)
	if err != nil {
		return nil, entity.StockKey{}, err
	}
	return product, key, nil
}

// GetQuantity cantidad actual de la clave; 0 si no hay registro.
func (uc *StockUseCase) GetQuantity(ctx context.Context, key entity.StockKey) (int64, error) {
	return uc.stockRepo.GetQuantity(ctx, key)
}

// ProductStock stock total del producto en la tienda: fila directa o suma de variantes, con desglose.
func (uc *StockUseCase) ProductStock(ctx context.Context, sess entity.Session, storeID, productID string) (*dto.ProductStockResponse, error) {
	if storeID == "" {
		storeID = sess.StoreID
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}
	product, err := uc.ResolveProduct(ctx, sess.OrganizationID, productID)
	if err != nil {
		return nil, err
	}
	records, err := uc.stockRepo.ListByProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductStockResponse{
		StoreID:   storeID,
		ProductID: productID,
		Mode:      product.Stock.Name(),
		Records:   make([]dto.StockRecordResponse, 0, len(records)),
	}
	_, perVariant := product.Stock.(entity.PerVariantStock)
	for _, rec := range records {
		// Solo cuentan las filas coherentes con el modo actual del producto.
		if perVariant == (rec.VariantID == "") {
			continue
		}
		out.Total += rec.Quantity
		out.Records = append(out.Records, RecordResponse(rec))
	}
	return out, nil
}

// Adjust entrada o ajuste manual con signo. Un ajuste negativo que dejaría stock negativo se rechaza.
func (uc *StockUseCase) Adjust(ctx context.Context, sess entity.Session, in dto.AdjustStockRequest) (*dto.StockRecordResponse, error) {
	if in.Quantity == 0 || in.Quantity < -entity.MaxLineQuantity || in.Quantity > entity.MaxLineQuantity {
		return nil, domain.ErrInvalidInput
	}
	storeID := in.StoreID
	if storeID == "" {
		storeID = sess.StoreID
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}
	_, key, err := uc.ResolveKey(ctx, sess.OrganizationID, storeID, in.ProductID, in.VariantID, false)
	if err != nil {
		return nil, err
	}

	m := Mutation{
		Key:            key,
		OrganizationID: sess.OrganizationID,
		Delta:          in.Quantity,
		Type:           entity.MovementTypeAdjustment,
		ReferenceID:    uuid.New().String(),
		Reason:         in.Reason,
		CreatedBy:      sess.UserID,
		At:             uc.now(),
	}
	var rec *entity.InventoryRecord
	err = uc.RetryConflicts(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			stockRepo repository.InventoryRepository,
			movRepo repository.StockMovementRepository,
			_ repository.SaleRepository,
		) error {
			var err error
			rec, err = uc.ApplyInTx(ctx, stockRepo, movRepo, m)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockMutation(string(entity.MovementTypeAdjustment))
	if m.Delta < 0 {
		uc.NotifyLowStock(ctx, sess.OrganizationID, m.ReferenceID, []*entity.InventoryRecord{rec})
	}
	resp := RecordResponse(rec)
	return &resp, nil
}

// Transfer mueve qty de una tienda a otra de la misma organización en una sola transacción.
// La suma origen + destino se conserva; si el origen no alcanza no se toca ninguna de las dos.
func (uc *StockUseCase) Transfer(ctx context.Context, sess entity.Session, in dto.TransferStockRequest) (*dto.TransferResponse, error) {
	if !entity.ValidQuantity(in.Quantity) || in.FromStoreID == "" || in.ToStoreID == "" || in.FromStoreID == in.ToStoreID {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, in.FromStoreID); err != nil {
		return nil, err
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, in.ToStoreID); err != nil {
		return nil, err
	}
	product, fromKey, err := uc.ResolveKey(ctx, sess.OrganizationID, in.FromStoreID, in.ProductID, in.VariantID, false)
	if err != nil {
		return nil, err
	}
	toKey, err := product.StockKeyFor(in.ToStoreID, in.VariantID)
	if err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	now := uc.now()
	muts := []Mutation{
		{Key: fromKey, OrganizationID: sess.OrganizationID, Delta: -in.Quantity, Type: entity.MovementTypeTransferOut,
			ReferenceID: transferID, CreatedBy: sess.UserID, At: now},
		{Key: toKey, OrganizationID: sess.OrganizationID, Delta: in.Quantity, Type: entity.MovementTypeTransferIn,
			ReferenceID: transferID, CreatedBy: sess.UserID, At: now},
	}
	SortMutations(muts)

	var from, to *entity.InventoryRecord
	err = uc.RetryConflicts(ctx, func() error {
		return uc.txRunner.Run(ctx, func(
			stockRepo repository.InventoryRepository,
			movRepo repository.StockMovementRepository,
			_ repository.SaleRepository,
		) error {
			for _, m := range muts {
				rec, err := uc.ApplyInTx(ctx, stockRepo, movRepo, m)
				if err != nil {
					return err
				}
				if m.Key == fromKey {
					from = rec
				} else {
					to = rec
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockMutation(string(entity.MovementTypeTransferOut))
	uc.metrics.StockMutation(string(entity.MovementTypeTransferIn))
	uc.NotifyLowStock(ctx, sess.OrganizationID, transferID, []*entity.InventoryRecord{from})
	uc.log.Info().
		Str("transfer_id", transferID).
		Str("from_store", in.FromStoreID).
		Str("to_store", in.ToStoreID).
		Int64("quantity", in.Quantity).
		Msg("traslado confirmado")

	return &dto.TransferResponse{
		TransferID: transferID,
		From:       RecordResponse(from),
		To:         RecordResponse(to),
	}, nil
}

// SetMinStock fija el umbral de stock bajo de una clave (crea el registro con cantidad 0 si no existe).
func (uc *StockUseCase) SetMinStock(ctx context.Context, sess entity.Session, in dto.SetMinStockRequest) (*dto.StockRecordResponse, error) {
	if in.MinStock < 0 || in.MinStock > entity.MaxLineQuantity {
		return nil, domain.ErrInvalidInput
	}
	storeID := in.StoreID
	if storeID == "" {
		storeID = sess.StoreID
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}
	_, key, err := uc.ResolveKey(ctx, sess.OrganizationID, storeID, in.ProductID, in.VariantID, false)
	if err != nil {
		return nil, err
	}
	rec, err := uc.stockRepo.SetMinStock(ctx, key, in.MinStock)
	if err != nil {
		return nil, err
	}
	resp := RecordResponse(rec)
	return &resp, nil
}

// ListLowStock registros de la tienda en o bajo su stock mínimo.
func (uc *StockUseCase) ListLowStock(ctx context.Context, sess entity.Session, storeID string, page dto.PageRequest) (*dto.LowStockResponse, error) {
	if storeID == "" {
		storeID = sess.StoreID
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	records, total, err := uc.stockRepo.ListLowStock(ctx, storeID, page.Limit)
	if err != nil {
		return nil, err
	}
	out := &dto.LowStockResponse{
		Items: make([]dto.StockRecordResponse, 0, len(records)),
		Page:  dto.PageResponse{Limit: page.Limit, Total: total},
	}
	for _, rec := range records {
		out.Items = append(out.Items, RecordResponse(rec))
	}
	return out, nil
}

// ListMovements historial de movimientos de un producto en una tienda, más reciente primero.
func (uc *StockUseCase) ListMovements(ctx context.Context, sess entity.Session, storeID, productID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	if storeID == "" {
		storeID = sess.StoreID
	}
	if _, err := uc.ValidateStore(ctx, sess.OrganizationID, storeID); err != nil {
		return nil, err
	}
	if _, err := uc.ResolveProduct(ctx, sess.OrganizationID, productID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	movs, err := uc.movRepo.ListByProduct(ctx, storeID, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.StockMovementResponse{
			ID:            m.ID,
			StoreID:       m.StoreID,
			ProductID:     m.ProductID,
			VariantID:     m.VariantID,
			Type:          string(m.Type),
			Delta:         m.Delta,
			QuantityAfter: m.QuantityAfter,
			ReferenceID:   m.ReferenceID,
			Reason:        m.Reason,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// RecordResponse convierte un registro de inventario a DTO.
func RecordResponse(rec *entity.InventoryRecord) dto.StockRecordResponse {
	if rec == nil {
		return dto.StockRecordResponse{}
	}
	return dto.StockRecordResponse{
		StoreID:   rec.StoreID,
		ProductID: rec.ProductID,
		VariantID: rec.VariantID,
		Quantity:  rec.Quantity,
		MinStock:  rec.MinStock,
		Low:       rec.IsLow(),
		UpdatedAt: rec.UpdatedAt,
	}
}
