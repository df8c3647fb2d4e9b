package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// Store almacenamiento en memoria para ejecución local y tests. Un único mutex serializa
// las transacciones; cada tx guarda un diario de deshacer que se aplica si fn falla.
type Store struct {
	mu        sync.Mutex
	orgs      map[string]*entity.Organization
	stores    map[string]*entity.Store
	products  map[string]*entity.Product
	inventory map[entity.StockKey]*entity.InventoryRecord
	movements []*entity.StockMovement
	sales     map[string]*entity.Sale
	events    map[string]*entity.BillingEvent
	now       func() time.Time
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		orgs:      make(map[string]*entity.Organization),
		stores:    make(map[string]*entity.Store),
		products:  make(map[string]*entity.Product),
		inventory: make(map[entity.StockKey]*entity.InventoryRecord),
		sales:     make(map[string]*entity.Sale),
		events:    make(map[string]*entity.BillingEvent),
		now:       time.Now,
	}
}

// txState diario de una transacción en curso; nil fuera de transacción.
type txState struct {
	undo []func()
}

func (tx *txState) record(fn func()) {
	if tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

func (tx *txState) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// lock toma el mutex salvo dentro de una transacción (Run ya lo tiene).
func (s *Store) lock(tx *txState) func() {
	if tx != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxRunner ejecuta callbacks con repositorios atados a una transacción en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacenamiento.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn en exclusión mutua; si fn falla o ctx se canceló antes del commit, deshace todo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.InventoryRepository,
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.run(ctx, func(tx *txState) error {
		return fn(&InventoryRepo{s: r.s, tx: tx}, &StockMovementRepo{s: r.s, tx: tx}, &SaleRepo{s: r.s, tx: tx})
	})
}

// RunBilling igual que Run con los repositorios de cobro.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	orgRepo repository.OrganizationRepository,
	eventRepo repository.BillingEventRepository,
) error) error {
	return r.run(ctx, func(tx *txState) error {
		return fn(&OrganizationRepo{s: r.s, tx: tx}, &BillingEventRepo{s: r.s, tx: tx})
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx *txState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tx := &txState{}
	err := fn(tx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// SeedOrganization inserta o reemplaza una organización.
func (s *Store) SeedOrganization(o entity.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = &o
}

// SeedStore inserta o reemplaza una tienda.
func (s *Store) SeedStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = &st
}

// SeedProduct inserta o reemplaza un producto.
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// SeedStock fija cantidad y mínimo de una clave sin pasar por el libro de movimientos.
func (s *Store) SeedStock(key entity.StockKey, quantity, minStock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[key] = &entity.InventoryRecord{StockKey: key, Quantity: quantity, MinStock: minStock, UpdatedAt: s.now()}
}

// Movements copia del libro de movimientos (tests).
func (s *Store) Movements() []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		out = append(out, *m)
	}
	return out
}

// SaleCount número de ventas confirmadas (tests).
func (s *Store) SaleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// EventCount número de eventos de cobro registrados (tests).
func (s *Store) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
