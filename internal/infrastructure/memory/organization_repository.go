package memory

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/billing"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.OrganizationRepository = (*OrganizationRepo)(nil)
var _ repository.BillingEventRepository = (*BillingEventRepo)(nil)

// OrganizationRepo organizaciones en memoria.
type OrganizationRepo struct {
	s  *Store
	tx *txState
}

// NewOrganizationRepository repositorio fuera de transacción.
func NewOrganizationRepository(s *Store) *OrganizationRepo {
	return &OrganizationRepo{s: s}
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, nil
	}
	return cloneOrg(o), nil
}

func (r *OrganizationRepo) GetByBillingCustomerID(ctx context.Context, customerID string) (*entity.Organization, error) {
	defer r.s.lock(r.tx)()
	if customerID == "" {
		return nil, nil
	}
	for _, o := range r.s.orgs {
		if o.ExternalBillingCustomerID == customerID {
			return cloneOrg(o), nil
		}
	}
	return nil, nil
}

// LockForBilling dentro de RunBilling el mutex del almacenamiento ya serializa; solo comprueba existencia.
func (r *OrganizationRepo) LockForBilling(ctx context.Context, organizationID string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.orgs[organizationID]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrganizationRepo) ApplyBillingTransition(ctx context.Context, organizationID string, tr billing.Transition) error {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orgs[organizationID]
	if !ok {
		return domain.ErrNotFound
	}
	prev := *o
	r.tx.record(func() { *o = prev })

	o.BillingStatus = tr.Status
	switch tr.Suspension {
	case billing.SuspensionSet:
		if tr.SuspendedAt != nil {
			at := *tr.SuspendedAt
			o.AccessSuspendedAt = &at
		}
	case billing.SuspensionClear:
		o.AccessSuspendedAt = nil
	}
	o.UpdatedAt = r.s.now()
	return nil
}

func cloneOrg(o *entity.Organization) *entity.Organization {
	cp := *o
	if o.AccessSuspendedAt != nil {
		at := *o.AccessSuspendedAt
		cp.AccessSuspendedAt = &at
	}
	return &cp
}

// BillingEventRepo eventos de cobro procesados en memoria.
type BillingEventRepo struct {
	s  *Store
	tx *txState
}

// NewBillingEventRepository repositorio fuera de transacción.
func NewBillingEventRepository(s *Store) *BillingEventRepo {
	return &BillingEventRepo{s: s}
}

func (r *BillingEventRepo) Record(ctx context.Context, e *entity.BillingEvent) (bool, error) {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.events[e.ExternalEventID]; ok {
		return false, nil
	}
	cp := *e
	r.s.events[e.ExternalEventID] = &cp
	id := e.ExternalEventID
	r.tx.record(func() { delete(r.s.events, id) })
	return true, nil
}

func (r *BillingEventRepo) HasSettledPayment(ctx context.Context, organizationID, paymentID string) (bool, error) {
	defer r.s.lock(r.tx)()
	if paymentID == "" {
		return false, nil
	}
	for _, e := range r.s.events {
		if e.OrganizationID == organizationID && e.PaymentID == paymentID && e.SettlesPayment() {
			return true, nil
		}
	}
	return false, nil
}
