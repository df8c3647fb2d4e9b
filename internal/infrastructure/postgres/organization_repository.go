package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/billing"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.OrganizationRepository = (*OrganizationRepo)(nil)

// OrganizationRepo implementación de OrganizationRepository (usable con pool o tx).
type OrganizationRepo struct {
	q Querier
}

// NewOrganizationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrganizationRepository(q Querier) *OrganizationRepo {
	return &OrganizationRepo{q: q}
}

const organizationColumns = `id, name, billing_status, access_suspended_at, external_billing_customer_id, created_at, updated_at`

func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	return r.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
}

func (r *OrganizationRepo) GetByBillingCustomerID(ctx context.Context, customerID string) (*entity.Organization, error) {
	return r.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE external_billing_customer_id = $1`, customerID)
}

func (r *OrganizationRepo) getOne(ctx context.Context, query string, arg string) (*entity.Organization, error) {
	var o entity.Organization
	var status, customerID *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&o.ID, &o.Name, &status, &o.AccessSuspendedAt, &customerID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get organization", err)
	}
	o.BillingStatus = entity.BillingStatus(deref(status))
	o.ExternalBillingCustomerID = deref(customerID)
	return &o, nil
}

// LockForBilling SELECT ... FOR UPDATE sobre la organización; requiere estar dentro de una tx.
func (r *OrganizationRepo) LockForBilling(ctx context.Context, organizationID string) error {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM organizations WHERE id = $1 FOR UPDATE`, organizationID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return wrapErr("lock organization", err)
	}
	return nil
}

// ApplyBillingTransition estado y fecha de suspensión en un único UPDATE.
func (r *OrganizationRepo) ApplyBillingTransition(ctx context.Context, organizationID string, tr billing.Transition) error {
	if !tr.Status.Valid() {
		return fmt.Errorf("%w: estado de cobro %q", domain.ErrInvalidInput, tr.Status)
	}
	query := `
		UPDATE organizations
		SET billing_status = $2,
		    access_suspended_at = CASE $3::text
		        WHEN 'set' THEN $4::timestamptz
		        WHEN 'clear' THEN NULL
		        ELSE access_suspended_at
		    END,
		    updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, organizationID, string(tr.Status), string(tr.Suspension), tr.SuspendedAt)
	if err != nil {
		return wrapErr("apply billing transition", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
