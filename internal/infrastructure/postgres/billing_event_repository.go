package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

var _ repository.BillingEventRepository = (*BillingEventRepo)(nil)

// BillingEventRepo eventos de webhook procesados; la clave única external_event_id da la idempotencia.
type BillingEventRepo struct {
	q Querier
}

// NewBillingEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillingEventRepository(q Querier) *BillingEventRepo {
	return &BillingEventRepo{q: q}
}

func (r *BillingEventRepo) Record(ctx context.Context, e *entity.BillingEvent) (bool, error) {
	query := `
		INSERT INTO billing_events (external_event_id, organization_id, type, payment_id, value, due_date,
			payload, outcome_status, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_event_id) DO NOTHING`
	payload := e.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	tag, err := r.q.Exec(ctx, query,
		e.ExternalEventID, e.OrganizationID, e.Type, nullIfEmpty(e.PaymentID),
		decimal.New(e.ValueCents, -2), e.DueDate, string(payload),
		nullIfEmpty(string(e.OutcomeStatus)), e.ProcessedAt,
	)
	if err != nil {
		return false, wrapErr("record billing event", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BillingEventRepo) HasSettledPayment(ctx context.Context, organizationID, paymentID string) (bool, error) {
	if paymentID == "" {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM billing_events
			WHERE organization_id = $1 AND payment_id = $2
			  AND type IN ('` + entity.BillingEventPaymentReceived + `', '` + entity.BillingEventPaymentConfirmed + `')
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, organizationID, paymentID).Scan(&exists); err != nil {
		return false, wrapErr("has settled payment", err)
	}
	return exists, nil
}
