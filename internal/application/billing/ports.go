package billing

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los repos de cobro.
// El registro del evento y la transición de la organización se confirman juntos.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		orgRepo repository.OrganizationRepository,
		eventRepo repository.BillingEventRepository,
	) error) error
}
