package access

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
)

// Decision resultado de evaluar el acceso de una organización.
type Decision struct {
	Status  entity.BillingStatus
	Allowed bool // false solo con suspended
	Warning bool // overdue: se permite, la UI muestra aviso de pago
}

// Gate decide el acceso a la aplicación según el estado de cobro. Se evalúa en cada petición.
type Gate struct {
	orgRepo repository.OrganizationRepository
}

// NewGate construye el gate.
func NewGate(orgRepo repository.OrganizationRepository) *Gate {
	return &Gate{orgRepo: orgRepo}
}

// Evaluate carga la organización de la sesión. Sin organización devuelve ErrUnauthorized.
func (g *Gate) Evaluate(ctx context.Context, organizationID string) (Decision, error) {
	if organizationID == "" {
		return Decision{}, domain.ErrUnauthorized
	}
	org, err := g.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return Decision{}, err
	}
	if org == nil {
		return Decision{}, domain.ErrUnauthorized
	}
	return Decide(org.EffectiveBillingStatus()), nil
}

// Decide regla pura: suspended ⇒ denegar, overdue ⇒ permitir con aviso, active ⇒ permitir.
func Decide(status entity.BillingStatus) Decision {
	switch status {
	case entity.BillingStatusSuspended:
		return Decision{Status: status}
	case entity.BillingStatusOverdue:
		return Decision{Status: status, Allowed: true, Warning: true}
	default:
		return Decision{Status: entity.BillingStatusActive, Allowed: true}
	}
}
