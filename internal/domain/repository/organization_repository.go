package repository

import (
	"context"

	"github.com/jhoicas/retail-api/internal/domain/billing"
	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// OrganizationRepository puerto de persistencia para Organization.
// ApplyBillingTransition es la única vía de escritura de BillingStatus/AccessSuspendedAt.
type OrganizationRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	// GetByBillingCustomerID busca por id de cliente del proveedor; nil, nil si no existe.
	GetByBillingCustomerID(ctx context.Context, customerID string) (*entity.Organization, error)
	// LockForBilling bloquea la fila de la organización hasta el fin de la transacción; ErrNotFound si no existe.
	LockForBilling(ctx context.Context, organizationID string) error
	// ApplyBillingTransition actualiza estado y AccessSuspendedAt en una sola sentencia atómica.
	ApplyBillingTransition(ctx context.Context, organizationID string, tr billing.Transition) error
}

// BillingEventRepository registro de eventos de webhook procesados (idempotencia).
type BillingEventRepository interface {
	// Record inserta el evento; inserted=false si ExternalEventID ya estaba registrado.
	Record(ctx context.Context, event *entity.BillingEvent) (inserted bool, err error)
	// HasSettledPayment informa si ya se procesó un pago recibido/confirmado para paymentID.
	HasSettledPayment(ctx context.Context, organizationID, paymentID string) (bool, error)
}
