package entity

import "time"

// BillingStatus estado de facturación de la organización (ciclo de vida del cobro).
type BillingStatus string

const (
	BillingStatusActive    BillingStatus = "active"
	BillingStatusOverdue   BillingStatus = "overdue"
	BillingStatusSuspended BillingStatus = "suspended"
)

// Valid informa si el estado pertenece al conjunto conocido.
func (s BillingStatus) Valid() bool {
	switch s {
	case BillingStatusActive, BillingStatusOverdue, BillingStatusSuspended:
		return true
	}
	return false
}

// Organization representa un tenant del sistema. Es dueña (transitivamente) de tiendas, productos y ventas.
// BillingStatus y AccessSuspendedAt solo los modifica la máquina de estados de cobro.
type Organization struct {
	ID                        string
	Name                      string
	BillingStatus             BillingStatus // active por defecto (sin historial de cobro)
	AccessSuspendedAt         *time.Time
	ExternalBillingCustomerID string // id de cliente en el proveedor de pagos (Asaas), único
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// EffectiveBillingStatus devuelve active cuando el estado no está informado.
func (o *Organization) EffectiveBillingStatus() BillingStatus {
	if o == nil || !o.BillingStatus.Valid() {
		return BillingStatusActive
	}
	return o.BillingStatus
}
