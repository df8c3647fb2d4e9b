package entity

import (
	"encoding/json"
	"time"
)

// Eventos del proveedor de pagos reconocidos por la máquina de estados.
const (
	BillingEventPaymentReceived  = "PAYMENT_RECEIVED"
	BillingEventPaymentConfirmed = "PAYMENT_CONFIRMED"
	BillingEventPaymentOverdue   = "PAYMENT_OVERDUE"
)

// BillingEvent evento de webhook ya procesado; ExternalEventID es único (deduplicación).
type BillingEvent struct {
	ExternalEventID string
	OrganizationID  string
	Type            string
	PaymentID       string
	ValueCents      int64
	DueDate         *time.Time
	Payload         json.RawMessage
	OutcomeStatus   BillingStatus // estado aplicado; vacío si el evento no cambió el estado
	ProcessedAt     time.Time
}

// SettlesPayment informa si el evento confirma el pago.
func (e *BillingEvent) SettlesPayment() bool {
	return e.Type == BillingEventPaymentReceived || e.Type == BillingEventPaymentConfirmed
}
