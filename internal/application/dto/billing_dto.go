package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AsaasWebhookRequest payload de webhook del proveedor de pagos (campos usados).
type AsaasWebhookRequest struct {
	ID      string        `json:"id,omitempty"`
	Event   string        `json:"event"`
	Payment *AsaasPayment `json:"payment"`
}

// AsaasPayment objeto payment del webhook. DueDate en formato YYYY-MM-DD.
type AsaasPayment struct {
	ID       string          `json:"id"`
	Customer string          `json:"customer"`
	Value    decimal.Decimal `json:"value"`
	DueDate  string          `json:"dueDate,omitempty"`
	Status   string          `json:"status,omitempty"`
}

// AsaasWebhookResponse respuesta 200 al proveedor.
type AsaasWebhookResponse struct {
	Success        bool   `json:"success"`
	Event          string `json:"event"`
	OrganizationID string `json:"organizationId,omitempty"`
	Ignored        bool   `json:"ignored,omitempty"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	Status         string `json:"status,omitempty"`
}

// BillingStatusResponse GET /api/billing/status (pantalla de bloqueo).
type BillingStatusResponse struct {
	OrganizationID    string     `json:"organization_id"`
	Status            string     `json:"status"`
	AccessSuspendedAt *time.Time `json:"access_suspended_at,omitempty"`
	Blocked           bool       `json:"blocked"`
	Warning           bool       `json:"warning"`
}
