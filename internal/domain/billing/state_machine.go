package billing

import (
	"time"

	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// DefaultGraceDays días tras el vencimiento en los que un cobro atrasado aún no suspende el acceso.
// El proveedor no expone un concepto de gracia; el valor es una política propia.
const DefaultGraceDays = 5

// SuspensionAction qué hacer con Organization.AccessSuspendedAt al aplicar la transición.
type SuspensionAction string

const (
	SuspensionKeep  SuspensionAction = "keep"  // no tocar el campo
	SuspensionSet   SuspensionAction = "set"   // fijar a SuspendedAt
	SuspensionClear SuspensionAction = "clear" // poner a NULL
)

// Transition estado destino y efecto sobre AccessSuspendedAt.
type Transition struct {
	Status      entity.BillingStatus
	Suspension  SuspensionAction
	SuspendedAt *time.Time // solo con SuspensionSet
}

// Policy parámetros de la máquina de estados.
type Policy struct {
	GraceDays int
	Location  *time.Location // zona usada para truncar a día calendario
}

// DefaultPolicy gracia de 5 días en UTC.
func DefaultPolicy() Policy {
	return Policy{GraceDays: DefaultGraceDays, Location: time.UTC}
}

// Decide calcula la transición para un evento del proveedor. ok=false si el tipo de evento
// no está reconocido (el evento se acepta pero no cambia el estado).
//
//	PAYMENT_RECEIVED / PAYMENT_CONFIRMED             → active, limpia AccessSuspendedAt
//	PAYMENT_OVERDUE, días desde vencimiento < gracia → overdue, AccessSuspendedAt intacto
//	PAYMENT_OVERDUE, días ≥ gracia o sin vencimiento → suspended, AccessSuspendedAt = now
func (p Policy) Decide(eventType string, dueDate *time.Time, now time.Time) (Transition, bool) {
	switch eventType {
	case entity.BillingEventPaymentReceived, entity.BillingEventPaymentConfirmed:
		return Transition{Status: entity.BillingStatusActive, Suspension: SuspensionClear}, true
	case entity.BillingEventPaymentOverdue:
		if dueDate != nil && p.DaysSince(*dueDate, now) < p.graceDays() {
			return Transition{Status: entity.BillingStatusOverdue, Suspension: SuspensionKeep}, true
		}
		at := now
		return Transition{Status: entity.BillingStatusSuspended, Suspension: SuspensionSet, SuspendedAt: &at}, true
	}
	return Transition{}, false
}

// UsesDueDate indica si la transición del evento depende de la fecha de vencimiento.
func UsesDueDate(eventType string) bool {
	return eventType == entity.BillingEventPaymentOverdue
}

// DaysSince días calendario entre due y now en la zona de la política; la hora del día se ignora.
// Negativo si due es posterior a now.
func (p Policy) DaysSince(due, now time.Time) int {
	loc := p.location()
	dy, dm, dd := due.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	// Fechas reconstruidas en UTC para que los cambios de horario no alteren la cuenta.
	d := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(n.Sub(d).Hours() / 24)
}

// ParseDueDate interpreta el formato de fecha del proveedor (YYYY-MM-DD) en la zona de la política.
func (p Policy) ParseDueDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, p.location())
}

func (p Policy) graceDays() int {
	if p.GraceDays <= 0 {
		return DefaultGraceDays
	}
	return p.GraceDays
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
