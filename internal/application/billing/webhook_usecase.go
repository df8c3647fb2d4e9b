package billing

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/domain"
	"github.com/jhoicas/retail-api/internal/domain/billing"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/domain/repository"
	"github.com/jhoicas/retail-api/pkg/metrics"
)

// Config parámetros del webhook y de la máquina de estados.
type Config struct {
	WebhookToken string
	GraceDays    int
	Location     *time.Location
	Now          func() time.Time
}

// WebhookResult resultado de procesar un evento.
type WebhookResult struct {
	Event          string
	OrganizationID string
	Ignored        bool // tipo de evento no reconocido
	Duplicate      bool // evento ya procesado
	Status         entity.BillingStatus
}

// WebhookUseCase aplica los eventos del proveedor de pagos al estado de cobro de la organización.
type WebhookUseCase struct {
	txRunner BillingTxRunner
	orgRepo  repository.OrganizationRepository
	policy   billing.Policy
	token    string
	now      func() time.Time
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewWebhookUseCase construye el caso de uso.
func NewWebhookUseCase(
	txRunner BillingTxRunner,
	orgRepo repository.OrganizationRepository,
	cfg Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) *WebhookUseCase {
	policy := billing.DefaultPolicy()
	if cfg.GraceDays > 0 {
		policy.GraceDays = cfg.GraceDays
	}
	if cfg.Location != nil {
		policy.Location = cfg.Location
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &WebhookUseCase{
		txRunner: txRunner,
		orgRepo:  orgRepo,
		policy:   policy,
		token:    cfg.WebhookToken,
		now:      cfg.Now,
		metrics:  m,
		log:      log.With().Str("component", "billing_webhook").Logger(),
	}
}

// VerifyToken compara el token recibido con el secreto configurado.
// Sin secreto configurado devuelve ErrMisconfigured; si no coincide, ErrUnauthorized.
func (uc *WebhookUseCase) VerifyToken(token string) error {
	if uc.token == "" {
		return domain.ErrMisconfigured
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(uc.token)) != 1 {
		return domain.ErrUnauthorized
	}
	return nil
}

// ProcessEvent resuelve la organización por id de cliente, calcula la transición y la aplica
// junto con el registro del evento. Un evento ya registrado se informa como duplicado sin cambios.
// raw es el cuerpo original; se guarda como payload y sirve de clave cuando el evento no trae id.
func (uc *WebhookUseCase) ProcessEvent(ctx context.Context, in dto.AsaasWebhookRequest, raw []byte) (*WebhookResult, error) {
	if in.Payment == nil || in.Payment.Customer == "" {
		return nil, fmt.Errorf("%w: payment.customer es obligatorio", domain.ErrInvalidInput)
	}
	org, err := uc.orgRepo.GetByBillingCustomerID(ctx, in.Payment.Customer)
	if err != nil {
		return nil, err
	}
	if org == nil {
		uc.metrics.WebhookEvent(in.Event, "unknown_customer")
		return nil, domain.ErrNotFound
	}
	res := &WebhookResult{Event: in.Event, OrganizationID: org.ID, Status: org.EffectiveBillingStatus()}

	// La fecha solo se exige válida cuando decide la transición; en el resto se guarda si se entiende.
	var dueDate *time.Time
	if in.Payment.DueDate != "" {
		d, err := uc.policy.ParseDueDate(in.Payment.DueDate)
		switch {
		case err == nil:
			dueDate = &d
		case billing.UsesDueDate(in.Event):
			return nil, fmt.Errorf("%w: dueDate inválida", domain.ErrInvalidInput)
		}
	}

	now := uc.now()
	tr, ok := uc.policy.Decide(in.Event, dueDate, now)
	if !ok {
		res.Ignored = true
		uc.metrics.WebhookEvent(in.Event, "ignored")
		uc.log.Debug().Str("event", in.Event).Str("organization_id", org.ID).Msg("evento de cobro ignorado")
		return res, nil
	}

	event := &entity.BillingEvent{
		ExternalEventID: EventKey(in.ID, raw),
		OrganizationID:  org.ID,
		Type:            in.Event,
		PaymentID:       in.Payment.ID,
		ValueCents:      toCents(in.Payment.Value),
		DueDate:         dueDate,
		Payload:         payload(raw),
		ProcessedAt:     now,
	}

	err = uc.txRunner.RunBilling(ctx, func(orgRepo repository.OrganizationRepository, eventRepo repository.BillingEventRepository) error {
		// Serializa las entregas de una misma organización: la lectura de pagos liquidados y la
		// transición ven un estado consistente.
		if err := orgRepo.LockForBilling(ctx, org.ID); err != nil {
			return err
		}
		apply := true
		// Un atraso que llega después del pago del mismo cobro no debe volver a suspender.
		if in.Event == entity.BillingEventPaymentOverdue && event.PaymentID != "" {
			settled, err := eventRepo.HasSettledPayment(ctx, org.ID, event.PaymentID)
			if err != nil {
				return err
			}
			apply = !settled
		}
		if apply {
			event.OutcomeStatus = tr.Status
		}
		inserted, err := eventRepo.Record(ctx, event)
		if err != nil {
			return err
		}
		if !inserted {
			res.Duplicate = true
			return nil
		}
		if !apply {
			return nil
		}
		if err := orgRepo.ApplyBillingTransition(ctx, org.ID, tr); err != nil {
			return err
		}
		res.Status = tr.Status
		return nil
	})
	if err != nil {
		uc.metrics.WebhookEvent(in.Event, "error")
		return nil, err
	}

	outcome := "applied"
	switch {
	case res.Duplicate:
		outcome = "duplicate"
	case event.OutcomeStatus == "":
		outcome = "stale"
	}
	uc.metrics.WebhookEvent(in.Event, outcome)
	uc.log.Info().
		Str("event", in.Event).
		Str("event_id", event.ExternalEventID).
		Str("organization_id", org.ID).
		Str("status", string(res.Status)).
		Str("outcome", outcome).
		Msg("evento de cobro procesado")
	return res, nil
}

// EventKey id del evento del proveedor o, si no viene, sha256 del cuerpo.
func EventKey(id string, raw []byte) string {
	if id != "" {
		return id
	}
	sum := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func toCents(v decimal.Decimal) int64 {
	return v.Shift(2).Round(0).IntPart()
}

func payload(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	return json.RawMessage("null")
}
