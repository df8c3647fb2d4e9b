package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-api/internal/application/billing"
	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/domain"
)

// HeaderAsaasToken cabecera con el token de autenticación del webhook de Asaas.
const HeaderAsaasToken = "asaas-access-token"

// BillingHandler webhook del proveedor de pagos y estado de cobro.
type BillingHandler struct {
	webhook *billing.WebhookUseCase
	status  *billing.StatusUseCase
}

// NewBillingHandler construye el handler.
func NewBillingHandler(webhook *billing.WebhookUseCase, status *billing.StatusUseCase) *BillingHandler {
	return &BillingHandler{webhook: webhook, status: status}
}

// AsaasWebhook godoc
// @Summary      Webhook de Asaas
// @Description  Aplica la máquina de estados de cobro. Idempotente: un evento repetido responde duplicate=true.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        token  query     string                   false  "secreto compartido (o cabecera asaas-access-token)"
// @Param        body   body      dto.AsaasWebhookRequest  true   "evento"
// @Success      200    {object}  dto.AsaasWebhookResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /asaas/webhook [post]
func (h *BillingHandler) AsaasWebhook(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		token = c.Get(HeaderAsaasToken)
	}
	if err := h.webhook.VerifyToken(token); err != nil {
		if errors.Is(err, domain.ErrMisconfigured) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "MISCONFIGURED", Message: "token de webhook no configurado"})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token de webhook inválido"})
	}

	raw := c.Body()
	var in dto.AsaasWebhookRequest
	if err := c.App().Config().JSONDecoder(raw, &in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "JSON inválido"})
	}

	res, err := h.webhook.ProcessEvent(c.UserContext(), in, raw)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "cliente de cobro desconocido"})
		}
		// 500: el proveedor reintenta la entrega.
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo procesar el evento"})
	}
	return c.JSON(dto.AsaasWebhookResponse{
		Success:        true,
		Event:          res.Event,
		OrganizationID: res.OrganizationID,
		Ignored:        res.Ignored,
		Duplicate:      res.Duplicate,
		Status:         string(res.Status),
	})
}

// Status godoc
// @Summary      Estado de cobro de la organización
// @Description  Disponible aun con el acceso suspendido (pantalla de bloqueo).
// @Tags         billing
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BillingStatusResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/billing/status [get]
func (h *BillingHandler) Status(c *fiber.Ctx) error {
	res, err := h.status.GetStatus(c.UserContext(), GetOrganizationID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
