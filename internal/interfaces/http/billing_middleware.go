package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-api/internal/application/access"
	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/domain"
)

// HeaderBillingStatus cabecera de aviso para organizaciones con cobro atrasado.
const HeaderBillingStatus = "X-Billing-Status"

// accessEvaluator contrato mínimo del gate de acceso; lo implementa *access.Gate.
type accessEvaluator interface {
	Evaluate(ctx context.Context, organizationID string) (access.Decision, error)
}

// RequireActiveBilling bloquea a las organizaciones suspendidas. Debe usarse DESPUÉS de AuthMiddleware.
// Las rutas de exempt (p. ej. el estado de cobro para la pantalla de bloqueo) pasan siempre.
//
// Comportamiento:
//   - 401 Unauthorized → sin organización en el token o la organización no existe.
//   - 402 Payment Required → suspended.
//   - overdue → pasa con X-Billing-Status: overdue.
//   - 503 Service Unavailable → fallo al consultar la organización.
func RequireActiveBilling(gate accessEvaluator, exempt ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		decision, err := gate.Evaluate(c.UserContext(), GetOrganizationID(c))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Code:    "UNAUTHORIZED",
					Message: "organización no encontrada para el token",
				})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "BILLING_CHECK_FAILED",
				Message: "no se pudo verificar el estado de cobro, intente más tarde",
			})
		}

		if decision.Warning {
			c.Set(HeaderBillingStatus, string(decision.Status))
		}
		if _, ok := skip[c.Path()]; ok || decision.Allowed {
			return c.Next()
		}
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
			Code:    "BILLING_SUSPENDED",
			Message: "acceso suspendido por falta de pago",
		})
	}
}
