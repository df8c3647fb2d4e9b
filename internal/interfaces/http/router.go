package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-api/internal/application/access"
	"github.com/jhoicas/retail-api/internal/application/billing"
	"github.com/jhoicas/retail-api/internal/application/checkout"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/domain/entity"
)

// BillingStatusPath queda fuera del bloqueo por suspensión.
const BillingStatusPath = "/api/billing/status"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Checkout  *checkout.CheckoutUseCase
	Stock     *inventory.StockUseCase
	Webhook   *billing.WebhookUseCase
	Status    *billing.StatusUseCase
	Gate      *access.Gate
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	billingHandler := NewBillingHandler(deps.Webhook, deps.Status)

	// Webhook del proveedor (público, autenticado por token compartido)
	app.Post("/asaas/webhook", billingHandler.AsaasWebhook)

	// Rutas protegidas: Bearer Token + gate de cobro
	api := app.Group("/api",
		AuthMiddleware(deps.JWTSecret),
		RequireActiveBilling(deps.Gate, BillingStatusPath),
	)

	api.Get("/billing/status", billingHandler.Status)

	saleHandler := NewSaleHandler(deps.Checkout)
	api.Post("/checkout", saleHandler.Checkout)
	api.Post("/sales/:id/exchange", saleHandler.Exchange)
	api.Get("/sales/:id", saleHandler.GetByID)

	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Stock)
	invGroup.Get("/products/:productId/stock", inventoryHandler.ProductStock)
	invGroup.Get("/products/:productId/movements", inventoryHandler.ListMovements)
	invGroup.Get("/low-stock", inventoryHandler.ListLowStock)

	// Escrituras de inventario: solo admin y bodeguero
	writers := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	invGroup.Post("/adjustments", writers, inventoryHandler.Adjust)
	invGroup.Post("/transfers", writers, inventoryHandler.Transfer)
	invGroup.Put("/min-stock", writers, inventoryHandler.SetMinStock)
}
