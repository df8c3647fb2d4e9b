package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/application/access"
	"github.com/jhoicas/retail-api/internal/application/billing"
	"github.com/jhoicas/retail-api/internal/application/checkout"
	"github.com/jhoicas/retail-api/internal/application/dto"
	"github.com/jhoicas/retail-api/internal/application/inventory"
	"github.com/jhoicas/retail-api/internal/domain/entity"
	"github.com/jhoicas/retail-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/retail-api/internal/interfaces/http"
)

const (
	webhookToken = "whsec"
	productID    = "00000000-0000-0000-0000-0000000000aa"
)

var keyProduct = entity.StockKey{StoreID: testStoreID, ProductID: productID}

// buildAPI monta el router completo sobre el almacenamiento en memoria.
func buildAPI(t *testing.T, token string) (*fiber.App, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	s.SeedOrganization(entity.Organization{ID: testOrgID, ExternalBillingCustomerID: "cus_1"})
	s.SeedStore(entity.Store{ID: testStoreID, OrganizationID: testOrgID})
	s.SeedProduct(entity.Product{ID: productID, OrganizationID: testOrgID, Status: entity.ProductStatusActive, Stock: entity.DirectStock{}})

	runner := memory.NewTxRunner(s)
	orgRepo := memory.NewOrganizationRepository(s)
	stock := inventory.NewStockUseCase(
		runner,
		memory.NewInventoryRepository(s),
		memory.NewStockMovementRepository(s),
		memory.NewProductRepository(s),
		memory.NewStoreRepository(s),
		nil, nil, zerolog.Nop(), inventory.Options{},
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Checkout:  checkout.NewCheckoutUseCase(runner, stock, memory.NewSaleRepository(s), zerolog.Nop()),
		Stock:     stock,
		Webhook:   billing.NewWebhookUseCase(runner, orgRepo, billing.Config{WebhookToken: token}, nil, zerolog.Nop()),
		Status:    billing.NewStatusUseCase(orgRepo),
		Gate:      access.NewGate(orgRepo),
		JWTSecret: testJWTSecret,
	})
	return app, s
}

func send(t *testing.T, app *fiber.App, method, path, auth, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func overdueBody(customer string, daysLate int) string {
	due := time.Now().AddDate(0, 0, -daysLate).Format(time.DateOnly)
	return `{"id":"evt_` + customer + `","event":"PAYMENT_OVERDUE","payment":{"id":"pay_1","customer":"` +
		customer + `","value":99.9,"dueDate":"` + due + `"}}`
}

// ──────────────────────────────────────────────────────────────────────────────
// Webhook
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhook_SinSecretoConfigurado_Retorna500(t *testing.T) {
	app, _ := buildAPI(t, "")
	resp, body := send(t, app, http.MethodPost, "/asaas/webhook?token=x", "", overdueBody("cus_1", 1))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "MISCONFIGURED", body["code"])
}

func TestWebhook_CodigosDeRespuesta(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	cases := []struct {
		nombre string
		path   string
		body   string
		want   int
	}{
		{"token incorrecto", "/asaas/webhook?token=otro", overdueBody("cus_1", 1), http.StatusUnauthorized},
		{"sin token", "/asaas/webhook", overdueBody("cus_1", 1), http.StatusUnauthorized},
		{"json inválido", "/asaas/webhook?token=" + webhookToken, `{"event":`, http.StatusBadRequest},
		{"sin cliente", "/asaas/webhook?token=" + webhookToken, `{"event":"PAYMENT_OVERDUE","payment":{"id":"p"}}`, http.StatusBadRequest},
		{"cliente desconocido", "/asaas/webhook?token=" + webhookToken, overdueBody("cus_x", 1), http.StatusNotFound},
		{"evento no reconocido", "/asaas/webhook?token=" + webhookToken,
			`{"event":"PAYMENT_CREATED","payment":{"id":"p","customer":"cus_1"}}`, http.StatusOK},
		{"no reconocido con fecha en otro formato", "/asaas/webhook?token=" + webhookToken,
			`{"event":"PAYMENT_CREATED","payment":{"id":"p","customer":"cus_1","dueDate":"20/03/2026"}}`, http.StatusOK},
		{"pago con fecha y hora", "/asaas/webhook?token=" + webhookToken,
			`{"id":"evt_pago","event":"PAYMENT_RECEIVED","payment":{"id":"p","customer":"cus_1","dueDate":"2026-03-20T00:00:00Z"}}`, http.StatusOK},
		{"atraso con fecha inválida", "/asaas/webhook?token=" + webhookToken,
			`{"id":"evt_mal","event":"PAYMENT_OVERDUE","payment":{"id":"p","customer":"cus_1","dueDate":"20/03/2026"}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			resp, _ := send(t, app, http.MethodPost, tc.path, "", tc.body)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestWebhook_TokenEnCabecera(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	req := httptest.NewRequest(http.MethodPost, "/asaas/webhook", strings.NewReader(overdueBody("cus_1", 1)))
	req.Header.Set(apphttp.HeaderAsaasToken, webhookToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhook_SuspendeYRepeticionEsDuplicada(t *testing.T) {
	app, s := buildAPI(t, webhookToken)
	path := "/asaas/webhook?token=" + webhookToken

	resp, body := send(t, app, http.MethodPost, path, "", overdueBody("cus_1", 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "PAYMENT_OVERDUE", body["event"])
	assert.Equal(t, testOrgID, body["organizationId"])
	assert.Nil(t, body["duplicate"])

	resp, body = send(t, app, http.MethodPost, path, "", overdueBody("cus_1", 10))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, 1, s.EventCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Gate de cobro
// ──────────────────────────────────────────────────────────────────────────────

func TestGate_SuspendidaBloqueaExceptoEstado(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	resp, _ := send(t, app, http.MethodPost, "/asaas/webhook?token="+webhookToken, "", overdueBody("cus_1", 30))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	auth := tokenForRole(t, "vendedor")
	resp, body := send(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/stock", auth, "")
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "BILLING_SUSPENDED", body["code"])

	resp, body = send(t, app, http.MethodGet, apphttp.BillingStatusPath, auth, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "suspended", body["status"])
	assert.Equal(t, true, body["blocked"])
	assert.NotNil(t, body["access_suspended_at"])
}

func TestGate_AtrasadaPermiteConAviso(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	resp, _ := send(t, app, http.MethodPost, "/asaas/webhook?token="+webhookToken, "", overdueBody("cus_1", 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/stock", tokenForRole(t, "vendedor"), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "overdue", resp.Header.Get(apphttp.HeaderBillingStatus))
}

func TestGate_OrganizacionInexistente_Retorna401(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	resp, _ := send(t, app, http.MethodGet, apphttp.BillingStatusPath, tokenFor(t, "org-borrada", "admin"), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckout_201Y409ConLinea(t *testing.T) {
	app, s := buildAPI(t, webhookToken)
	s.SeedStock(keyProduct, 3, 0)
	auth := tokenForRole(t, "vendedor")

	resp, body := send(t, app, http.MethodPost, "/api/checkout", auth,
		`{"lines":[{"product_id":"`+productID+`","quantity":2,"unit_price_cents":4990}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "99.80", body["total"])
	saleID, _ := body["id"].(string)
	require.NotEmpty(t, saleID)

	resp, body = send(t, app, http.MethodPost, "/api/checkout", auth,
		`{"lines":[{"product_id":"`+productID+`","quantity":2,"unit_price_cents":4990}]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(0), body["line"])
	assert.Equal(t, float64(1), body["available"])

	resp, body = send(t, app, http.MethodGet, "/api/sales/"+saleID, auth, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, saleID, body["id"])
}

func TestCheckout_CuerpoInvalido(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	resp, body := send(t, app, http.MethodPost, "/api/checkout", tokenForRole(t, "vendedor"), `{"lines":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])

	resp, body = send(t, app, http.MethodPost, "/api/checkout", tokenForRole(t, "vendedor"), `{"lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestInventario_AjusteSoloAdminOBodeguero(t *testing.T) {
	app, _ := buildAPI(t, webhookToken)
	body := `{"product_id":"` + productID + `","quantity":5,"reason":"recepción"}`

	resp, _ := send(t, app, http.MethodPost, "/api/inventory/adjustments", tokenForRole(t, "vendedor"), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, out := send(t, app, http.MethodPost, "/api/inventory/adjustments", tokenForRole(t, "bodeguero"), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(5), out["quantity"])

	resp, out = send(t, app, http.MethodPost, "/api/inventory/adjustments", tokenForRole(t, "admin"),
		`{"product_id":"`+productID+`","quantity":-9}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])
	assert.Nil(t, out["line"])

	resp, out = send(t, app, http.MethodGet, "/api/inventory/products/"+productID+"/movements", tokenForRole(t, "vendedor"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), out["total"])
}

func TestInventario_StockMinimoYListadoBajo(t *testing.T) {
	app, s := buildAPI(t, webhookToken)
	s.SeedStock(keyProduct, 2, 0)
	auth := tokenForRole(t, "admin")

	resp, out := send(t, app, http.MethodPut, "/api/inventory/min-stock", auth,
		`{"product_id":"`+productID+`","min_stock":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["low"])

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/low-stock?limit=5", nil)
	req.Header.Set("Authorization", auth)
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	var list dto.LowStockResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Page.Limit)
}
