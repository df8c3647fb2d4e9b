package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-api/internal/domain/entity"
	apphttp "github.com/jhoicas/retail-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/retail-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testOrgID     = "00000000-0000-0000-0000-000000000002"
	testStoreID   = "00000000-0000-0000-0000-000000000003"
	testIssuer    = "retail-api-test"
	testExpMin    = 60
)

// tokenFor genera un JWT para la organización y tienda de prueba con el rol indicado.
func tokenFor(t *testing.T, orgID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, orgID, testStoreID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return tokenFor(t, testOrgID, role)
}

// signClaims firma claims arbitrarios, para tokens que Generate no produciría.
func signClaims(t *testing.T, secret string, claims pkgjwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func sessionClaims(orgID, storeID, role string, exp time.Time) pkgjwt.Claims {
	return pkgjwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Issuer: testIssuer, ExpiresAt: gojwt.NewNumericDate(exp)},
		UserID:           testUserID,
		OrganizationID:   orgID,
		StoreID:          storeID,
		Role:             role,
	}
}

// sessionApp expone la sesión que ve un handler detrás de AuthMiddleware.
func sessionApp() *fiber.App {
	app := fiber.New()
	app.Get("/session", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		sess := apphttp.GetSession(c)
		return c.JSON(fiber.Map{
			"user_id":         sess.UserID,
			"organization_id": sess.OrganizationID,
			"store_id":        sess.StoreID,
			"role":            sess.Role,
		})
	})
	return app
}

func getSession(t *testing.T, app *fiber.App, auth string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAuthMiddleware_SesionDelTerminal(t *testing.T) {
	app := sessionApp()
	later := time.Now().Add(time.Hour)

	status, body := getSession(t, app, signClaims(t, testJWTSecret, sessionClaims(testOrgID, testStoreID, entity.RoleVendedor, later)))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testOrgID, body["organization_id"])
	assert.Equal(t, testStoreID, body["store_id"])
	assert.Equal(t, entity.RoleVendedor, body["role"])

	// back-office sin tienda activa: la sesión pasa y la tienda queda vacía
	status, body = getSession(t, app, signClaims(t, testJWTSecret, sessionClaims(testOrgID, "", entity.RoleAdmin, later)))
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["store_id"])
	assert.Equal(t, testOrgID, body["organization_id"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := sessionApp()
	later := time.Now().Add(time.Hour)

	sinUsuario := sessionClaims(testOrgID, testStoreID, entity.RoleAdmin, later)
	sinUsuario.UserID = ""

	cases := []struct {
		nombre string
		auth   string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", "INVALID_TOKEN"},
		{"sin organization_id", signClaims(t, testJWTSecret, sessionClaims("", testStoreID, entity.RoleAdmin, later)), "INVALID_TOKEN"},
		{"sin user_id", signClaims(t, testJWTSecret, sinUsuario), "INVALID_TOKEN"},
		{"expirado", signClaims(t, testJWTSecret, sessionClaims(testOrgID, testStoreID, entity.RoleAdmin, time.Now().Add(-time.Minute))), "INVALID_TOKEN"},
		{"firmado con otro secreto", signClaims(t, "otro-secreto", sessionClaims(testOrgID, testStoreID, entity.RoleAdmin, later)), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			status, body := getSession(t, app, tc.auth)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
			assert.Empty(t, body["organization_id"])
		})
	}
}

// Escrituras de inventario: solo admin y bodeguero, igual que en el router.
func TestRequireRole_EscriturasDeInventario(t *testing.T) {
	app := fiber.New()
	app.Post("/adjust",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(entity.RoleAdmin, entity.RoleBodeguero),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)

	cases := []struct {
		role string
		want int
		code string
	}{
		{entity.RoleAdmin, http.StatusNoContent, ""},
		{entity.RoleBodeguero, http.StatusNoContent, ""},
		{entity.RoleVendedor, http.StatusForbidden, "FORBIDDEN"},
		{"", http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run("rol "+tc.role, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/adjust", nil)
			req.Header.Set("Authorization", tokenForRole(t, tc.role))
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.want, resp.StatusCode)
			if tc.code != "" {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tc.code, body["code"])
			}
		})
	}
}
