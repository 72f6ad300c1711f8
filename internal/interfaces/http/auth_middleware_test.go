package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/dto"
	apphttp "github.com/jhoicas/taller-inventario/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/taller-inventario/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "taller-inventario-test"
	testExpMin    = 60
)

// actorApp expone GET /actor protegido por JWT y RBAC; responde el ActorContext resultante.
func actorApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/actor",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			a := apphttp.GetActor(c)
			return c.JSON(fiber.Map{
				"tenant_id":   a.TenantID,
				"user_id":     a.UserID,
				"super_admin": a.SuperAdmin,
				"role":        apphttp.GetRole(c),
			})
		},
	)
	return app
}

func bearer(t *testing.T, tenantID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, tenantID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func getActor(t *testing.T, app *fiber.App, authHeader string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/actor", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// ActorContext
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_ActorCarriesTokenTenant(t *testing.T) {
	status, body := getActor(t, actorApp(pkgjwt.RoleBodeguero), bearer(t, testTenantID, pkgjwt.RoleBodeguero))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, false, body["super_admin"])
}

func TestAuth_SuperadminWithoutTenant(t *testing.T) {
	// Rutas restringidas a otros roles también aceptan al superadmin.
	status, body := getActor(t, actorApp(pkgjwt.RoleAdmin), bearer(t, "", pkgjwt.RoleSuperAdmin))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["tenant_id"], "el superadmin no queda atado a un tenant")
	assert.Equal(t, true, body["super_admin"])
}

func TestAuth_TenantRequiredForRegularRoles(t *testing.T) {
	for _, role := range []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero, pkgjwt.RoleVendedor} {
		status, body := getActor(t, actorApp(role), bearer(t, "", role))
		assert.Equal(t, http.StatusUnauthorized, status, role)
		assert.Equal(t, "MISSING_TENANT", body["code"], role)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_Rejections(t *testing.T) {
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, testTenantID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, pkgjwt.RoleAdmin, testIssuer, -5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"sin header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Basic abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firmado con otro secreto", "Bearer " + otherSecret, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"sin rol", bearer(t, testTenantID, ""), http.StatusUnauthorized, "MISSING_ROLE"},
		{"rol sin permiso", bearer(t, testTenantID, pkgjwt.RoleVendedor), http.StatusForbidden, "FORBIDDEN"},
	}
	app := actorApp(pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getActor(t, app, tt.header)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestAuth_ErrorBodyShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/actor", nil)
	resp, err := actorApp(pkgjwt.RoleAdmin).Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.NotEmpty(t, body.Message)
}
