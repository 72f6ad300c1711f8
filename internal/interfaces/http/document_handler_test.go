package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/application/inventory"
	"github.com/jhoicas/taller-inventario/internal/application/usecase"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/taller-inventario/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/taller-inventario/internal/interfaces/http"
)

// newAPI arma la API completa sobre el almacén en memoria.
func newAPI() *fiber.App {
	store := memory.NewStore()
	valuation := inventory.NewCostValuationService(store.Documents())
	coord := inventory.NewCoordinator(inventory.CoordinatorDeps{
		TxRunner:  store,
		Sequences: inventory.NewSequenceGenerator(store, 0),
		Ledger:    inventory.NewStockLedger(),
		Valuation: valuation,
		Locations: store.Locations(),
		Products:  store.Products(),
		Documents: store.Documents(),
		Logger:    zerolog.Nop(),
	})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Coordinator:    coord,
		StockQuery:     inventory.NewStockQueryUseCase(store.Stock(), store.Locations(), store.Products(), valuation),
		LocationUC:     usecase.NewLocationUseCase(store.Locations()),
		ProductUC:      usecase.NewProductUseCase(store.Products()),
		Idempotency:    cache.NewMemoryIdempotencyStore(),
		IdempotencyTTL: time.Minute,
		JWTSecret:      testJWTSecret,
		Logger:         zerolog.Nop(),
	})
	return app
}

type call struct {
	method, path, role string
	body               any
	headers            map[string]string
}

func send(t *testing.T, app *fiber.App, c call) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, testTenantID, c.role))
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

// seedCatalog crea una sede y un producto con unidad "und" y devuelve sus IDs.
func seedCatalog(t *testing.T, app *fiber.App) (string, string) {
	t.Helper()
	status, loc := send(t, app, call{method: http.MethodPost, path: "/api/locations", role: "admin",
		body: map[string]any{"name": "Sede Centro"}})
	require.Equal(t, http.StatusCreated, status, loc)

	status, prod := send(t, app, call{method: http.MethodPost, path: "/api/products", role: "admin",
		body: map[string]any{
			"sku": "PAS-01", "name": "Pastillas de freno", "price": "80",
			"units": []map[string]any{{"unit_id": "und", "conversion_factor": "1", "primary": true}},
		}})
	require.Equal(t, http.StatusCreated, status, prod)
	return loc["id"].(string), prod["id"].(string)
}

func productLine(productID string, qty, price string) map[string]any {
	return map[string]any{"product_id": productID, "unit_id": "und", "quantity": qty, "unit_price": price}
}

func TestDocuments_ReceiptIssueAndSaleFlow(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)

	status, receipt := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "bodeguero",
		body: map[string]any{"location_id": locID, "supplier_id": "prov-9",
			"lines": []any{productLine(prodID, "10", "20")}}})
	require.Equal(t, http.StatusCreated, status, receipt)
	assert.Equal(t, "ENT-000001", receipt["code"])
	assert.Equal(t, "200", receipt["total"])

	status, errBody := send(t, app, call{method: http.MethodPost, path: "/api/issues", role: "bodeguero",
		body: map[string]any{"location_id": locID, "reason_code": "defective-return",
			"lines": []any{productLine(prodID, "11", "0")}}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody["code"])
	details := errBody["details"].(map[string]any)
	assert.Equal(t, "10", details["available"])
	assert.Equal(t, "11", details["requested"])

	status, sale := send(t, app, call{method: http.MethodPost, path: "/api/sales", role: "vendedor",
		body: map[string]any{"location_id": locID, "client_id": "cli-3",
			"lines": []any{
				productLine(prodID, "3", "35"),
				map[string]any{"kind": "service", "description": "Instalación", "quantity": "1", "unit_price": "40"},
			}}})
	require.Equal(t, http.StatusCreated, status, sale)
	assert.Equal(t, "VEN-000001", sale["code"])
	assert.Equal(t, "SAL-000001", sale["companion_code"])
	lines := sale["lines"].([]any)
	require.Len(t, lines, 2)
	first := lines[0].(map[string]any)
	assert.Equal(t, "20", first["cost_reference"])
	assert.Equal(t, "45", first["margin"])

	status, stock := send(t, app, call{method: http.MethodGet, path: "/api/stock?location_id=" + locID, role: "vendedor"})
	require.Equal(t, http.StatusOK, status)
	items := stock["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].(map[string]any)["quantity"])

	// La salida acompañante no se edita directamente.
	status, errBody = send(t, app, call{method: http.MethodPut, path: "/api/issues/" + sale["companion_id"].(string), role: "bodeguero",
		body: map[string]any{"location_id": locID, "reason_code": "other", "lines": []any{productLine(prodID, "1", "0")}}})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errBody["code"])
}

func TestDocuments_ValidationDetails(t *testing.T) {
	app := newAPI()
	locID, _ := seedCatalog(t, app)

	status, body := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "admin",
		body: map[string]any{"location_id": locID, "lines": []any{}}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.NotEmpty(t, body["details"])
}

func TestDocuments_RoleRestrictions(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)

	status, _ := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "vendedor",
		body: map[string]any{"location_id": locID, "supplier_id": "p", "lines": []any{productLine(prodID, "1", "1")}}})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = send(t, app, call{method: http.MethodGet, path: "/api/receipts", role: "vendedor"})
	assert.Equal(t, http.StatusOK, status)
}

func TestDocuments_IdempotencyKey(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)
	req := call{method: http.MethodPost, path: "/api/receipts", role: "bodeguero",
		headers: map[string]string{"Idempotency-Key": "compra-42"},
		body: map[string]any{"location_id": locID, "supplier_id": "prov-1",
			"lines": []any{productLine(prodID, "2", "5")}}}

	status, first := send(t, app, req)
	require.Equal(t, http.StatusCreated, status, first)

	status, dup := send(t, app, req)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_REQUEST", dup["code"])

	status, list := send(t, app, call{method: http.MethodGet, path: "/api/receipts", role: "bodeguero"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list["items"], 1)
}

func TestDocuments_FailedRequestReleasesIdempotencyKey(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)
	headers := map[string]string{"Idempotency-Key": "salida-7"}

	status, _ := send(t, app, call{method: http.MethodPost, path: "/api/issues", role: "bodeguero", headers: headers,
		body: map[string]any{"location_id": locID, "reason_code": "other", "lines": []any{productLine(prodID, "1", "0")}}})
	require.Equal(t, http.StatusConflict, status)

	send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "bodeguero",
		body: map[string]any{"location_id": locID, "supplier_id": "p", "lines": []any{productLine(prodID, "1", "3")}}})

	status, issue := send(t, app, call{method: http.MethodPost, path: "/api/issues", role: "bodeguero", headers: headers,
		body: map[string]any{"location_id": locID, "reason_code": "other", "lines": []any{productLine(prodID, "1", "0")}}})
	assert.Equal(t, http.StatusCreated, status, issue)
	assert.Equal(t, "SAL-000001", issue["code"])
}

func TestDocuments_DeactivateAndGet(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)

	_, receipt := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "admin",
		body: map[string]any{"location_id": locID, "supplier_id": "p", "lines": []any{productLine(prodID, "4", "10")}}})
	id := receipt["id"].(string)

	status, out := send(t, app, call{method: http.MethodPost, path: "/api/receipts/" + id + "/deactivate", role: "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["active"])

	status, got := send(t, app, call{method: http.MethodGet, path: "/api/receipts/" + id, role: "vendedor"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, got["active"])

	status, _ = send(t, app, call{method: http.MethodGet, path: "/api/sales/" + id, role: "vendedor"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStock_MinQuantityNeedsStockRecord(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)
	body := map[string]any{"location_id": locID, "product_id": prodID, "unit_id": "und", "min_quantity": "4"}

	status, out := send(t, app, call{method: http.MethodPut, path: "/api/stock/min-quantity", role: "bodeguero", body: body})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", out["code"])

	status, receipt := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "bodeguero",
		body: map[string]any{"location_id": locID, "supplier_id": "prov-1",
			"lines": []any{productLine(prodID, "2", "10")}}})
	require.Equal(t, http.StatusCreated, status, receipt)

	status, _ = send(t, app, call{method: http.MethodPut, path: "/api/stock/min-quantity", role: "bodeguero", body: body})
	assert.Equal(t, http.StatusNoContent, status)
}

func TestDocuments_RejectsAmountsBeyondStorageScale(t *testing.T) {
	app := newAPI()
	locID, prodID := seedCatalog(t, app)

	status, out := send(t, app, call{method: http.MethodPost, path: "/api/receipts", role: "bodeguero",
		body: map[string]any{"location_id": locID, "supplier_id": "prov-1",
			"lines": []any{productLine(prodID, "0.00001", "10")}}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	details, ok := out["details"].([]any)
	require.True(t, ok, out)
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]any)["field"].(string))
	}
	assert.Contains(t, fields, "lines[0].quantity")
}
