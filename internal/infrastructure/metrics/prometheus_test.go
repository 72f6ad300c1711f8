package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-inventario/internal/infrastructure/metrics"
)

func TestPrometheus_ObserveDocument(t *testing.T) {
	p := metrics.NewPrometheus("taller")

	p.ObserveDocument("receipt", "create", "ok", 10*time.Millisecond)
	p.ObserveDocument("receipt", "create", "ok", 20*time.Millisecond)
	p.ObserveDocument("issue", "create", "insufficient_stock", time.Millisecond)
	p.TxRetry("create")

	n, err := testutil.GatherAndCount(p.Registry(), "taller_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "una serie por combinación de etiquetas")

	n, err = testutil.GatherAndCount(p.Registry(), "taller_tx_retries_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPrometheus_MiddlewareAndHandler(t *testing.T) {
	p := metrics.NewPrometheus("taller")
	app := fiber.New()
	app.Use(p.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", p.Handler())

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `taller_http_requests_total{method="GET",route="/items/:id",status="204"} 2`)
	assert.Contains(t, string(body), "go_goroutines")
}
