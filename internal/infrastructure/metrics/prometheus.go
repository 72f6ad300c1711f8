// Package metrics expone métricas Prometheus del servicio: documentos registrados por tipo y
// resultado, reintentos de transacciones y peticiones HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Nombres de métricas (sin el namespace).
const (
	MetricDocumentsTotal          = "documents_total"
	MetricDocumentDurationSeconds = "document_duration_seconds"
	MetricTxRetriesTotal          = "tx_retries_total"
	MetricHTTPRequestsTotal       = "http_requests_total"
	MetricHTTPDurationSeconds     = "http_request_duration_seconds"
)

// Prometheus registro propio con las métricas del servicio. Seguro para uso concurrente.
type Prometheus struct {
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	txRetries        *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheus crea el registro con el namespace dado ("" = sin prefijo).
// Incluye los colectores de proceso y del runtime de Go.
func NewPrometheus(namespace string) *Prometheus {
	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.documentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricDocumentsTotal,
		Help:      "Operaciones sobre documentos de inventario por tipo, operación y resultado.",
	}, []string{"kind", "op", "outcome"})
	p.documentDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      MetricDocumentDurationSeconds,
		Help:      "Duración de las operaciones sobre documentos, incluidos los reintentos.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "op"})
	p.txRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricTxRetriesTotal,
		Help:      "Transacciones reintentadas por conflictos transitorios.",
	}, []string{"op"})
	p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricHTTPRequestsTotal,
		Help:      "Peticiones HTTP por método, ruta y status.",
	}, []string{"method", "route", "status"})
	p.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      MetricHTTPDurationSeconds,
		Help:      "Duración de las peticiones HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	p.registry.MustRegister(
		p.documentsTotal,
		p.documentDuration,
		p.txRetries,
		p.httpRequests,
		p.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry devuelve el registro (pruebas y colectores adicionales).
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// ObserveDocument registra una operación del coordinador.
func (p *Prometheus) ObserveDocument(kind, op, outcome string, elapsed time.Duration) {
	p.documentsTotal.WithLabelValues(kind, op, outcome).Inc()
	p.documentDuration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
}

// TxRetry cuenta un reintento de transacción.
func (p *Prometheus) TxRetry(op string) {
	p.txRetries.WithLabelValues(op).Inc()
}

// Middleware mide cada petición. La ruta es el patrón registrado (/api/receipts/:id), no la URL,
// para acotar la cardinalidad.
func (p *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		p.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		p.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registro en formato de texto de Prometheus.
func (p *Prometheus) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
