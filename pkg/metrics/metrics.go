package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores de negocio expuestos en /metrics. Un *Metrics nil es válido y no registra nada
// (útil en tests de casos de uso).
type Metrics struct {
	registry        *prometheus.Registry
	checkouts       *prometheus.CounterVec
	conflictRetries prometheus.Counter
	stockMutations  *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	lowStockSignals *prometheus.CounterVec
}

// New crea un registro propio con los colectores de proceso y Go más los contadores de la app.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Ventas y trocas procesadas por resultado.",
		}, []string{"kind", "result"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_conflict_retries_total",
			Help:      "Reintentos por conflicto de serialización o deadlock.",
		}),
		stockMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_mutations_total",
			Help:      "Movimientos de stock confirmados por tipo.",
		}, []string{"type"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_webhook_events_total",
			Help:      "Eventos de webhook de cobro por tipo y resultado.",
		}, []string{"event", "outcome"}),
		lowStockSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_signals_total",
			Help:      "Avisos de stock bajo por resultado de publicación.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkouts, m.conflictRetries, m.stockMutations, m.webhookEvents, m.lowStockSignals,
	)
	return m
}

// Handler devuelve el handler HTTP de exposición.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry expone el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CheckoutResult(kind, result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ConflictRetry() {
	if m == nil {
		return
	}
	m.conflictRetries.Inc()
}

func (m *Metrics) StockMutation(movementType string) {
	if m == nil {
		return
	}
	m.stockMutations.WithLabelValues(movementType).Inc()
}

func (m *Metrics) WebhookEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) LowStockSignal(outcome string) {
	if m == nil {
		return
	}
	m.lowStockSignals.WithLabelValues(outcome).Inc()
}
