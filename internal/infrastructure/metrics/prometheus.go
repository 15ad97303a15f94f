package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/Pedidos-api/internal/application/ports"
)

var _ ports.Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implementación Prometheus del sumidero de telemetría
// del ledger de stock. Expuesto vía promhttp en /metrics.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	quantity   *prometheus.GaugeVec
	duration   prometheus.Histogram
}

// NewPrometheusRecorder registra los colectores en el registry por defecto.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_operations_total",
			Help: "Operaciones del ledger de stock por operación y resultado.",
		}, []string{"operation", "result"}),
		quantity: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stock_quantity",
			Help: "Existencia física actual por sku-partner y origen.",
		}, []string{"sku_partner", "source"}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stock_update_duration_seconds",
			Help:    "Duración de la sección crítica de ajuste de stock.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncOperation incrementa el contador etiquetado {operation, result}.
func (m *PrometheusRecorder) IncOperation(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}

// SetStockQuantity fija el gauge con la existencia resultante.
func (m *PrometheusRecorder) SetStockQuantity(skuPartnerID, sourceID string, qty int64) {
	m.quantity.WithLabelValues(skuPartnerID, sourceID).Set(float64(qty))
}

// ObserveStockUpdate registra la duración del ajuste.
func (m *PrometheusRecorder) ObserveStockUpdate(d time.Duration) {
	m.duration.Observe(d.Seconds())
}
