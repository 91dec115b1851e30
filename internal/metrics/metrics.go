package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects transfer-engine and liquidity counters on a
// dedicated Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	TransfersTotal    *prometheus.CounterVec
	TransfersRejected *prometheus.CounterVec
	TaxCollected      *prometheus.CounterVec
	TradingEnabled    prometheus.Gauge
	LiquidityOps      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TransfersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sekisho_transfers_total",
			Help: "Completed transfers by direction",
		}, []string{"direction"}),
		TransfersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sekisho_transfers_rejected_total",
			Help: "Rejected transfers by reason",
		}, []string{"reason"}),
		TaxCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sekisho_tax_collected_total",
			Help: "Tax collected in token base units by direction",
		}, []string{"direction"}),
		TradingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sekisho_trading_enabled",
			Help: "Whether the trading gate is open",
		}),
		LiquidityOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sekisho_liquidity_operations_total",
			Help: "Liquidity bridge operations by type and outcome",
		}, []string{"op", "outcome"}),
	}

	registry.MustRegister(
		m.TransfersTotal,
		m.TransfersRejected,
		m.TaxCollected,
		m.TradingEnabled,
		m.LiquidityOps,
	)

	return m
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
