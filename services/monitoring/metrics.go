// Package monitoring exposes Prometheus metrics for the backtest
// service surface.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram
	TradesTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Backtest runs by outcome",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "backtest_run_duration_seconds",
			Help:    "Wall-clock duration of backtest runs",
			Buckets: prometheus.DefBuckets,
		}),
		TradesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "backtest_trades_total",
			Help: "Closed trades produced across all runs",
		}),
	}
}

// Handler serves the default registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
