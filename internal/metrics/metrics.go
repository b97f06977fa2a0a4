package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studio",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Ledger operations by kind and result.",
}, []string{"op", "result"})

var LedgerAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studio",
	Subsystem: "ledger",
	Name:      "amount_rupiah_total",
	Help:      "Total rupiah moved by successful ledger operations.",
}, []string{"op"})

var PublicSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "studio",
	Subsystem: "public",
	Name:      "submissions_total",
	Help:      "Public form submissions by form and result.",
}, []string{"form", "result"})

var IdempotencyReplays = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "studio",
	Subsystem: "http",
	Name:      "idempotency_replays_total",
	Help:      "Responses served from a stored idempotency record.",
})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "studio",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route and status class.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

var WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "studio",
	Subsystem: "realtime",
	Name:      "websocket_clients",
	Help:      "Connected notification websocket clients.",
})

// Observe records a ledger operation outcome.
func Observe(op string, amount int64, err error) {
	if err != nil {
		LedgerOperations.WithLabelValues(op, ResultError).Inc()
		return
	}
	LedgerOperations.WithLabelValues(op, ResultOK).Inc()
	if amount > 0 {
		LedgerAmount.WithLabelValues(op).Add(float64(amount))
	}
}
