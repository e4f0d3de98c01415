package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// allCompanies labels ledger gauges computed without a company filter.
const allCompanies = "all"

// Metrics collects the Prometheus metrics of a gateway or worker process.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ledgerDebit     *prometheus.GaugeVec
	ledgerCredit    *prometheus.GaugeVec
	ledgerImbalance *prometheus.GaugeVec
}

// NewMetrics initialises a private registry with HTTP and ledger metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holding_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "holding_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	debit := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "holding_ledger_debit_total",
		Help: "Total debit of the last computed ledger, in XAF.",
	}, []string{"company"})
	credit := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "holding_ledger_credit_total",
		Help: "Total credit of the last computed ledger, in XAF.",
	}, []string{"company"})
	imbalance := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "holding_ledger_imbalance",
		Help: "Debit minus credit of the last computed ledger. Non-zero means corrupt entries.",
	}, []string{"company"})
	registry.MustRegister(requests, duration, debit, credit, imbalance)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		ledgerDebit:     debit,
		ledgerCredit:    credit,
		ledgerImbalance: imbalance,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// RecordLedgerBalance publishes the totals of a ledger computation.
func (m *Metrics) RecordLedgerBalance(company string, debit, credit float64) {
	if m == nil {
		return
	}
	if company == "" {
		company = allCompanies
	}
	m.ledgerDebit.WithLabelValues(company).Set(debit)
	m.ledgerCredit.WithLabelValues(company).Set(credit)
	m.ledgerImbalance.WithLabelValues(company).Set(debit - credit)
}

// Registerer exposes the registry for process-specific collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
