package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so several routers can live in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	invoicesCreated   *prometheus.CounterVec
	invoicesVoided    prometheus.Counter
	invitationsIssued prometheus.Counter
	emailsSent        *prometheus.CounterVec
	authAttempts      *prometheus.CounterVec
	catalogOperations *prometheus.CounterVec
}

func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_invoices_created_total",
			Help: "Invoices created, by payment method",
		}, []string{"payment_method"}),
		invoicesVoided: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_invoices_voided_total",
			Help: "Invoices voided",
		}),
		invitationsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_invitations_issued_total",
			Help: "Invitations issued and delivered",
		}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_emails_sent_total",
			Help: "Outbound emails by kind and result",
		}, []string{"kind", "result"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		catalogOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_catalog_operations_total",
			Help: "Catalog write operations",
		}, []string{"entity", "operation"}),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.invoicesCreated,
		m.invoicesVoided,
		m.invitationsIssued,
		m.emailsSent,
		m.authAttempts,
		m.catalogOperations,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency labelled by the mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		status := strconv.Itoa(rec.status)
		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// The recorders below accept a nil receiver so services can run without metrics.

func (m *Metrics) InvoiceCreated(paymentMethod string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) InvoiceVoided() {
	if m == nil {
		return
	}
	m.invoicesVoided.Inc()
}

func (m *Metrics) InvitationIssued() {
	if m == nil {
		return
	}
	m.invitationsIssued.Inc()
}

func (m *Metrics) EmailSent(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.emailsSent.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) AuthAttempt(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.authAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) CatalogOperation(entity, operation string) {
	if m == nil {
		return
	}
	m.catalogOperations.WithLabelValues(entity, operation).Inc()
}
