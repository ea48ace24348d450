// Package metrics exposes the Prometheus collectors of the ledger.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Metrics groups the collectors registered by New.
type Metrics struct {
	gatherer prometheus.Gatherer

	journalsCreated prometheus.Counter
	journalsPosted  prometheus.Counter
	journalsVoided  prometheus.Counter
	postRejected    *prometheus.CounterVec
	yearsClosed     prometheus.Counter
	yearsReopened   prometheus.Counter
	closeDuration   prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the ledger collectors with reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		journalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_entries_created_total",
			Help: "Draft journal entries created.",
		}),
		journalsPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_entries_posted_total",
			Help: "Journal entries moved from DRAFT to POSTED.",
		}),
		journalsVoided: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_entries_voided_total",
			Help: "Journal entries moved from POSTED to VOID.",
		}),
		postRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_post_rejected_total",
			Help: "Post attempts rejected, by reason code.",
		}, []string{"reason"}),
		yearsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fiscal_years_closed_total",
			Help: "Fiscal years closed.",
		}),
		yearsReopened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "fiscal_years_reopened_total",
			Help: "Fiscal year closings reversed.",
		}),
		closeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "fiscal_year_close_duration_seconds",
			Help:    "Duration of successful fiscal year closings.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) JournalCreated() {
	if m != nil {
		m.journalsCreated.Inc()
	}
}

func (m *Metrics) JournalPosted() {
	if m != nil {
		m.journalsPosted.Inc()
	}
}

func (m *Metrics) JournalVoided() {
	if m != nil {
		m.journalsVoided.Inc()
	}
}

// PostRejected counts a refused post by its validation or state code.
func (m *Metrics) PostRejected(reason string) {
	if m != nil {
		m.postRejected.WithLabelValues(reason).Inc()
	}
}

// YearClosed records one successful closing and how long it took.
func (m *Metrics) YearClosed(d time.Duration) {
	if m != nil {
		m.yearsClosed.Inc()
		m.closeDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) YearReopened() {
	if m != nil {
		m.yearsReopened.Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.httpRequests.WithLabelValues(method, route, status).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
	}
}
