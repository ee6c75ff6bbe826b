package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedbackflow"

// Metrics agrupa os coletores do serviço. É registrado em um Registerer
// explícito para que os testes usem um registry isolado.
type Metrics struct {
	MutationsTotal       *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	FeedbackSubmissions  *prometheus.CounterVec
	TrackingDecodesTotal *prometheus.CounterVec
	ChangeEventsTotal    *prometheus.CounterVec
	OpenWorkspaces       prometheus.Gauge
	CacheLookupsTotal    *prometheus.CounterVec
	AuditWritesTotal     *prometheus.CounterVec
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimistic_mutations_total",
			Help:      "Optimistic mutations by entity, operation and outcome (committed or rolled_back)",
		}, []string{"entity", "operation", "outcome"}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		FeedbackSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submissions_total",
			Help:      "Feedback submissions by result",
		}, []string{"result"}),

		TrackingDecodesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_decodes_total",
			Help:      "Tracking code decodes by result (valid or invalid)",
		}, []string{"result"}),

		ChangeEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Change feed events by direction (published or consumed) and entity",
		}, []string{"direction", "entity"}),

		OpenWorkspaces: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_workspaces",
			Help:      "Organizations with an open workspace",
		}),

		CacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "List cache lookups by entity and result (hit, miss or error)",
		}, []string{"entity", "result"}),

		AuditWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Audit log writes by result (written or failed)",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveMutation(entity, operation, outcome string) {
	m.MutationsTotal.WithLabelValues(entity, operation, outcome).Inc()
}

func (m *Metrics) ObserveTrackingDecode(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.TrackingDecodesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveCacheLookup(entity, result string) {
	m.CacheLookupsTotal.WithLabelValues(entity, result).Inc()
}

func (m *Metrics) ObserveSubmission(result string) {
	m.FeedbackSubmissions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAuditWrite(result string) {
	m.AuditWritesTotal.WithLabelValues(result).Inc()
}
