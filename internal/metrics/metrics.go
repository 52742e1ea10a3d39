package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Pipeline Metrics
var (
	MessagesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMessagesScanned,
			Help: HelpTextMessagesScanned,
		},
	)

	EventsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsExtracted,
			Help: HelpTextEventsExtracted,
		},
		[]string{LabelKind},
	)

	BreaksDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameBreaksDropped,
			Help: HelpTextBreaksDropped,
		},
	)

	UserCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameUserCommands,
			Help: HelpTextUserCommands,
		},
		[]string{LabelTarget},
	)

	ReloadCalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReloadCalls,
			Help: HelpTextReloadCalls,
		},
	)

	EventsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsResolved,
			Help: HelpTextEventsResolved,
		},
	)

	EventsUnresolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameEventsUnresolved,
			Help: HelpTextEventsUnresolved,
		},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePipelineRuns,
			Help: HelpTextPipelineRuns,
		},
		[]string{LabelOutcome},
	)
)
