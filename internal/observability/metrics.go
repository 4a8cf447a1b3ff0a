package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce              sync.Once
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
	httpErrorsTotal           *prometheus.CounterVec
	notificationsPublished    *prometheus.CounterVec
	sseClientsActive          prometheus.Gauge
	cvPipelineOutcomes        *prometheus.CounterVec
	screeningSubmissionsTotal *prometheus.CounterVec
	jobExecutionsTotal        *prometheus.CounterVec
	uploadsRejectedTotal      *prometheus.CounterVec
)

// MetricsHandler serves the scrape endpoint. The API and the worker share one registry.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}),
	))
}

// RegisterMetrics initialises the Prometheus collectors exposed by the API and the worker.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stagehub",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Name:      "notifications_published_total",
			Help:      "Notifications delivered to local subscribers, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stagehub",
			Name:      "sse_clients_active",
			Help:      "Currently connected notification stream clients.",
		})

		cvPipelineOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Subsystem: "cv",
			Name:      "pipeline_outcomes_total",
			Help:      "CV processing outcomes per student record.",
		}, []string{"outcome"})

		screeningSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Subsystem: "screening",
			Name:      "submissions_total",
			Help:      "Screening test submissions, split by accepted or duplicate.",
		}, []string{"result"})

		jobExecutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Subsystem: "jobs",
			Name:      "executions_total",
			Help:      "Background job executions by kind and final status.",
		}, []string{"kind", "status"})

		uploadsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stagehub",
			Name:      "uploads_rejected_total",
			Help:      "Rejected CV and logo uploads by reason.",
		}, []string{"kind", "reason"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			notificationsPublished,
			sseClientsActive,
			cvPipelineOutcomes,
			screeningSubmissionsTotal,
			jobExecutionsTotal,
			uploadsRejectedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// NotificationsPublishedTotal exposes the notification counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the SSE client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// CVPipelineOutcomes exposes the per-record CV pipeline counter.
func CVPipelineOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return cvPipelineOutcomes
}

// ScreeningSubmissions exposes the screening submission counter.
func ScreeningSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return screeningSubmissionsTotal
}

// JobExecutions exposes the background job counter.
func JobExecutions() *prometheus.CounterVec {
	RegisterMetrics()
	return jobExecutionsTotal
}

// UploadsRejected exposes the rejected upload counter.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejectedTotal
}
