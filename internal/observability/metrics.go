package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	lmsRequestsTotal     *prometheus.CounterVec
	lmsLatencySeconds    *prometheus.HistogramVec
	lmsErrorsTotal       *prometheus.CounterVec
	submissionsRecorded  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the LMS API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		lmsRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_requests_total",
			Help: "Total number of LMS API requests served.",
		}, []string{"method", "route", "status"})

		lmsLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_latency_seconds",
			Help:    "Latency distribution for LMS API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		lmsErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_errors_total",
			Help: "Total number of error responses returned by LMS endpoints.",
		}, []string{"method", "route", "status"})

		submissionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_submissions_recorded_total",
			Help: "Submission lifecycle writes, labelled by content kind and resulting status.",
		}, []string{"kind", "status"})

		prometheus.MustRegister(lmsRequestsTotal, lmsLatencySeconds, lmsErrorsTotal, submissionsRecorded)
	})
}

// Requests exposes the counter for LMS requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return lmsRequestsTotal
}

// Latency exposes the latency histogram for LMS requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return lmsLatencySeconds
}

// Errors exposes the counter for LMS error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return lmsErrorsTotal
}

// SubmissionsRecorded exposes the submission lifecycle counter.
func SubmissionsRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsRecorded
}
