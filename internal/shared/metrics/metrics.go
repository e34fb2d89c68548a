package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	candidatesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aihr_candidates_registered_total",
		Help: "Total candidates registered",
	})
	interviewsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aihr_interviews_started_total",
		Help: "Total interviews created",
	})
	answersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aihr_answers_submitted_total",
		Help: "Total answers appended to interviews",
	})
	interviewsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aihr_interviews_completed_total",
		Help: "Total interviews finished with a report",
	})
	exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aihr_sheet_exports_total",
		Help: "Spreadsheet exports by tab and outcome",
	}, []string{"tab", "outcome"})
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aihr_upstream_requests_total",
		Help: "Calls to external providers by provider, operation and outcome",
	}, []string{"provider", "op", "outcome"})
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aihr_upstream_request_duration_seconds",
		Help:    "Latency of calls to external providers",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"provider", "op"})
)

// IncCandidateRegistered increments the registered candidates counter.
func IncCandidateRegistered() { candidatesRegistered.Inc() }

// IncInterviewStarted increments the started interviews counter.
func IncInterviewStarted() { interviewsStarted.Inc() }

// IncAnswerSubmitted increments the submitted answers counter.
func IncAnswerSubmitted() { answersSubmitted.Inc() }

// IncInterviewCompleted increments the completed interviews counter.
func IncInterviewCompleted() { interviewsCompleted.Inc() }

// ObserveExport records a spreadsheet export attempt.
func ObserveExport(tab string, err error) {
	exports.WithLabelValues(tab, outcome(err)).Inc()
}

// ObserveUpstream records a provider call that started at start.
func ObserveUpstream(provider, op string, start time.Time, err error) {
	upstreamRequests.WithLabelValues(provider, op, outcome(err)).Inc()
	upstreamDuration.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
