package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successful calls and analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels failed calls and analyses.
	OutcomeError = "error"
)

const namespace = "feedback_lens"

var (
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Remote model calls, partitioned by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	llmCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_seconds",
			Help:      "Remote model call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 120},
		},
		[]string{"op"},
	)

	batchRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_retries_total",
			Help:      "Classification batch attempts that were retried.",
		},
	)

	degradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_total",
			Help:      "Sub-calls replaced by a fallback, partitioned by kind.",
		},
		[]string{"kind"},
	)

	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis requests handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_seconds",
			Help:      "End-to-end analysis latency in seconds.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	commentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_total",
			Help:      "Comments sent for classification.",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, partitioned by method and status code.",
		},
		[]string{"method", "code"},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		llmCallsTotal,
		llmCallSeconds,
		batchRetriesTotal,
		degradedTotal,
		analysesTotal,
		analysisSeconds,
		commentsTotal,
		httpRequestsTotal,
		httpInFlight,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func outcomeLabel(outcome string) string {
	if outcome != OutcomeError {
		return OutcomeSuccess
	}
	return OutcomeError
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// ObserveLLMCall records one remote model call.
func ObserveLLMCall(op string, duration time.Duration, outcome string) {
	llmCallsTotal.WithLabelValues(op, outcomeLabel(outcome)).Inc()
	llmCallSeconds.WithLabelValues(op).Observe(clamp(duration).Seconds())
}

// ObserveBatchRetry counts a classification attempt that will be retried.
func ObserveBatchRetry() {
	batchRetriesTotal.Inc()
}

// ObserveDegraded counts a fallback of the given kind.
func ObserveDegraded(kind string) {
	degradedTotal.WithLabelValues(kind).Inc()
}

// ObserveAnalysis records an analysis duration, its outcome and the comment count.
func ObserveAnalysis(duration time.Duration, outcome string, comments int) {
	analysesTotal.WithLabelValues(outcomeLabel(outcome)).Inc()
	analysisSeconds.Observe(clamp(duration).Seconds())
	if comments > 0 {
		commentsTotal.Add(float64(comments))
	}
}

// ObserveHTTP records a finished HTTP request.
func ObserveHTTP(method string, code int) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// InFlight adjusts the in-flight HTTP gauge by delta.
func InFlight(delta float64) {
	httpInFlight.Add(delta)
}
