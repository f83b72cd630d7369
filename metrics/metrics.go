package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hotel_booking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created in pending state.",
		},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Applied booking status transitions by target status and source.",
		},
		[]string{"status", "source"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Processor webhook deliveries by event kind and outcome.",
		},
		[]string{"event", "outcome"},
	)

	processorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_processor_calls_total",
			Help:      "Payment processor calls by operation and result.",
		},
		[]string{"operation", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingsCreated, transitions, webhookEvents, processorCalls)
	})
}

func ObserveHTTP(route, status string, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, status).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncTransition counts an applied transition. source is "guest", "owner", "verify" or "webhook".
func IncTransition(status, source string) {
	transitions.WithLabelValues(status, source).Inc()
}

// IncWebhook counts a delivery by its outcome, for example "applied", "noop" or "rejected".
func IncWebhook(event, outcome string) {
	webhookEvents.WithLabelValues(event, outcome).Inc()
}

func IncProcessorCall(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	processorCalls.WithLabelValues(operation, result).Inc()
}
