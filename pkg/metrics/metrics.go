package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAutoBooked       = "auto_booked"
	OutcomeNotificationOnly = "notification_only"
	OutcomeBookingFailed    = "booking_failed"
)

const (
	PublishResultOK    = "ok"
	PublishResultError = "error"
)

const (
	DirectionPublished = "published"
	DirectionConsumed  = "consumed"
)

// WaitlistMetrics captures waitlist throughput and failure signals.
// A nil *WaitlistMetrics is valid and records nothing.
type WaitlistMetrics struct {
	entriesCreated   prometheus.Counter
	entriesRemoved   prometheus.Counter
	entriesExpired   prometheus.Counter
	processed        *prometheus.CounterVec
	reorders         prometheus.Counter
	reorderDuration  prometheus.Histogram
	notifications    *prometheus.CounterVec
	capacityEvents   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	rateLimitDenials prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *WaitlistMetrics
)

// Default returns the process-wide metrics registered on the default registerer.
func Default() *WaitlistMetrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New builds and registers the collectors on registerer.
func New(registerer prometheus.Registerer) *WaitlistMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &WaitlistMetrics{
		entriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymflow_waitlist_entries_created_total",
			Help: "Waitlist entries created.",
		}),
		entriesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymflow_waitlist_entries_removed_total",
			Help: "Waitlist entries deleted.",
		}),
		entriesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymflow_waitlist_entries_expired_total",
			Help: "Waiting entries moved to expired by the sweep.",
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymflow_waitlist_processed_total",
			Help: "Capacity release outcomes per entry.",
		}, []string{"outcome"}),
		reorders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymflow_waitlist_reorders_total",
			Help: "Position recomputations.",
		}),
		reorderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gymflow_waitlist_reorder_duration_seconds",
			Help:    "Time spent recomputing positions for one schedule.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymflow_waitlist_notifications_published_total",
			Help: "Waitlist notifications handed to the broker.",
		}, []string{"type", "result"}),
		capacityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymflow_capacity_events_total",
			Help: "Capacity released events by direction.",
		}, []string{"direction", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymflow_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gymflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimitDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymflow_rate_limit_denied_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}

	registerer.MustRegister(
		m.entriesCreated,
		m.entriesRemoved,
		m.entriesExpired,
		m.processed,
		m.reorders,
		m.reorderDuration,
		m.notifications,
		m.capacityEvents,
		m.httpRequests,
		m.httpDuration,
		m.rateLimitDenials,
	)
	return m
}

func (m *WaitlistMetrics) EntryCreated() {
	if m == nil {
		return
	}
	m.entriesCreated.Inc()
}

func (m *WaitlistMetrics) EntryRemoved() {
	if m == nil {
		return
	}
	m.entriesRemoved.Inc()
}

func (m *WaitlistMetrics) EntriesExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entriesExpired.Add(float64(n))
}

func (m *WaitlistMetrics) Processed(outcome string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(outcome).Inc()
}

func (m *WaitlistMetrics) ObserveReorder(seconds float64) {
	if m == nil {
		return
	}
	m.reorders.Inc()
	m.reorderDuration.Observe(seconds)
}

func (m *WaitlistMetrics) NotificationPublished(notificationType, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notificationType, result).Inc()
}

// CapacityEvent records a published ("out") or consumed ("in") capacity event.
func (m *WaitlistMetrics) CapacityEvent(direction, result string) {
	if m == nil {
		return
	}
	m.capacityEvents.WithLabelValues(direction, result).Inc()
}

func (m *WaitlistMetrics) RateLimitDenied() {
	if m == nil {
		return
	}
	m.rateLimitDenials.Inc()
}
