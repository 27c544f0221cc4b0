package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProcessedOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Processed(OutcomeAutoBooked)
	m.Processed(OutcomeAutoBooked)
	m.Processed(OutcomeBookingFailed)

	if got := testutil.ToFloat64(m.processed.WithLabelValues(OutcomeAutoBooked)); got != 2 {
		t.Fatalf("expected 2 auto-booked, got %v", got)
	}
	if got := testutil.ToFloat64(m.processed.WithLabelValues(OutcomeBookingFailed)); got != 1 {
		t.Fatalf("expected 1 booking failure, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *WaitlistMetrics

	m.EntryCreated()
	m.Processed(OutcomeNotificationOnly)
	m.ObserveReorder(0.01)
	m.NotificationPublished("WAITLIST_AUTO_BOOKED", PublishResultOK)
	m.EntriesExpired(3)
}

func TestGinMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	engine := gin.New()
	engine.Use(m.GinMiddleware())
	engine.GET("/api/v1/class-waitlist", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/class-waitlist", nil))

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/v1/class-waitlist", "200"))
	if got != 1 {
		t.Fatalf("expected 1 recorded request, got %v", got)
	}
}
