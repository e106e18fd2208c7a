package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBookingTransition(t *testing.T) {
	m := New("shareit")

	m.RecordBookingTransition("WAITING")
	m.RecordBookingTransition("WAITING")
	m.RecordBookingTransition("APPROVED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("WAITING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("APPROVED")))
}

func TestHandler_ExposesServiceMetrics(t *testing.T) {
	m := New("shareit")
	m.ObserveHTTP(http.MethodGet, "/api/v1/bookings", http.StatusOK, 15*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shareit_http_requests_total{code="200",method="GET",route="/api/v1/bookings"} 1`)
}
