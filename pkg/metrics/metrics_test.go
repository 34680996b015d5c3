package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New("test")

	m.BookingOutcome("book", OutcomeConflict)
	m.BookingOutcome("book", OutcomeConflict)
	m.BookingOutcome("book", OutcomeSuccess)
	m.ProviderFailed("calendar", "google-calendar")

	if got := testutil.ToFloat64(m.BookingOutcomes.WithLabelValues("book", OutcomeConflict)); got != 2 {
		t.Errorf("conflict count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProviderFailures.WithLabelValues("calendar", "google-calendar")); got != 1 {
		t.Errorf("provider failures = %v, want 1", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("slotbook")
	m.ObserveHTTP(http.MethodGet, "/api/v1/businesses/:business_id/availability", http.StatusOK, 15*time.Millisecond)
	m.ObserveAvailability(true, 12, 40*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`slotbook_http_requests_total{method="GET",route="/api/v1/businesses/:business_id/availability",status="200"} 1`,
		`slotbook_availability_duration_seconds_count{degraded="true"} 1`,
		`slotbook_availability_slots_returned_count 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New("test"), New("test")
	a.BookingOutcome("cancel", OutcomeSuccess)

	if got := testutil.ToFloat64(b.BookingOutcomes.WithLabelValues("cancel", OutcomeSuccess)); got != 0 {
		t.Errorf("second instance saw %v increments", got)
	}
}
