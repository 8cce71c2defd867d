package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	m := NewNop()

	m.RecordTransition("subscribe", nil)
	m.RecordTransition("subscribe", errors.New("x"))
	m.RecordTransition("subscribe", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LifecycleTransitions.WithLabelValues("subscribe", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LifecycleTransitions.WithLabelValues("subscribe", "error")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordTransition("cancel", nil)
	m.RecordPayment("upi", "success")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := NewNop()
	m.RecordPayment("card", "failed")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "subhub_payment_attempts_total"))
}
