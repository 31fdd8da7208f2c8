package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	p := NewPrometheus()

	p.ObserveIngest(10*time.Millisecond, nil)
	p.ObserveIngest(10*time.Millisecond, errors.New("down"))
	p.ObserveCheck(20*time.Millisecond, "REJECT", nil)
	p.ObserveCheck(20*time.Millisecond, "REJECT", errors.New("down"))
	p.IncFlag("SHARED_PII")
	p.IncFlag("SHARED_PII")
	p.ObserveScan(time.Second, 4, 2, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.ingestTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ingestTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.checkTotal.WithLabelValues("REJECT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.checkTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.flagsTotal.WithLabelValues("SHARED_PII")))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.scanPatterns))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.scanFailures.WithLabelValues("detector")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	p := NewPrometheus()
	p.IncFlag("VELOCITY_FRAUD")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `claimgraph_check_flags_total{rule="VELOCITY_FRAUD"} 1`), body)
}

func TestNoopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Noop{}
	r.ObserveIngest(time.Millisecond, nil)
	r.ObserveCheck(time.Millisecond, "APPROVE", nil)
	r.ObserveScan(time.Millisecond, 0, 0, nil)
	r.IncFlag("HIGH_VALUE")
}
