package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordAndServe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("store", "ok", time.Now())
	m.ObserveRequest("store", "ok", time.Now())
	m.QuorumFailed("write")
	m.ReadRepair("applied")
	m.Conflict()
	m.SetPeerUp("127.0.0.1:9002", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("store", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quorumFailures.WithLabelValues("write")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.peerUp.WithLabelValues("127.0.0.1:9002")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "kvstore_read_repairs_total"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("store", "ok", time.Now())
		m.QuorumFailed("read")
		m.PeerCallFailed("read", "x")
		m.ReadRepair("failed")
		m.Conflict()
		m.SetPeerUp("x", false)
		m.SetBreakerOpen("x", true)
	})
}
