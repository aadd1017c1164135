//go:build !rp2040 && !rp2350

package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncFrame("tank", ResultAccepted)
	pr.IncFrame("tank", ResultAccepted)
	pr.IncCommand("feeder", ResultDropped)
	pr.IncLine(ResultMalformed)
	pr.IncLockTimeout("supervisor")
	pr.IncFailSafeFeed()
	pr.SetServerConnected(true)
	pr.SetAlarmLevel(2)
	pr.SetModuleStatus("grow", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.frames.WithLabelValues("tank", ResultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.failSafe))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.connected))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.alarm))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncLine(ResultAccepted)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "habitat_link_lines_total"))
}

func TestOrNoop(t *testing.T) {
	_, ok := OrNoop(nil).(NoopRecorder)
	assert.True(t, ok)
}
