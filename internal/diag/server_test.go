package diag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/annel0/bullethell/internal/collision"
	"github.com/annel0/bullethell/internal/logging"
	"github.com/annel0/bullethell/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixedStats sim.Stats

func (f fixedStats) Stats() sim.Stats { return sim.Stats(f) }

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	collision.NewMetrics(reg)
	s, err := NewServer(Config{
		Port:     0,
		Registry: reg,
		Stats:    fixedStats{SessionID: "abc", Frame: 42, Kills: 7},
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return s, reg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(Config{Registry: prometheus.NewRegistry()})
	assert.Error(t, err)
	_, err = NewServer(Config{Stats: fixedStats{}})
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestServer_Stats(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Session sim.Stats    `json:"session"`
		Process ProcessStats `json:"process"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body.Session.SessionID)
	assert.Equal(t, uint64(42), body.Session.Frame)
	assert.Equal(t, uint64(7), body.Session.Kills)
	assert.Greater(t, body.Process.Goroutines, 0)
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	get(t, s.Handler(), "/health")

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "bullethell_collision_rebuilds_total"), "Метрики столкновений экспортируются")
	assert.Contains(t, body, `bullethell_diag_http_request_duration_seconds_count{method="GET",path="/health",status="200"} 1`)
}

func TestServer_Addr(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, ":0", s.Addr())
}

func TestServer_UnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope").Code)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", FormatUptime(5*time.Second))
	assert.Equal(t, "2м 3с", FormatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1ч 0м 1с", FormatUptime(time.Hour+time.Second))
	assert.Equal(t, "1д 2ч 0м 0с", FormatUptime(26*time.Hour))
}

func TestProcessSampler_Sample(t *testing.T) {
	st := NewProcessSampler().Sample()
	assert.Greater(t, st.HeapMB, 0.0)
	assert.GreaterOrEqual(t, st.CPUPercent, 0.0)
}
