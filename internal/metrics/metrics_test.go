package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mockinterview/internal/metrics"
	"mockinterview/internal/narration"
	"mockinterview/internal/orchestrator"
)

func TestRecorderCountsSessionOutcomes(t *testing.T) {
	r := metrics.New()
	r.SessionStarted(true)
	r.SessionStarted(false)
	r.SessionStarted(false)
	r.ResponseRecorded(45)
	r.SessionCompleted(88, 12*time.Minute)
	r.SessionExited(orchestrator.PhaseRecording)
	r.DeviceUnavailable()
	r.NarrationEnded(narration.KindGreeting, true)
	r.SetActive(2)

	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, label := range m.GetLabel() {
				key += "|" + label.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	expect := map[string]float64{
		"mockinterview_sessions_started_total|fallback":    2,
		"mockinterview_sessions_started_total|job_post":    1,
		"mockinterview_sessions_completed_total":           1,
		"mockinterview_overall_score":                      1,
		"mockinterview_sessions_exited_total|recording":    1,
		"mockinterview_device_unavailable_total":           1,
		"mockinterview_narrations_total|greeting|canceled": 1,
		"mockinterview_sessions_active":                    2,
		"mockinterview_response_duration_seconds":          1,
	}
	for key, want := range expect {
		if got, ok := values[key]; !ok || got != want {
			t.Fatalf("%s = %v (present=%t), want %v", key, got, ok, want)
		}
	}
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := metrics.New()
	r.SessionsPruned(3)

	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/api/status", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(r.Handler()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics returned %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`mockinterview_http_requests_total{method="GET",route="/api/status",status="204"} 1`,
		`mockinterview_sessions_pruned_total 3`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}
