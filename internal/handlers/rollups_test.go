package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalflow/analytics/internal/logger"
	"github.com/vitalflow/analytics/internal/metrics"
	"github.com/vitalflow/analytics/internal/models"
	"github.com/vitalflow/analytics/internal/publisher"
	"github.com/vitalflow/analytics/internal/repository"
	"github.com/vitalflow/analytics/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, repository.RollupRepository, repository.CounterRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rollups := repository.NewMemoryRollupRepository()
	counters := repository.NewMemoryCounterRepository()
	log := logger.Default()

	applier := service.NewApplier(rollups, counters, publisher.NewLogPublisher(log), metrics.NewCollector(), log)
	reporting := service.NewReportingService(rollups, counters)

	rollupHandler := NewRollupHandler(reporting, log)
	eventHandler := NewEventHandler(applier, log)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/events", eventHandler.Ingest)
	api.GET("/rollups/:username", rollupHandler.GetRollup)
	api.GET("/rollups/:username/recent", rollupHandler.GetRecentRollups)
	api.GET("/stats/:username", rollupHandler.GetLifetimeStats)
	api.GET("/summary/:username", rollupHandler.GetSummary)

	return router, rollups, counters
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func seedRollup(t *testing.T, repo repository.RollupRepository, date string, steps int64) {
	t.Helper()
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		t.Fatal(err)
	}
	r := models.NewDailyRollup("alice", d)
	r.TotalSteps = steps
	if err := repo.Upsert(context.Background(), r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestGetRollup(t *testing.T) {
	router, rollups, _ := newTestRouter(t)
	seedRollup(t, rollups, "2025-03-10", 5000)

	w := doRequest(router, http.MethodGet, "/api/v1/rollups/alice?date=2025-03-10")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var rollup models.DailyRollup
	if err := json.Unmarshal(w.Body.Bytes(), &rollup); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if rollup.TotalSteps != 5000 {
		t.Errorf("TotalSteps = %d, want 5000", rollup.TotalSteps)
	}
}

func TestGetRollupNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/rollups/alice?date=2025-03-10")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %s, want problem+json", ct)
	}
}

func TestGetRollupBadDate(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/rollups/alice?date=03/10/2025")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetRecentRollupsEmptyIsArray(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/rollups/alice/recent")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("body = %s, want empty JSON array", body)
	}
}

func TestGetLifetimeStats(t *testing.T) {
	router, _, counters := newTestRouter(t)
	stats := &models.LifetimeStats{Username: "alice", TotalSteps: 12000, RecordCount: 2, AverageSteps: 6000}
	if err := counters.Upsert(context.Background(), stats); err != nil {
		t.Fatal(err)
	}

	w := doRequest(router, http.MethodGet, "/api/v1/stats/alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got models.LifetimeStats
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalSteps != 12000 || got.RecordCount != 2 {
		t.Errorf("stats = %+v", got)
	}

	if w := doRequest(router, http.MethodGet, "/api/v1/stats/bob"); w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}
}

func TestGetSummaryFallback(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/summary/alice")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Username string `json:"username"`
		Summary  string `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Username != "alice" || resp.Summary == "" {
		t.Errorf("response = %+v", resp)
	}
}
