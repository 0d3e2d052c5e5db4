package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/me/memstage/internal/report"
)

func newTestServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			HasReport bool `json:"has_report"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status field = %q, want ok", resp.Status)
	}
	if resp.Data.HasReport {
		t.Error("fresh server must report has_report=false")
	}
}

func TestServer_ReportBeforePublish(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before any report is published", rec.Code)
	}
}

func TestServer_ReportAfterPublish(t *testing.T) {
	srv := newTestServer()
	rep := report.New(map[string]int64{
		"train_memory_cpu_alloc_delta": 500_000_000,
	})
	srv.Publish(rep)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Data struct {
			RunID   string           `json:"run_id"`
			Metrics map[string]int64 `json:"metrics"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Data.RunID != rep.RunID {
		t.Errorf("run_id = %q, want %q", resp.Data.RunID, rep.RunID)
	}
	if resp.Data.Metrics["train_memory_cpu_alloc_delta"] != 500_000_000 {
		t.Errorf("unexpected metrics: %v", resp.Data.Metrics)
	}
}
