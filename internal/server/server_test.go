package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stagehand-run/stagehand/internal/testutil/testlog"
)

func testSnapshot() Snapshot {
	return Snapshot{Attached: []uint64{0, 1, 2}, Ticks: 42, Done: false}
}

func TestHealthz(t *testing.T) {
	testlog.Start(t)

	srv := New(":0", nil, testSnapshot)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Attached int    `json:"attached"`
		Ticks    uint64 `json:"ticks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthz body: %v", err)
	}
	if body.Status != "ok" || body.Attached != 3 || body.Ticks != 42 {
		t.Fatalf("unexpected healthz body: %+v", body)
	}
}

func TestStagesReturnsSnapshot(t *testing.T) {
	testlog.Start(t)

	srv := New(":0", nil, testSnapshot)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stages", nil)
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("stages status = %d", rec.Code)
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Attached) != 3 || snap.Attached[2] != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	testlog.Start(t)

	srv := New(":0", nil, testSnapshot)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("metrics body is empty")
	}
}

func TestRequestMetricsRecorded(t *testing.T) {
	testlog.Start(t)

	srv := New(":0", nil, testSnapshot)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stages", nil)
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stages status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "stagehand_http_requests_total") {
		t.Fatalf("metrics exposition missing http request counter")
	}
	if !strings.Contains(body, `path="/stages"`) {
		t.Fatalf("metrics exposition missing per-route labels")
	}
}
