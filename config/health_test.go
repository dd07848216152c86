package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func serveHealth(t *testing.T, h *HealthChecker) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return w.Code, body
}

func TestHealth_NothingConfigured(t *testing.T) {
	code, body := serveHealth(t, NewHealthChecker(nil, nil, nil, nil))

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	if deps := body["dependencies"].(map[string]any); len(deps) != 0 {
		t.Errorf("expected no dependencies, got %v", deps)
	}
}

func TestHealth_PostgresUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()
	mock.ExpectPing()

	code, body := serveHealth(t, NewHealthChecker(db, nil, nil, nil))

	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	pg := body["dependencies"].(map[string]any)["postgres"].(map[string]any)
	if pg["status"] != "up" {
		t.Errorf("expected postgres up, got %v", pg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHealth_PostgresDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer func() { _ = db.Close() }()
	mock.ExpectPing().WillReturnError(healthError("connection refused"))

	code, body := serveHealth(t, NewHealthChecker(db, nil, nil, nil))

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body["status"] != "unhealthy" {
		t.Errorf("expected unhealthy, got %v", body["status"])
	}
}
