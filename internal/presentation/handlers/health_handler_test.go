package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Connected(t *testing.T) {
	status := NewStatus(137)
	status.SetConnected(true)
	status.SetIngesterRunning(true)
	status.SetLastBlock(42)

	h := NewHealthHandler("0.1.0", status)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || !resp.Connected || !resp.IngesterRunning || resp.LastBlock != 42 || resp.ChainID != 137 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestHealthHandler_Degraded_WhenDisconnected(t *testing.T) {
	status := NewStatus(137)
	status.SetConnected(false)
	status.SetIngesterRunning(true)

	h := NewHealthHandler("0.1.0", status)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded status, got %q", resp.Status)
	}
}

func TestHealthHandler_Degraded_WhenIngesterStopped(t *testing.T) {
	status := NewStatus(137)
	status.SetConnected(true)
	status.SetIngesterRunning(false)

	h := NewHealthHandler("0.1.0", status)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the ingester has stopped, got %d", rec.Code)
	}
}
