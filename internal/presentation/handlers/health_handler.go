package handlers

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Status is the engine's free-running operational state, updated by the
// ingester, mempool mirror, and block loop goroutines in
// cmd/arbengine/main.go and read by HealthHandler. Every field is an
// atomic so a concurrent read never races with the task that owns the
// write side.
type Status struct {
	chainID         uint64
	connected       atomic.Bool
	lastBlock       atomic.Uint64
	ingesterRunning atomic.Bool
	mempoolRunning  atomic.Bool
}

// NewStatus seeds a Status for the node the engine dialed.
func NewStatus(chainID uint64) *Status {
	return &Status{chainID: chainID}
}

func (s *Status) SetConnected(connected bool)     { s.connected.Store(connected) }
func (s *Status) SetLastBlock(blockNumber uint64) { s.lastBlock.Store(blockNumber) }
func (s *Status) SetIngesterRunning(running bool) { s.ingesterRunning.Store(running) }
func (s *Status) SetMempoolRunning(running bool)  { s.mempoolRunning.Store(running) }

// HealthResponse reports chain connectivity and subscription liveness
// rather than a bare liveness flag, since a process that is up but has
// lost its head/log subscriptions is not actually serving the engine's
// purpose.
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	ChainID         uint64 `json:"chain_id"`
	Connected       bool   `json:"connected"`
	LastBlock       uint64 `json:"last_processed_block"`
	IngesterRunning bool   `json:"ingester_running"`
	MempoolRunning  bool   `json:"mempool_running"`
}

// HealthHandler serves the operational health check (§6's /healthz
// surface): degraded whenever the node connection or the event ingester
// has dropped, since either one means the world state has stopped
// tracking reality.
type HealthHandler struct {
	version string
	status  *Status
}

// NewHealthHandler builds a HealthHandler over the engine's live Status.
func NewHealthHandler(version string, status *Status) *HealthHandler {
	return &HealthHandler{version: version, status: status}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.status.connected.Load()
	ingesterRunning := h.status.ingesterRunning.Load()

	status := "ok"
	code := http.StatusOK
	if !connected || !ingesterRunning {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(HealthResponse{
		Status:          status,
		Version:         h.version,
		ChainID:         h.status.chainID,
		Connected:       connected,
		LastBlock:       h.status.lastBlock.Load(),
		IngesterRunning: ingesterRunning,
		MempoolRunning:  h.status.mempoolRunning.Load(),
	})
}
