package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/flightblender/coordination-engine/pkg/kvstore"
)

// HealthCheckTimeout bounds how long a store health probe is allowed to run.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler serves liveness/readiness/store-health endpoints. Store may
// be nil, in which case readiness and store checks report unhealthy.
type HealthHandler struct {
	store kvstore.KVStream
}

// NewHealthHandler creates a health handler backed by store.
func NewHealthHandler(store kvstore.KVStream) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "flight-blender",
	}))
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("kv store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	if err := h.probeStore(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(nil))
}

// StoreHealth reports the health of a single dependency.
type StoreHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Stores handles GET /health/stores - detailed KV store health.
func (h *HealthHandler) Stores(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("kv store not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.probeStore(ctx)
	latency := time.Since(start)

	health := StoreHealth{Name: "kvstore", Latency: latency.String()}
	if err != nil {
		health.Status = "unhealthy"
		health.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(health))
		return
	}

	health.Status = "healthy"
	writeJSON(w, http.StatusOK, healthyResponse(health))
}

// probeStore exercises the KV store with a cheap round trip.
func (h *HealthHandler) probeStore(ctx context.Context) error {
	const probeKey = "health.probe"
	if err := h.store.Set(ctx, probeKey, []byte("ok")); err != nil {
		return err
	}
	_, err := h.store.Get(ctx, probeKey)
	return err
}
