package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/flightblender/coordination-engine/pkg/telemetry"
)

// TelemetryStore is the persistence interface TelemetryHandler needs;
// satisfied by pkg/telemetry.Store.
type TelemetryStore interface {
	Record(ctx context.Context, sample telemetry.Sample) error
}

// TelemetryHandler serves telemetry ingestion (SPEC_FULL §6/§10.5): position
// reports stored as the declaration's latest position, which conformance
// monitoring reads, and appended to its history stream.
type TelemetryHandler struct {
	store TelemetryStore
}

// NewTelemetryHandler constructs a TelemetryHandler.
func NewTelemetryHandler(store TelemetryStore) *TelemetryHandler {
	return &TelemetryHandler{store: store}
}

type telemetryRequest struct {
	DeclarationID string  `json:"declaration_id" validate:"required"`
	AircraftID    string  `json:"aircraft_id" validate:"required"`
	Lat           float64 `json:"lat" validate:"required,latitude"`
	Lng           float64 `json:"lng" validate:"required,longitude"`
	AltitudeM     float64 `json:"altitude_m"`
}

// Ingest accepts a single position report and records it as the
// declaration's latest telemetry sample.
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req telemetryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sample := telemetry.Sample{
		DeclarationID: req.DeclarationID,
		AircraftID:    req.AircraftID,
		Lat:           req.Lat,
		Lng:           req.Lng,
		AltitudeM:     req.AltitudeM,
		Timestamp:     time.Now(),
	}

	if err := h.store.Record(r.Context(), sample); err != nil {
		InternalServerError(w, "failed to record telemetry")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}
