package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flightblender/coordination-engine/pkg/geofence"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

// GeofenceStore is the persistence interface GeofenceHandler needs;
// satisfied by pkg/geofence.Store.
type GeofenceStore interface {
	Put(ctx context.Context, g *geofence.Geofence) error
	Delete(ctx context.Context, id string) error
}

// GeofenceHandler serves geofence ingestion (SPEC_FULL §10.1). It accepts
// already-decoded outline coordinates rather than raw GeoJSON, matching
// spec.md's Non-goal of not re-deriving a full GeoJSON parser.
type GeofenceHandler struct {
	store GeofenceStore
}

// NewGeofenceHandler constructs a GeofenceHandler.
func NewGeofenceHandler(store GeofenceStore) *GeofenceHandler {
	return &GeofenceHandler{store: store}
}

type createGeofenceRequest struct {
	Name      string         `json:"name"`
	Outline   []opint.LatLng `json:"outline" validate:"required,min=3,dive"`
	Bounds    [4]float64     `json:"bounds"`
	StartTime time.Time      `json:"start_time" validate:"required"`
	EndTime   time.Time      `json:"end_time" validate:"required,gtfield=StartTime"`
}

// Create handles POST /api/v1/geofences.
func (h *GeofenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createGeofenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	g := &geofence.Geofence{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Outline:   req.Outline,
		Bounds:    req.Bounds,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := h.store.Put(r.Context(), g); err != nil {
		InternalServerError(w, "failed to store geofence")
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

// Delete handles DELETE /api/v1/geofences/{id}.
func (h *GeofenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		InternalServerError(w, "failed to delete geofence")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
