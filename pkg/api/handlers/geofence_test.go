package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/geofence"
)

type fakeGeofenceStore struct {
	fences map[string]*geofence.Geofence
}

func newFakeGeofenceStore() *fakeGeofenceStore {
	return &fakeGeofenceStore{fences: make(map[string]*geofence.Geofence)}
}

func (f *fakeGeofenceStore) Put(ctx context.Context, g *geofence.Geofence) error {
	f.fences[g.ID] = g
	return nil
}

func (f *fakeGeofenceStore) Delete(ctx context.Context, id string) error {
	delete(f.fences, id)
	return nil
}

func TestGeofenceCreate(t *testing.T) {
	store := newFakeGeofenceStore()
	h := NewGeofenceHandler(store)

	body, _ := json.Marshal(map[string]any{
		"name": "restricted-zone",
		"outline": []map[string]float64{
			{"lat": 45.0, "lng": 7.0},
			{"lat": 45.1, "lng": 7.0},
			{"lat": 45.1, "lng": 7.1},
		},
		"start_time": time.Now(),
		"end_time":   time.Now().Add(time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/geofences", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.fences, 1)
}

func TestGeofenceCreateRejectsBadTimeWindow(t *testing.T) {
	store := newFakeGeofenceStore()
	h := NewGeofenceHandler(store)

	body, _ := json.Marshal(map[string]any{
		"name": "restricted-zone",
		"outline": []map[string]float64{
			{"lat": 45.0, "lng": 7.0},
			{"lat": 45.1, "lng": 7.0},
			{"lat": 45.1, "lng": 7.1},
		},
		"start_time": time.Now(),
		"end_time":   time.Now().Add(-time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/geofences", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.fences)
}

func TestGeofenceDelete(t *testing.T) {
	store := newFakeGeofenceStore()
	store.fences["fence-1"] = &geofence.Geofence{ID: "fence-1"}
	h := NewGeofenceHandler(store)

	req := httptest.NewRequest(http.MethodDelete, "/geofences/fence-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "fence-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotContains(t, store.fences, "fence-1")
}
