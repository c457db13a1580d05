// Package geofence implements a minimal time-windowed polygon store queried
// by the Deconfliction Planner's geofence check (spec.md §4.5 step 4).
// Grounded on original_source/geo_fence_operations/ (models). Each
// geofence's Bounds is compared as a pkg/spatialindex.Box by the planner.
package geofence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flightblender/coordination-engine/pkg/kvstore"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

// keyPrefix namespaces geofence KV entries alongside flight_opint.* and
// opint_flightref.*.
const keyPrefix = "geofence."

// Geofence is a time-windowed polygon restricting flight. Ingestion accepts
// pre-decoded coordinates; parsing the GeoJSON wire format itself is out of
// scope (spec.md Non-goals).
type Geofence struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Outline   []opint.LatLng `json:"outline"`
	Bounds    [4]float64     `json:"bounds"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
}

func key(id string) string {
	return fmt.Sprintf("%s%s", keyPrefix, id)
}

// Store persists geofences in the shared KV store.
type Store struct {
	kv kvstore.Store
}

// New wraps a kvstore.Store.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Put creates or replaces a geofence.
func (s *Store) Put(ctx context.Context, g *Geofence) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling geofence: %w", err)
	}
	return s.kv.Set(ctx, key(g.ID), data)
}

// Delete removes a geofence.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, key(id))
}

// Active returns every geofence whose time window contains now (start and
// end inclusive).
func (s *Store) Active(ctx context.Context, now time.Time) ([]*Geofence, error) {
	keys, err := s.kv.ScanKeys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning geofences: %w", err)
	}

	var active []*Geofence
	for _, k := range keys {
		data, err := s.kv.Get(ctx, k)
		if err != nil {
			continue
		}
		var g Geofence
		if err := json.Unmarshal(data, &g); err != nil {
			continue
		}
		if now.Before(g.StartTime) || now.After(g.EndTime) {
			continue
		}
		active = append(active, &g)
	}
	return active, nil
}
