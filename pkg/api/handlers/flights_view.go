package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/flightblender/coordination-engine/pkg/opint"
	"github.com/flightblender/coordination-engine/pkg/spatialindex"
)

var (
	errViewRequired = errors.New("view query parameter is required (minLng,minLat,maxLng,maxLat)")
	errViewMalformed = errors.New("view query parameter must be four comma-separated numbers")
)

// OperationalIntentScanner is the subset of pkg/opint.Store the flights/view
// handler needs: every currently-active operational intent snapshot.
type OperationalIntentScanner interface {
	ScanActive(ctx context.Context) ([]*opint.Snapshot, error)
}

// FlightsViewHandler serves the read-only remote-ID display surface
// (SPEC_FULL §10.5): "what's flying in this viewport", queried against a
// spatial index rebuilt from the live operational intent snapshots, mirroring
// flight_feed_operations/views.py's get_rid_view without re-deriving the
// full F3411 SDSP wire format (excluded per spec.md Non-goals).
type FlightsViewHandler struct {
	opints OperationalIntentScanner
}

// NewFlightsViewHandler constructs a FlightsViewHandler.
func NewFlightsViewHandler(opints OperationalIntentScanner) *FlightsViewHandler {
	return &FlightsViewHandler{opints: opints}
}

type flightView struct {
	DeclarationID string             `json:"declaration_id"`
	Reference     opint.Reference    `json:"reference"`
	Bounds        [4]float64         `json:"bounds"`
}

// View handles GET /flights/view?view=minLng,minLat,maxLng,maxLat.
func (h *FlightsViewHandler) View(w http.ResponseWriter, r *http.Request) {
	box, err := parseViewport(r.URL.Query().Get("view"))
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	snaps, err := h.opints.ScanActive(r.Context())
	if err != nil {
		InternalServerError(w, "failed to scan operational intents")
		return
	}

	idx := spatialindex.New()
	byID := make(map[string]*opint.Snapshot, len(snaps))
	for _, snap := range snaps {
		idx.Insert(snap.DeclarationID, spatialindex.Box(snap.Bounds), spatialindex.Metadata{
			StartTime: snap.Reference.StartTime,
			EndTime:   snap.Reference.EndTime,
			Priority:  snap.Priority,
		})
		byID[snap.DeclarationID] = snap
	}

	hits := idx.QueryBox(box)
	views := make([]flightView, 0, len(hits))
	for _, hit := range hits {
		snap := byID[hit.ID]
		views = append(views, flightView{
			DeclarationID: snap.DeclarationID,
			Reference:     snap.Reference,
			Bounds:        snap.Bounds,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"flights": views})
}

// parseViewport parses the "minLng,minLat,maxLng,maxLat" query form into a
// spatialindex.Box, matching opint.Snapshot.Bounds's ordering.
func parseViewport(raw string) (spatialindex.Box, error) {
	var box spatialindex.Box
	if raw == "" {
		return box, errViewRequired
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return box, errViewMalformed
	}

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return box, errViewMalformed
		}
		box[i] = v
	}
	return box, nil
}
