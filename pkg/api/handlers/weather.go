package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flightblender/coordination-engine/pkg/weather"
)

var errBoundsMalformed = errors.New("bounds must be four comma-separated numbers")

// WeatherClient is the subset of pkg/weather.Client WeatherHandler needs.
type WeatherClient interface {
	GetData(ctx context.Context, loc weather.LocationVector, attrs []weather.Attr) (map[string]any, error)
}

var defaultWeatherAttrs = []weather.Attr{weather.AttrWeatherCode, weather.AttrTemperature2m}

// WeatherHandler serves advisory weather data for a flight declaration's
// operating area (SPEC_FULL §10.2): weather is attached to a declaration by
// reference to its bounds centroid, not stored on the declaration itself, so
// a stale advisory can never be served from a cached record.
type WeatherHandler struct {
	declarations DeclarationStore
	client       WeatherClient
}

// NewWeatherHandler constructs a WeatherHandler. client may be nil; in that
// case the endpoint responds 500 Internal Server Error.
func NewWeatherHandler(declarations DeclarationStore, client WeatherClient) *WeatherHandler {
	return &WeatherHandler{declarations: declarations, client: client}
}

// Advisory handles GET /api/v1/flight_declarations/{id}/weather, fetching
// current conditions for the declaration's bounds centroid.
func (h *WeatherHandler) Advisory(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		InternalServerError(w, "weather client not available")
		return
	}

	id := chi.URLParam(r, "id")
	d, err := h.declarations.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	loc, err := centroidOf(d.Bounds)
	if err != nil {
		BadRequest(w, "declaration has unparseable bounds: "+err.Error())
		return
	}

	data, err := h.client.GetData(r.Context(), loc, defaultWeatherAttrs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// centroidOf parses a "minLng,minLat,maxLng,maxLat" bounds string into the
// midpoint LocationVector weather.Client expects, matching the comma-
// separated bounds format pkg/spatialindex.Box is built from.
func centroidOf(bounds string) (weather.LocationVector, error) {
	parts := strings.Split(bounds, ",")
	if len(parts) != 4 {
		return weather.LocationVector{}, errBoundsMalformed
	}
	var f [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return weather.LocationVector{}, errBoundsMalformed
		}
		f[i] = v
	}
	return weather.LocationVector{
		Longitude: (f[0] + f[2]) / 2,
		Latitude:  (f[1] + f[3]) / 2,
	}, nil
}
