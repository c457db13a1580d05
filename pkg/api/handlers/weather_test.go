package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/weather"
)

type fakeDeclarationStore struct {
	decls map[string]*flightdecl.Declaration
}

func (f *fakeDeclarationStore) Create(ctx context.Context, d *flightdecl.Declaration) error {
	f.decls[d.ID] = d
	return nil
}
func (f *fakeDeclarationStore) Get(ctx context.Context, id string) (*flightdecl.Declaration, error) {
	d, ok := f.decls[id]
	if !ok {
		return nil, assert.AnError
	}
	return d, nil
}
func (f *fakeDeclarationStore) List(ctx context.Context) ([]*flightdecl.Declaration, error) { return nil, nil }
func (f *fakeDeclarationStore) Update(ctx context.Context, d *flightdecl.Declaration) error { return nil }
func (f *fakeDeclarationStore) Delete(ctx context.Context, id string) error                 { return nil }

type fakeWeatherClient struct {
	lastLoc weather.LocationVector
	data    map[string]any
	err     error
}

func (f *fakeWeatherClient) GetData(ctx context.Context, loc weather.LocationVector, attrs []weather.Attr) (map[string]any, error) {
	f.lastLoc = loc
	return f.data, f.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestWeatherAdvisoryFetchesCentroidOfBounds(t *testing.T) {
	decls := &fakeDeclarationStore{decls: map[string]*flightdecl.Declaration{
		"decl-1": {
			ID:            "decl-1",
			Bounds:        "7.0,45.0,7.2,45.2",
			StartDatetime: time.Now(),
			EndDatetime:   time.Now().Add(time.Hour),
		},
	}}
	client := &fakeWeatherClient{data: map[string]any{"hourly": map[string]any{"temperature_2m": []float64{12.5}}}}
	h := NewWeatherHandler(decls, client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight_declarations/decl-1/weather", nil)
	req = withURLParam(req, "id", "decl-1")
	w := httptest.NewRecorder()

	h.Advisory(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 7.1, client.lastLoc.Longitude, 0.001)
	assert.InDelta(t, 45.1, client.lastLoc.Latitude, 0.001)
}

func TestWeatherAdvisoryRejectsMalformedBounds(t *testing.T) {
	decls := &fakeDeclarationStore{decls: map[string]*flightdecl.Declaration{
		"decl-1": {ID: "decl-1", Bounds: "not-a-bounds-string"},
	}}
	client := &fakeWeatherClient{}
	h := NewWeatherHandler(decls, client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight_declarations/decl-1/weather", nil)
	req = withURLParam(req, "id", "decl-1")
	w := httptest.NewRecorder()

	h.Advisory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWeatherAdvisoryUnknownDeclaration(t *testing.T) {
	decls := &fakeDeclarationStore{decls: map[string]*flightdecl.Declaration{}}
	client := &fakeWeatherClient{}
	h := NewWeatherHandler(decls, client)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flight_declarations/missing/weather", nil)
	req = withURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.Advisory(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
}
