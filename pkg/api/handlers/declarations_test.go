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

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

type fakeDeclarationStore struct {
	decls map[string]*flightdecl.Declaration
}

func newFakeStore() *fakeDeclarationStore {
	return &fakeDeclarationStore{decls: make(map[string]*flightdecl.Declaration)}
}

func (f *fakeDeclarationStore) Create(ctx context.Context, d *flightdecl.Declaration) error {
	f.decls[d.ID] = d
	return nil
}

func (f *fakeDeclarationStore) Get(ctx context.Context, id string) (*flightdecl.Declaration, error) {
	d, ok := f.decls[id]
	if !ok {
		return nil, blendererrors.NewNotFoundError(id, "flight declaration")
	}
	return d, nil
}

func (f *fakeDeclarationStore) List(ctx context.Context) ([]*flightdecl.Declaration, error) {
	var out []*flightdecl.Declaration
	for _, d := range f.decls {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDeclarationStore) Update(ctx context.Context, d *flightdecl.Declaration) error {
	f.decls[d.ID] = d
	return nil
}

func (f *fakeDeclarationStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.decls[id]; !ok {
		return blendererrors.NewNotFoundError(id, "flight declaration")
	}
	delete(f.decls, id)
	return nil
}

type fakeSubmitter struct {
	store *fakeDeclarationStore
}

func (f *fakeSubmitter) Submit(ctx context.Context, id string, event flightstate.Event) (*flightdecl.Declaration, error) {
	d, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.ApplyEvent(event); err != nil {
		return nil, err
	}
	return d, f.store.Update(ctx, d)
}

func newTestHandler() (*DeclarationHandler, *fakeDeclarationStore) {
	store := newFakeStore()
	return NewDeclarationHandler(store, &fakeSubmitter{store: store}), store
}

func TestCreateDeclarationReturns201(t *testing.T) {
	h, _ := newTestHandler()
	body := createDeclarationRequest{
		FlightDeclarationGeoJSON: `{"type":"Polygon"}`,
		Bounds:                   "45.0,7.0,45.1,7.1",
		OriginatingParty:         "Test Operator",
		StartDatetime:            time.Now().Add(time.Hour),
		EndDatetime:              time.Now().Add(90 * time.Minute),
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flight_declarations", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateDeclarationRejectsInvalidBody(t *testing.T) {
	h, _ := newTestHandler()
	body := createDeclarationRequest{Bounds: "45.0,7.0,45.1,7.1"}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flight_declarations", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetDeclarationReturns404WhenMissing(t *testing.T) {
	h, _ := newTestHandler()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/flight_declarations/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangeStateAdvancesDeclaration(t *testing.T) {
	h, store := newTestHandler()
	d := flightdecl.New(`{"type":"Polygon"}`, "45.0,7.0,45.1,7.1", "Test Operator", time.Now(), time.Now().Add(time.Hour), flightdecl.OperationVLOS)
	store.decls[d.ID] = d

	body, err := json.Marshal(changeStateRequest{Event: flightstate.EventDSSAccepts})
	require.NoError(t, err)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/flight_declarations/"+d.ID+"/state", bytes.NewReader(body)), "id", d.ID)
	rec := httptest.NewRecorder()

	h.ChangeState(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, flightstate.Accepted, store.decls[d.ID].State)
}

func TestChangeStateRejectsInvalidTransition(t *testing.T) {
	h, store := newTestHandler()
	d := flightdecl.New(`{"type":"Polygon"}`, "45.0,7.0,45.1,7.1", "Test Operator", time.Now(), time.Now().Add(time.Hour), flightdecl.OperationVLOS)
	store.decls[d.ID] = d

	body, err := json.Marshal(changeStateRequest{Event: flightstate.EventOperatorActivates})
	require.NoError(t, err)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/flight_declarations/"+d.ID+"/state", bytes.NewReader(body)), "id", d.ID)
	rec := httptest.NewRecorder()

	h.ChangeState(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
