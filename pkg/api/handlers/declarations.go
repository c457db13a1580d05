package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flightblender/coordination-engine/pkg/api/middleware"
	"github.com/flightblender/coordination-engine/pkg/flightdecl"
	"github.com/flightblender/coordination-engine/pkg/flightstate"
)

// DeclarationStore is the persistence interface DeclarationHandler needs;
// satisfied by pkg/flightdecl/store.Store.
type DeclarationStore interface {
	Create(ctx context.Context, d *flightdecl.Declaration) error
	Get(ctx context.Context, id string) (*flightdecl.Declaration, error)
	List(ctx context.Context) ([]*flightdecl.Declaration, error)
	Update(ctx context.Context, d *flightdecl.Declaration) error
	Delete(ctx context.Context, id string) error
}

// EventSubmitter hands a (declaration, event) pair to the orchestrator,
// which runs the DSS/peer-USS side effects the transition implies before
// persisting the resulting state.
type EventSubmitter interface {
	Submit(ctx context.Context, declarationID string, event flightstate.Event) (*flightdecl.Declaration, error)
}

// DeclarationHandler serves the operator-facing flight declaration CRUD and
// lifecycle endpoints.
type DeclarationHandler struct {
	store     DeclarationStore
	submitter EventSubmitter
}

// NewDeclarationHandler constructs a DeclarationHandler. submitter may be
// nil during early bring-up; in that case state-change requests fail with
// 503 rather than panicking.
func NewDeclarationHandler(store DeclarationStore, submitter EventSubmitter) *DeclarationHandler {
	return &DeclarationHandler{store: store, submitter: submitter}
}

type createDeclarationRequest struct {
	FlightDeclarationGeoJSON string                   `json:"flight_declaration_geojson" validate:"required"`
	Bounds                   string                   `json:"bounds" validate:"required"`
	OriginatingParty         string                   `json:"originating_party"`
	TypeOfOperation          flightdecl.OperationType `json:"type_of_operation"`
	StartDatetime            time.Time                `json:"start_datetime" validate:"required"`
	EndDatetime              time.Time                `json:"end_datetime" validate:"required,gtfield=StartDatetime"`
}

// Create handles POST /api/v1/flight_declarations.
func (h *DeclarationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeclarationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	d := flightdecl.New(req.FlightDeclarationGeoJSON, req.Bounds, req.OriginatingParty,
		req.StartDatetime, req.EndDatetime, req.TypeOfOperation)

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		d.SubmittedBy = claims.Subject
	}

	if err := d.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Create(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// List handles GET /api/v1/flight_declarations.
func (h *DeclarationHandler) List(w http.ResponseWriter, r *http.Request) {
	decls, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decls)
}

// Get handles GET /api/v1/flight_declarations/{id}.
func (h *DeclarationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/v1/flight_declarations/{id}.
func (h *DeclarationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changeStateRequest struct {
	Event flightstate.Event `json:"event"`
}

// ChangeState handles PUT /api/v1/flight_declarations/{id}/state, the
// operator-facing entry point for every OperationEvent the coordination
// orchestrator recognizes (activate, confirm ended, declare contingent, ...).
func (h *DeclarationHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	if h.submitter == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "orchestrator not available"})
		return
	}

	id := chi.URLParam(r, "id")
	var req changeStateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	d, err := h.submitter.Submit(r.Context(), id, req.Event)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}
