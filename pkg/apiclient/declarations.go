package apiclient

import "time"

// Declaration mirrors the wire shape of pkg/flightdecl.Declaration as
// returned by the operator API; it is a client-side copy so apiclient
// never imports the server's internal packages.
type Declaration struct {
	ID                       string    `json:"id"`
	OperationalIntentRef     string    `json:"operational_intent_ref,omitempty"`
	OVN                      string    `json:"ovn,omitempty"`
	FlightDeclarationGeoJSON string    `json:"flight_declaration_geojson"`
	TypeOfOperation          int       `json:"type_of_operation"`
	Bounds                   string    `json:"bounds"`
	OriginatingParty         string    `json:"originating_party"`
	SubmittedBy              string    `json:"submitted_by,omitempty"`
	StartDatetime            time.Time `json:"start_datetime"`
	EndDatetime              time.Time `json:"end_datetime"`
	State                    int       `json:"state"`
	IsApproved               bool      `json:"is_approved"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// CreateDeclarationRequest is the request body for submitting a declaration.
type CreateDeclarationRequest struct {
	FlightDeclarationGeoJSON string    `json:"flight_declaration_geojson"`
	Bounds                   string    `json:"bounds"`
	OriginatingParty         string    `json:"originating_party"`
	TypeOfOperation          int       `json:"type_of_operation"`
	StartDatetime            time.Time `json:"start_datetime"`
	EndDatetime              time.Time `json:"end_datetime"`
}

// ChangeStateRequest submits an OperationEvent to a declaration.
type ChangeStateRequest struct {
	Event string `json:"event"`
}

// CreateDeclaration submits a new flight declaration.
func (c *Client) CreateDeclaration(req *CreateDeclarationRequest) (*Declaration, error) {
	return createResource[Declaration](c, "/api/v1/flight_declarations", req)
}

// ListDeclarations returns every flight declaration known to the engine.
func (c *Client) ListDeclarations() ([]Declaration, error) {
	return listResources[Declaration](c, "/api/v1/flight_declarations")
}

// GetDeclaration fetches one declaration by id.
func (c *Client) GetDeclaration(id string) (*Declaration, error) {
	return getResource[Declaration](c, resourcePath("/api/v1/flight_declarations/%s", id))
}

// DeleteDeclaration removes a declaration.
func (c *Client) DeleteDeclaration(id string) error {
	return c.delete(resourcePath("/api/v1/flight_declarations/%s", id))
}

// ChangeState submits event against the declaration identified by id.
func (c *Client) ChangeState(id, event string) (*Declaration, error) {
	return updateResource[Declaration](c, resourcePath("/api/v1/flight_declarations/%s/state", id), &ChangeStateRequest{Event: event})
}
