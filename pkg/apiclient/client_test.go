package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	client := New("http://localhost:8080")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.baseURL)
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	client := New("http://localhost:8080")
	tokenClient := client.WithToken("test-token")

	assert.Empty(t, client.token)
	assert.Equal(t, "test-token", tokenClient.token)
	assert.Equal(t, "http://localhost:8080", tokenClient.baseURL)
}

func TestDoSendsAuthHeaderAndDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	client := New(server.URL).WithToken("test-token")

	var resp map[string]string
	require.NoError(t, client.get("/test", &resp))
	assert.Equal(t, "ok", resp["message"])
}

func TestDoReturnsAPIErrorOnErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(APIError{Code: "NOT_FOUND", Message: "declaration not found"})
	}))
	defer server.Close()

	client := New(server.URL)

	err := client.get("/test", nil)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, apiErr.IsNotFound())
}

func TestCreateDeclarationPostsAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/flight_declarations", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Declaration{ID: "decl-1", OriginatingParty: "Acme"})
	}))
	defer server.Close()

	client := New(server.URL)
	got, err := client.CreateDeclaration(&CreateDeclarationRequest{OriginatingParty: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "decl-1", got.ID)
}

func TestChangeStatePutsEventAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/flight_declarations/decl-1/state", r.URL.Path)
		var req ChangeStateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "operator_activates", req.Event)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Declaration{ID: "decl-1", State: 2})
	}))
	defer server.Close()

	client := New(server.URL)
	got, err := client.ChangeState("decl-1", "operator_activates")
	require.NoError(t, err)
	assert.Equal(t, 2, got.State)
}
