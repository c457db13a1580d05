package dssclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/kvstore/memory"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

func tokenServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Credentials{AccessToken: "test-token", ExpiresIn: 3600})
	}))
}

func TestGetCachedCredentialsFetchesAndCaches(t *testing.T) {
	auth := tokenServer()
	defer auth.Close()

	cfg := Config{AuthURL: auth.URL, AuthTokenEndpoint: "/token", SelfAudience: "self"}
	c := New(cfg, memory.New(), "https://self.example", nil)

	creds, err := c.GetCachedCredentials(context.Background(), "localhost", TokenTypeSCD)
	require.NoError(t, err)
	assert.Equal(t, "test-token", creds.AccessToken)

	// Second call should hit the cache, not the auth server again.
	creds2, err := c.GetCachedCredentials(context.Background(), "localhost", TokenTypeSCD)
	require.NoError(t, err)
	assert.Equal(t, creds.AccessToken, creds2.AccessToken)
}

func TestSubmitOperationalIntentFiltersSelfFromSubscribers(t *testing.T) {
	auth := tokenServer()
	defer auth.Close()

	dss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := operationalIntentResponse{
			OperationalIntentReference: opint.Reference{ID: "opint-1", OVN: "ovn-1"},
			Subscribers: []opint.Subscriber{
				{USSBaseURL: "https://self.example"},
				{USSBaseURL: "https://peer.example"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer dss.Close()

	cfg := Config{BaseURL: dss.URL, AuthURL: auth.URL, AuthTokenEndpoint: "/token", SelfAudience: "self"}
	c := New(cfg, memory.New(), "https://self.example", nil)

	result, err := c.SubmitOperationalIntent(context.Background(), "localhost", []opint.Volume{{}}, nil, 0, "Accepted")
	require.NoError(t, err)
	assert.Equal(t, "opint-1", result.Reference.ID)
	assert.Len(t, result.Subscribers, 1)
	assert.Equal(t, "https://peer.example", result.Subscribers[0].USSBaseURL)
}

func TestUpdateOperationalIntentRequiresOVN(t *testing.T) {
	c := New(Config{}, memory.New(), "", nil)
	_, err := c.UpdateOperationalIntent(context.Background(), "localhost", "opint-1", nil, nil, "", "Activated")
	require.Error(t, err)
	assert.True(t, blendererrors.Is(err, blendererrors.ErrInvalidArgument))
}

func TestCallOperationalIntentEndpointMapsConflictToDSSRejected(t *testing.T) {
	auth := tokenServer()
	defer auth.Close()

	dss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer dss.Close()

	cfg := Config{BaseURL: dss.URL, AuthURL: auth.URL, AuthTokenEndpoint: "/token", SelfAudience: "self"}
	c := New(cfg, memory.New(), "https://self.example", nil)

	_, err := c.UpdateOperationalIntent(context.Background(), "localhost", "opint-1", nil, nil, "ovn-1", "Activated")
	require.Error(t, err)
	assert.True(t, blendererrors.Is(err, blendererrors.ErrDSSRejected))
}

func TestGetOperationalIntentDetailsReturnsNotFound(t *testing.T) {
	dss := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer dss.Close()

	cfg := Config{BaseURL: dss.URL}
	c := New(cfg, memory.New(), "", nil)

	_, err := c.GetOperationalIntentDetails(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, blendererrors.Is(err, blendererrors.ErrNotFound))
}

func TestNotifyPeerUSSReturnsErrorOnRejection(t *testing.T) {
	auth := tokenServer()
	defer auth.Close()

	peer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer peer.Close()

	cfg := Config{AuthURL: auth.URL, AuthTokenEndpoint: "/token", NotifyTimeout: time.Second}
	c := New(cfg, memory.New(), "", nil)

	err := c.NotifyPeerUSS(context.Background(), opint.Subscriber{USSBaseURL: peer.URL}, NotificationPayload{})
	assert.Error(t, err)
}
