package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURLIncludesLocationAndAttrs(t *testing.T) {
	c := New("https://example.test/forecast", nil)
	u, err := c.BuildURL(LocationVector{Longitude: 7.5, Latitude: 45.1, Elevation: 300}, []Attr{AttrWeatherCode, AttrTemperature2m})
	require.NoError(t, err)
	assert.Contains(t, u, "longitude=7.5")
	assert.Contains(t, u, "latitude=45.1")
	assert.Contains(t, u, "hourly=weathercode%2Ctemperature_2m")
}

func TestBuildURLRejectsUnknownAttr(t *testing.T) {
	c := New("", nil)
	_, err := c.BuildURL(LocationVector{}, []Attr{"not_a_real_attr"})
	assert.Error(t, err)
}

func TestBuildURLRejectsEmptyAttrs(t *testing.T) {
	c := New("", nil)
	_, err := c.BuildURL(LocationVector{}, nil)
	assert.Error(t, err)
}

func TestGetDataReturnsDecodedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"weathercode": []int{1, 2}})
	}))
	defer server.Close()

	c := New(server.URL, nil)
	data, err := c.GetData(context.Background(), LocationVector{Longitude: 7.5, Latitude: 45.1}, []Attr{AttrWeatherCode})
	require.NoError(t, err)
	assert.Contains(t, data, "weathercode")
}

func TestGetDataReturnsErrorOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL, nil)
	_, err := c.GetData(context.Background(), LocationVector{}, []Attr{AttrWeatherCode})
	assert.Error(t, err)
}
