// Package weather implements a consolidated weather data client
// (SPEC_FULL §10.2), replacing the several near-duplicate MeteoApiClient
// variants found across original_source/api_clients/weather_data/ with one
// client covering their shared contract: a location vector plus a list of
// requested hourly attributes, fetched from Open-Meteo's forecast API.
// Grounded on original_source/api_clients/weather_data/meteo_client.py.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultBaseURL is Open-Meteo's public forecast endpoint, matching the
// source client's hardcoded api_base_url.
const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Attr is an hourly weather attribute the forecast API can return.
type Attr string

const (
	AttrWeatherCode   Attr = "weathercode"
	AttrTemperature2m Attr = "temperature_2m"
)

var availableAttrs = map[Attr]bool{
	AttrWeatherCode:   true,
	AttrTemperature2m: true,
}

// LocationVector is the 3D point weather is requested for.
type LocationVector struct {
	Longitude float64
	Latitude  float64
	Elevation float64
}

// Client fetches hourly weather data from Open-Meteo.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client. httpClient may be nil to use a client with a
// 10-second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// BuildURL returns the request URL for loc/attrs without performing the
// request, mirroring the source client's get_api_url.
func (c *Client) BuildURL(loc LocationVector, attrs []Attr) (string, error) {
	if err := validateAttrs(attrs); err != nil {
		return "", err
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = string(a)
	}

	q := url.Values{}
	q.Set("longitude", fmt.Sprintf("%g", loc.Longitude))
	q.Set("latitude", fmt.Sprintf("%g", loc.Latitude))
	q.Set("elevation", fmt.Sprintf("%g", loc.Elevation))
	q.Set("hourly", strings.Join(names, ","))
	return c.baseURL + "?" + q.Encode(), nil
}

func validateAttrs(attrs []Attr) error {
	if len(attrs) == 0 {
		return fmt.Errorf("weather attributes are required")
	}
	for _, a := range attrs {
		if !availableAttrs[a] {
			return fmt.Errorf("invalid weather attribute: %s", a)
		}
	}
	return nil
}

// GetData fetches raw forecast JSON for loc and attrs.
func (c *Client) GetData(ctx context.Context, loc LocationVector, attrs []Attr) (map[string]any, error) {
	requestURL, err := c.BuildURL(loc, attrs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching weather data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("weather API returned %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	return data, nil
}
