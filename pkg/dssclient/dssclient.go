// Package dssclient implements component D: authenticated calls to the
// Discovery & Synchronization Service for operational-intent CRUD, plus
// peer-USS notification and a TTL-backed token cache. Grounded on
// original_source/operation_intent/helper.py, uss_operations/views.py, and
// auth_helper/dss_auth_helper.py.
package dssclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/flightblender/coordination-engine/pkg/blendererrors"
	"github.com/flightblender/coordination-engine/pkg/kvstore"
	"github.com/flightblender/coordination-engine/pkg/opint"
)

// TokenType distinguishes the OAuth scope requested: remote-ID read/write
// vs. strategic coordination.
type TokenType string

const (
	TokenTypeRID TokenType = "rid"
	TokenTypeSCD TokenType = "scd"
)

// tokenMinRemaining is the minimum remaining lifetime a cached credential
// must have to be reused, matching the source's 58-minute-of-60 refresh
// window collapsed to the spec's "≥ 2 min" invariant (spec.md §3).
const tokenMinRemaining = 2 * time.Minute

// Config configures a Client.
type Config struct {
	BaseURL           string
	AuthURL           string
	AuthTokenEndpoint string
	ClientID          string
	ClientSecret      string
	SelfAudience      string
	SubmitTimeout     time.Duration
	NotifyTimeout     time.Duration
	TokenTimeout      time.Duration
}

// Client calls the DSS's operational-intent-reference API and notifies peer
// USS instances of changes.
type Client struct {
	cfg         Config
	http        *http.Client
	tokenCache  kvstore.Store
	selfBaseURL string
}

// New creates a Client. tokenCache backs GetCachedCredentials; httpClient
// may be nil to use http.DefaultClient.
func New(cfg Config, tokenCache kvstore.Store, selfBaseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient, tokenCache: tokenCache, selfBaseURL: selfBaseURL}
}

// Credentials is a cached OAuth2 access token.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int       `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (c Credentials) expiresAt() time.Time {
	return c.IssuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

func tokenCacheKey(audience string, tokenType TokenType) string {
	suffix := "_auth_scd_token"
	if tokenType == TokenTypeRID {
		suffix = "_auth_rid_token"
	}
	return audience + suffix
}

func scopeFor(tokenType TokenType) string {
	if tokenType == TokenTypeRID {
		return "dss.read.identification_service_areas dss.write.identification_service_areas"
	}
	return "utm.strategic_coordination"
}

// GetCachedCredentials returns a token for audience/tokenType with at least
// tokenMinRemaining left on its lifetime, fetching and caching a fresh one
// otherwise.
func (c *Client) GetCachedCredentials(ctx context.Context, audience string, tokenType TokenType) (*Credentials, error) {
	key := tokenCacheKey(audience, tokenType)

	if data, err := c.tokenCache.Get(ctx, key); err == nil {
		var cached Credentials
		if json.Unmarshal(data, &cached) == nil {
			if time.Until(cached.expiresAt()) >= tokenMinRemaining {
				return &cached, nil
			}
		}
	}

	creds, err := c.fetchCredentials(ctx, audience, tokenType)
	if err != nil {
		return nil, err
	}
	creds.IssuedAt = time.Now()

	data, err := json.Marshal(creds)
	if err == nil {
		ttl := time.Duration(creds.ExpiresIn)*time.Second - tokenMinRemaining
		if ttl > 0 {
			_ = c.tokenCache.SetWithTTL(ctx, key, data, ttl)
		}
	}
	return creds, nil
}

func (c *Client) fetchCredentials(ctx context.Context, audience string, tokenType TokenType) (*Credentials, error) {
	timeout := c.cfg.TokenTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := map[string]string{
		"grant_type": "client_credentials",
		"scope":      scopeFor(tokenType),
	}
	if audience == "localhost" || audience == "host.docker.internal" {
		payload["intended_audience"] = c.cfg.SelfAudience
		payload["issuer"] = audience
	} else {
		payload["client_id"] = c.cfg.ClientID
		payload["client_secret"] = c.cfg.ClientSecret
		payload["audience"] = audience
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL+c.cfg.AuthTokenEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	q := req.URL.Query()
	for k, v := range payload {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrDSSUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrAuthRequired, Message: fmt.Sprintf("token endpoint returned %d", resp.StatusCode)}
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	return &creds, nil
}

// SubmitResult is the outcome of submitting or updating an operational
// intent with the DSS.
type SubmitResult struct {
	Reference   opint.Reference
	Subscribers []opint.Subscriber
}

type operationalIntentRequest struct {
	ExtentsVolumes    []opint.Volume `json:"volumes"`
	OffNominalVolumes []opint.Volume `json:"off_nominal_volumes,omitempty"`
	Priority          int            `json:"priority"`
	State             string         `json:"state"`
	OldOVN            string         `json:"key,omitempty"`
}

type operationalIntentResponse struct {
	OperationalIntentReference opint.Reference    `json:"operational_intent_reference"`
	Subscribers                []opint.Subscriber `json:"subscribers"`
}

// SubmitOperationalIntent creates a new operational intent with the DSS.
func (c *Client) SubmitOperationalIntent(ctx context.Context, audience string, volumes, offNominal []opint.Volume, priority int, state string) (*SubmitResult, error) {
	body := operationalIntentRequest{ExtentsVolumes: volumes, OffNominalVolumes: offNominal, Priority: priority, State: state}
	return c.callOperationalIntentEndpoint(ctx, http.MethodPut, "/dss/v1/operational_intent_references", audience, body)
}

// UpdateOperationalIntent updates an existing operational intent, carrying
// the current OVN. Omitting the OVN yields ErrInvalidArgument without calling
// the DSS; a stale OVN yields ErrDSSRejected from the DSS's 409.
func (c *Client) UpdateOperationalIntent(ctx context.Context, audience, opintID string, volumes, offNominal []opint.Volume, ovn, state string) (*SubmitResult, error) {
	if ovn == "" {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrInvalidArgument, Message: "update requires current OVN"}
	}
	body := operationalIntentRequest{ExtentsVolumes: volumes, OffNominalVolumes: offNominal, State: state, OldOVN: ovn}
	return c.callOperationalIntentEndpoint(ctx, http.MethodPut, "/dss/v1/operational_intent_references/"+opintID, audience, body)
}

func (c *Client) callOperationalIntentEndpoint(ctx context.Context, method, path, audience string, body operationalIntentRequest) (*SubmitResult, error) {
	timeout := c.cfg.SubmitTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	creds, err := c.GetCachedCredentials(ctx, audience, TokenTypeSCD)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling operational intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building DSS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrDSSUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrDSSRejected, Message: "stale OVN or airspace-key mismatch"}
	case resp.StatusCode >= 500:
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrDSSUnavailable, Message: fmt.Sprintf("DSS returned %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrInvalidArgument, Message: fmt.Sprintf("DSS rejected request: %d: %s", resp.StatusCode, string(respBody))}
	}

	var parsed operationalIntentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding DSS response: %w", err)
	}

	subscribers := make([]opint.Subscriber, 0, len(parsed.Subscribers))
	for _, s := range parsed.Subscribers {
		if s.USSBaseURL == c.selfBaseURL {
			continue // never notify ourselves
		}
		subscribers = append(subscribers, s)
	}

	return &SubmitResult{Reference: parsed.OperationalIntentReference, Subscribers: subscribers}, nil
}

// NotificationPayload is what peer USS instances receive when an
// operational intent changes.
type NotificationPayload struct {
	Reference opint.Reference `json:"operational_intent_reference"`
	Details   struct {
		Volumes           []opint.Volume `json:"volumes"`
		Priority          int            `json:"priority"`
		OffNominalVolumes []opint.Volume `json:"off_nominal_volumes"`
	} `json:"operational_intent_details"`
}

// NotifyPeerUSS pushes a best-effort notification to one subscriber. It
// never returns an error that should block state progression; callers log
// the error and continue.
func (c *Client) NotifyPeerUSS(ctx context.Context, subscriber opint.Subscriber, payload NotificationPayload) error {
	timeout := c.cfg.NotifyTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	creds, err := c.GetCachedCredentials(ctx, subscriber.USSBaseURL, TokenTypeSCD)
	if err != nil {
		return fmt.Errorf("fetching peer USS credentials: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling notification payload: %w", err)
	}

	url := subscriber.USSBaseURL + "/uss/v1/operational_intents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building peer notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notifying peer USS %s: %w", subscriber.USSBaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("peer USS %s rejected notification: %d", subscriber.USSBaseURL, resp.StatusCode)
	}
	return nil
}

// GetOperationalIntentDetails calls GET /uss/v1/operational_intents/{id} on
// the configured BaseURL.
func (c *Client) GetOperationalIntentDetails(ctx context.Context, opintID string) (*NotificationPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/uss/v1/operational_intents/"+opintID, nil)
	if err != nil {
		return nil, fmt.Errorf("building details request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrDSSUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrNotFound, Message: "operational intent not found"}
	}
	if resp.StatusCode >= 400 {
		return nil, &blendererrors.CoordinationError{Code: blendererrors.ErrUnavailable, Message: fmt.Sprintf("peer USS returned %d", resp.StatusCode)}
	}

	var payload NotificationPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding operational intent details: %w", err)
	}
	return &payload, nil
}
