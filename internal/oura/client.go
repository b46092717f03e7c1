// Package oura is a thin client for the Oura API v2 usercollection
// endpoints. It absorbs the provider's pagination and per-endpoint query
// conventions so callers see one data array per request.
package oura

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production Oura API host.
const DefaultBaseURL = "https://api.ouraring.com"

// ErrAuthorizationExpired signals a 401 from the provider: the bearer
// token is no longer valid and the whole sync pass must stop so the caller
// can prompt re-authorization.
var ErrAuthorizationExpired = errors.New("provider authorization expired")

// ErrNoToken is returned when a fetch is attempted without a bearer token.
var ErrNoToken = errors.New("no provider token")

// StatusError is a non-2xx, non-401 provider response. It is per-endpoint:
// the coordinator records it and moves on.
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oura %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Endpoint describes one usercollection endpoint. The heartrate endpoint
// takes full datetime bounds; every other endpoint takes calendar dates.
type Endpoint struct {
	Name        string
	Path        string
	UseDatetime bool
}

// Endpoints returns the collection endpoints a sync pass walks, in order.
func Endpoints() []Endpoint {
	return []Endpoint{
		{Name: "daily_sleep", Path: "/v2/usercollection/sleep"},
		{Name: "heartrate", Path: "/v2/usercollection/heartrate", UseDatetime: true},
		{Name: "daily_activity", Path: "/v2/usercollection/daily_activity"},
		{Name: "daily_stress", Path: "/v2/usercollection/daily_stress"},
	}
}

// page mirrors the provider's response envelope.
type page struct {
	Data      []json.RawMessage `json:"data"`
	NextToken string            `json:"next_token"`
}

// Client talks to the provider API with a caller-supplied bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. Empty baseURL falls back to production;
// a nil httpClient gets a conservative timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// FetchRange pulls every page of one endpoint for [startDate, endDate]
// (calendar dates, inclusive) and returns the concatenated data array
// re-wrapped in a single envelope for the adapters.
func (c *Client) FetchRange(ctx context.Context, token string, ep Endpoint, startDate, endDate string) ([]byte, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var all []json.RawMessage
	nextToken := ""
	for {
		params := url.Values{}
		if ep.UseDatetime {
			params.Set("start_datetime", startDate+"T00:00:00+00:00")
			params.Set("end_datetime", endDate+"T23:59:59+00:00")
		} else {
			params.Set("start_date", startDate)
			params.Set("end_date", endDate)
		}
		if nextToken != "" {
			params.Set("next_token", nextToken)
		}

		p, err := c.fetchPage(ctx, token, ep, params)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Data...)
		if p.NextToken == "" {
			break
		}
		nextToken = p.NextToken
	}

	return json.Marshal(struct {
		Data []json.RawMessage `json:"data"`
	}{Data: all})
}

func (c *Client) fetchPage(ctx context.Context, token string, ep Endpoint, params url.Values) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ep.Path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oura %s: %w", ep.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("oura %s: %w", ep.Name, ErrAuthorizationExpired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Endpoint: ep.Name, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("oura %s: decode page: %w", ep.Name, err)
	}
	return &p, nil
}
