package oura

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchRangeFollowsPagination(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		if r.URL.Query().Get("next_token") == "" {
			fmt.Fprint(w, `{"data":[{"bpm":61}],"next_token":"page-2"}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"bpm":54},{"bpm":49}],"next_token":null}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	payload, err := client.FetchRange(context.Background(), "tok-1", Endpoint{Name: "heartrate", Path: "/v2/usercollection/heartrate", UseDatetime: true}, "2024-03-01", "2024-03-02")
	require.NoError(t, err)
	require.Len(t, requests, 2)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	// Pages concatenate in arrival order.
	require.Len(t, envelope.Data, 3)
	require.JSONEq(t, `{"bpm":61}`, string(envelope.Data[0]))
	require.JSONEq(t, `{"bpm":49}`, string(envelope.Data[2]))
}

func TestFetchRangeQueryConventions(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())

	// Calendar-date endpoints use start_date/end_date.
	_, err := client.FetchRange(context.Background(), "tok", Endpoint{Name: "daily_sleep", Path: "/v2/usercollection/sleep"}, "2024-03-01", "2024-03-05")
	require.NoError(t, err)
	require.Equal(t, []string{"2024-03-01"}, query["start_date"])
	require.Equal(t, []string{"2024-03-05"}, query["end_date"])

	// The heartrate endpoint takes full datetime bounds.
	_, err = client.FetchRange(context.Background(), "tok", Endpoint{Name: "heartrate", Path: "/v2/usercollection/heartrate", UseDatetime: true}, "2024-03-01", "2024-03-05")
	require.NoError(t, err)
	require.Equal(t, []string{"2024-03-01T00:00:00+00:00"}, query["start_datetime"])
	require.Equal(t, []string{"2024-03-05T23:59:59+00:00"}, query["end_datetime"])
}

func TestFetchRangeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.FetchRange(context.Background(), "expired", Endpoints()[0], "2024-03-01", "2024-03-02")
	require.ErrorIs(t, err, ErrAuthorizationExpired)
}

func TestFetchRangeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream blew up", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.FetchRange(context.Background(), "tok", Endpoints()[2], "2024-03-01", "2024-03-02")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.Status)
	require.Equal(t, "daily_activity", statusErr.Endpoint)
}

func TestFetchRangeRequiresToken(t *testing.T) {
	client := NewClient("", nil)
	_, err := client.FetchRange(context.Background(), "", Endpoints()[0], "2024-03-01", "2024-03-02")
	require.ErrorIs(t, err, ErrNoToken)
}
