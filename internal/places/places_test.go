// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/pkg/types"
)

const sampleNearbyJSON = `{
  "status": "OK",
  "results": [
    {
      "place_id": "p1",
      "name": "Acme Market",
      "vicinity": "1 Main St",
      "formatted_address": "1 Main St, Springfield, NJ 07081, USA",
      "geometry": {"location": {"lat": 40.70, "lng": -74.01}}
    },
    {
      "place_id": "p2",
      "name": "Corner Grocer",
      "vicinity": "22 Elm Ave"
    },
    {
      "place_id": "p3",
      "name": "",
      "vicinity": "nameless"
    },
    {
      "place_id": "p4",
      "name": "Bare Store"
    }
  ],
  "next_page_token": "ignored"
}`

func newNearbyServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(ts *httptest.Server) *Client {
	return NewClient(ts.Client(), types.MapsConfig{APIKey: "test-key", BaseURL: ts.URL})
}

func TestFindNearby(t *testing.T) {
	var q url.Values
	ts := newNearbyServer(t, http.StatusOK, sampleNearbyJSON, &q)

	got, err := testClient(ts).FindNearby(context.Background(), types.Coordinates{Lat: 40.71, Lng: -74}, 5)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "Acme Market", got[0].Name)
	assert.Equal(t, "1 Main St, Springfield, NJ 07081, USA", got[0].Address, "formatted_address preferred")
	require.NotNil(t, got[0].Location)
	assert.Equal(t, 40.70, got[0].Location.Lat)

	assert.Equal(t, "22 Elm Ave", got[1].Address, "vicinity fallback")
	assert.Nil(t, got[1].Location)

	assert.Equal(t, "Bare Store", got[2].Name)
	assert.Empty(t, got[2].Address)

	assert.Equal(t, "40.71,-74", q.Get("location"))
	assert.Equal(t, "8046.7", q.Get("radius"))
	assert.Equal(t, DefaultPlaceTypes, q.Get("type"))
	assert.Equal(t, "test-key", q.Get("key"))
}

func TestFindNearbyZeroResultsIsNotAnError(t *testing.T) {
	ts := newNearbyServer(t, http.StatusOK, `{"status":"ZERO_RESULTS","results":[]}`, nil)

	got, err := testClient(ts).FindNearby(context.Background(), types.Coordinates{}, 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindNearbyFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"denied", http.StatusOK, `{"status":"REQUEST_DENIED","error_message":"key expired"}`, "REQUEST_DENIED: key expired"},
		{"over limit without message", http.StatusOK, `{"status":"OVER_QUERY_LIMIT"}`, "OVER_QUERY_LIMIT"},
		{"http error", http.StatusBadGateway, ``, "HTTP 502"},
		{"malformed", http.StatusOK, `[`, "parsing places response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newNearbyServer(t, tt.status, tt.body, nil)
			_, err := testClient(ts).FindNearby(context.Background(), types.Coordinates{}, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDiscoveryFailed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindNearbyCustomTypes(t *testing.T) {
	var q url.Values
	ts := newNearbyServer(t, http.StatusOK, `{"status":"ZERO_RESULTS"}`, &q)
	c := NewClient(ts.Client(), types.MapsConfig{APIKey: "k", BaseURL: ts.URL + "/", PlaceTypes: "pharmacy"})

	_, err := c.FindNearby(context.Background(), types.Coordinates{Lat: 1, Lng: 2}, 2)
	require.NoError(t, err)
	assert.Equal(t, "pharmacy", q.Get("type"))
}

func TestFindNearbyRequiresKey(t *testing.T) {
	c := NewClient(http.DefaultClient, types.MapsConfig{})
	assert.False(t, c.Configured())
	_, err := c.FindNearby(context.Background(), types.Coordinates{}, 1)
	assert.Error(t, err)
}
