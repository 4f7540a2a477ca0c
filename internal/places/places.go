// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package places discovers candidate retail locations around a point with
// the Google Places Nearby Search API. Only the first result page is read.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/httputil"
	"github.com/pdiddy/price-scout/pkg/types"
)

// ErrDiscoveryFailed wraps every transport or status failure of a search.
var ErrDiscoveryFailed = errors.New("place discovery failed")

// DefaultPlaceTypes restricts discovery to grocery retailers.
const DefaultPlaceTypes = "grocery_or_supermarket|supermarket"

// Client queries the Nearby Search endpoint.
type Client struct {
	HTTP *http.Client
	cfg  types.MapsConfig
}

// NewClient builds a discovery client from the maps configuration.
func NewClient(client *http.Client, cfg types.MapsConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = geo.DefaultMapsBaseURL
	}
	if cfg.PlaceTypes == "" {
		cfg.PlaceTypes = DefaultPlaceTypes
	}
	return &Client{HTTP: client, cfg: cfg}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// FindNearby returns the named places within radiusMiles of center. A
// ZERO_RESULTS status is a successful empty result; any other non-OK status
// or transport failure is an error wrapping ErrDiscoveryFailed.
func (c *Client) FindNearby(ctx context.Context, center types.Coordinates, radiusMiles float64) ([]types.CandidateLocation, error) {
	candidates, err := c.findNearby(ctx, center, radiusMiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscoveryFailed, err)
	}
	return candidates, nil
}

func (c *Client) findNearby(ctx context.Context, center types.Coordinates, radiusMiles float64) ([]types.CandidateLocation, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("maps API key is not configured")
	}

	params := url.Values{
		"location": {formatLatLng(center)},
		"radius":   {strconv.FormatFloat(geo.MilesToMeters(radiusMiles), 'f', -1, 64)},
		"type":     {c.cfg.PlaceTypes},
		"key":      {c.cfg.APIKey},
	}
	reqURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/place/nearbysearch/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("places API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned HTTP %d", resp.StatusCode)
	}

	var nr nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("parsing places response: %w", err)
	}

	switch nr.Status {
	case "OK", "ZERO_RESULTS":
	default:
		if nr.ErrorMessage != "" {
			return nil, fmt.Errorf("places status %s: %s", nr.Status, nr.ErrorMessage)
		}
		return nil, fmt.Errorf("places status %s", nr.Status)
	}

	candidates := make([]types.CandidateLocation, 0, len(nr.Results))
	for _, p := range nr.Results {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		cand := types.CandidateLocation{
			Name:    name,
			Address: firstNonEmpty(p.FormattedAddress, p.Vicinity),
		}
		if p.Geometry != nil {
			cand.Location = &types.Coordinates{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng}
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func formatLatLng(c types.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Nearby Search API JSON structures.
type nearbyResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	Results       []nearbyPlace `json:"results"`
	NextPageToken string        `json:"next_page_token"`
}

type nearbyPlace struct {
	PlaceID          string          `json:"place_id"`
	Name             string          `json:"name"`
	Vicinity         string          `json:"vicinity"`
	FormattedAddress string          `json:"formatted_address"`
	Geometry         *nearbyGeometry `json:"geometry"`
}

type nearbyGeometry struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}
