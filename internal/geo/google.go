// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/price-scout/internal/httputil"
	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultMapsBaseURL is the Google Maps web services root.
const DefaultMapsBaseURL = "https://maps.googleapis.com/maps/api"

// GoogleGeocoder resolves postal codes with the Google Geocoding API.
type GoogleGeocoder struct {
	Client *http.Client
	cfg    types.MapsConfig
}

// NewGoogleGeocoder builds a geocoder from the maps configuration.
func NewGoogleGeocoder(client *http.Client, cfg types.MapsConfig) *GoogleGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMapsBaseURL
	}
	return &GoogleGeocoder{Client: client, cfg: cfg}
}

// Configured reports whether an API key is set.
func (g *GoogleGeocoder) Configured() bool { return g.cfg.APIKey != "" }

// Geocode returns the first result's location. A non-OK status, including
// ZERO_RESULTS, is an error.
func (g *GoogleGeocoder) Geocode(ctx context.Context, postalCode string) (types.Coordinates, error) {
	if !g.Configured() {
		return types.Coordinates{}, fmt.Errorf("maps API key is not configured")
	}

	params := url.Values{
		"address": {postalCode},
		"key":     {g.cfg.APIKey},
	}
	reqURL := strings.TrimSuffix(g.cfg.BaseURL, "/") + "/geocode/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("creating request: %w", err)
	}
	if g.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", g.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, g.Client, req, g.cfg.MaxRetries)
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("geocoding API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Coordinates{}, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var gr geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return types.Coordinates{}, fmt.Errorf("parsing geocoding response: %w", err)
	}

	if gr.Status != "OK" || len(gr.Results) == 0 {
		if gr.ErrorMessage != "" {
			return types.Coordinates{}, fmt.Errorf("geocoding status %s: %s", gr.Status, gr.ErrorMessage)
		}
		return types.Coordinates{}, fmt.Errorf("geocoding status %s", gr.Status)
	}

	loc := gr.Results[0].Geometry.Location
	return types.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Geocoding API JSON structures.
type geocodeResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
