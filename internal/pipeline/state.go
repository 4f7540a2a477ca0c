// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pdiddy/price-scout/pkg/types"
)

// State is a step of the search state machine.
type State int

const (
	Idle State = iota
	ResolvingLocation
	DiscoveringPlaces
	FetchingPrices
	EnrichingImages
	Aggregating
	Done
	Failed
	Empty
)

var stateNames = [...]string{
	Idle:              "idle",
	ResolvingLocation: "resolving_location",
	DiscoveringPlaces: "discovering_places",
	FetchingPrices:    "fetching_prices",
	EnrichingImages:   "enriching_images",
	Aggregating:       "aggregating",
	Done:              "done",
	Failed:            "failed",
	Empty:             "empty",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s is absorbing.
func (s State) Terminal() bool {
	return s == Done || s == Failed || s == Empty
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Empty-result reasons.
const (
	ReasonNoStores      = "no stores found"
	ReasonNoPricedItems = "no priced items"
)

// Request is one search invocation.
type Request struct {
	Query         string             `json:"query" yaml:"query"`
	PostalCode    string             `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	RadiusMiles   float64            `json:"radius_miles" yaml:"radius_miles"`
	ExplicitPoint *types.Coordinates `json:"explicit_point,omitempty" yaml:"explicit_point,omitempty"`
	DevicePoint   *types.Coordinates `json:"device_point,omitempty" yaml:"device_point,omitempty"`
}

// Hint returns the location part of the request.
func (r Request) Hint() types.LocationHint {
	return types.LocationHint{
		ExplicitPoint: r.ExplicitPoint,
		DevicePoint:   r.DevicePoint,
		PostalCode:    r.PostalCode,
	}
}

// Snapshot is the observable state of a search.
type Snapshot struct {
	RunID       string             `json:"run_id,omitempty"`
	State       State              `json:"state"`
	Progress    string             `json:"progress,omitempty"`
	Query       string             `json:"query,omitempty"`
	RadiusMiles float64            `json:"radius_miles,omitempty"`
	Descriptor  string             `json:"descriptor,omitempty"`
	Center      *types.Coordinates `json:"center,omitempty"`
	Source      string             `json:"location_source,omitempty"`
	// Error is set in the Failed state, Info in the Empty state.
	Error      string                `json:"error,omitempty"`
	Info       string                `json:"info,omitempty"`
	Reason     string                `json:"reason,omitempty"`
	Candidates int                   `json:"candidates,omitempty"`
	Groups     []types.LocationGroup `json:"groups,omitempty"`
	Citations  []types.Citation      `json:"citations,omitempty"`
	StartedAt  time.Time             `json:"started_at,omitzero"`
	FinishedAt time.Time             `json:"finished_at,omitzero"`
}

// ItemCount is the number of priced items across all groups.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Items)
	}
	return n
}

// locationDescriptor renders the search center, plus the postal code it was
// derived from when one was given.
func locationDescriptor(center types.Coordinates, postalCode string) string {
	d := fmt.Sprintf("near (Lat: %.2f, Lng: %.2f)", center.Lat, center.Lng)
	if postalCode != "" {
		d += fmt.Sprintf(" (orig. ZIP: %s)", postalCode)
	}
	return d
}

// searchDescriptor renders the full human-readable description of a run.
func searchDescriptor(query, location string, radiusMiles float64) string {
	return fmt.Sprintf("\"%s\" %s (radius: %s miles)", query, location, strconv.FormatFloat(radiusMiles, 'f', -1, 64))
}
