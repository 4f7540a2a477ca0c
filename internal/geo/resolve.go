// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geo turns a location hint into a single coordinate pair and holds
// the distance helpers used when presenting results.
package geo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/price-scout/pkg/types"
)

var (
	// ErrInvalidPostalCode is returned for a postal code that is not five digits.
	ErrInvalidPostalCode = errors.New("postal code must be a 5-digit US ZIP code")

	// ErrNoLocationProvided is returned when the hint carries no usable source.
	ErrNoLocationProvided = errors.New("no location provided: select a point on the map, use your current location, or enter a ZIP code")

	// ErrGeocodingFailed wraps every failure to translate a postal code.
	ErrGeocodingFailed = errors.New("geocoding failed")
)

var postalCodeRe = regexp.MustCompile(`^\d{5}$`)

// Source identifies which part of a LocationHint the resolver used.
type Source int

const (
	SourceNone Source = iota
	SourceExplicitPoint
	SourceDevicePoint
	SourcePostalCode
)

func (s Source) String() string {
	switch s {
	case SourceExplicitPoint:
		return "explicit_point"
	case SourceDevicePoint:
		return "device_point"
	case SourcePostalCode:
		return "postal_code"
	default:
		return "none"
	}
}

// Geocoder translates a postal code into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, postalCode string) (types.Coordinates, error)
}

// ValidatePostalCode checks the 5-digit format after trimming. An empty code
// is valid here; absence is handled by Pick.
func ValidatePostalCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" || postalCodeRe.MatchString(code) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPostalCode, code)
}

// Pick applies the fixed precedence (explicit point, device point, postal
// code) without any network activity.
func Pick(hint types.LocationHint) (Source, error) {
	if err := ValidatePostalCode(hint.PostalCode); err != nil {
		return SourceNone, err
	}
	switch {
	case hint.ExplicitPoint != nil:
		return SourceExplicitPoint, nil
	case hint.DevicePoint != nil:
		return SourceDevicePoint, nil
	case strings.TrimSpace(hint.PostalCode) != "":
		return SourcePostalCode, nil
	default:
		return SourceNone, ErrNoLocationProvided
	}
}

// Resolver picks one location source from a hint and produces coordinates.
type Resolver struct {
	Geocoder Geocoder
}

// NewResolver returns a Resolver that geocodes postal codes with g.
func NewResolver(g Geocoder) *Resolver {
	return &Resolver{Geocoder: g}
}

// Resolve returns the coordinates for the first satisfied source. Geocoding
// failures are wrapped in ErrGeocodingFailed; there is no fallback location.
func (r *Resolver) Resolve(ctx context.Context, hint types.LocationHint) (types.Coordinates, Source, error) {
	src, err := Pick(hint)
	if err != nil {
		return types.Coordinates{}, src, err
	}

	switch src {
	case SourceExplicitPoint:
		return *hint.ExplicitPoint, src, nil
	case SourceDevicePoint:
		return *hint.DevicePoint, src, nil
	}

	code := strings.TrimSpace(hint.PostalCode)
	if r.Geocoder == nil {
		return types.Coordinates{}, src, fmt.Errorf("%w: no geocoder configured", ErrGeocodingFailed)
	}
	coords, err := r.Geocoder.Geocode(ctx, code)
	if err != nil {
		return types.Coordinates{}, src, fmt.Errorf("%w for ZIP %s: %w", ErrGeocodingFailed, code, err)
	}
	return coords, src, nil
}
