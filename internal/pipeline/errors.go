// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"

	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/places"
)

// Input and credential sentinels. All are reported inside a ValidationError.
var (
	ErrEmptyQuery         = errors.New("please enter an item name")
	ErrInvalidPostalCode  = geo.ErrInvalidPostalCode
	ErrNoLocationProvided = geo.ErrNoLocationProvided
	ErrMissingCredential  = errors.New("API key is not configured")
)

// Upstream sentinels, reported inside ResolutionError and DiscoveryError.
var (
	ErrGeocodingFailed = geo.ErrGeocodingFailed
	ErrDiscoveryFailed = places.ErrDiscoveryFailed
)

// ErrSuperseded is returned by a search that finished after a newer search
// started. Its results were discarded.
var ErrSuperseded = errors.New("search superseded by a newer search")

// ValidationError is bad input detected before any network call.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ResolutionError is a failure to turn the location hint into coordinates.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string { return "could not determine search location: " + e.Err.Error() }
func (e *ResolutionError) Unwrap() error { return e.Err }

// DiscoveryError is a failure of the nearby place search.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string { return "could not find nearby stores: " + e.Err.Error() }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// classifyResolve maps a resolver error onto the pipeline taxonomy.
func classifyResolve(err error) error {
	if errors.Is(err, geo.ErrInvalidPostalCode) || errors.Is(err, geo.ErrNoLocationProvided) {
		return &ValidationError{Err: err}
	}
	return &ResolutionError{Err: err}
}
