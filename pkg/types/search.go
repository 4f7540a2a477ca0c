// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the price-scout pipeline:
// location inputs, discovered candidate locations, priced records and the
// grouped, displayable results produced by a search.
package types

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// LocationHint carries every location source a caller supplied for one
// search. Any combination may be set; the resolver picks exactly one.
type LocationHint struct {
	// ExplicitPoint is a point the user chose, e.g. on a map.
	ExplicitPoint *Coordinates `json:"explicit_point,omitempty" yaml:"explicit_point,omitempty"`

	// DevicePoint is the device-reported position.
	DevicePoint *Coordinates `json:"device_point,omitempty" yaml:"device_point,omitempty"`

	// PostalCode is a 5-digit US ZIP code, geocoded when no point is set.
	PostalCode string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
}

// CandidateLocation is a retail location returned by place discovery. It
// carries no price data.
type CandidateLocation struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// Location is the place's own position when the discovery service
	// reports one.
	Location *Coordinates `json:"location,omitempty" yaml:"location,omitempty"`
}

// PriceRecord is one priced item at one location. A record only exists when
// the price was parsed as a number.
type PriceRecord struct {
	ItemName        string  `json:"item_name" yaml:"item_name"`
	LocationName    string  `json:"location_name" yaml:"location_name"`
	LocationAddress string  `json:"location_address,omitempty" yaml:"location_address,omitempty"`
	Price           float64 `json:"price" yaml:"price"`
	Currency        string  `json:"currency" yaml:"currency"`
	ProductURL      string  `json:"product_url,omitempty" yaml:"product_url,omitempty"`
	ImageURL        string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	LastUpdated     string  `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	Notes           string  `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Location is copied from the originating candidate when known.
	Location *Coordinates `json:"location,omitempty" yaml:"location,omitempty"`
}

// EnrichedRecord is a PriceRecord plus an optional synthesized image.
type EnrichedRecord struct {
	PriceRecord `yaml:",inline"`

	// GeneratedImage is a data URI; empty when synthesis was skipped or failed.
	GeneratedImage string `json:"generated_image,omitempty" yaml:"generated_image,omitempty"`
}

// DisplayItem is an EnrichedRecord with the identity assigned at
// aggregation time. ID is the only key used for save and remove.
type DisplayItem struct {
	EnrichedRecord `yaml:",inline"`

	ID string `json:"id" yaml:"id"`
}

// LocationGroup holds every item found at one location name, cheapest first.
type LocationGroup struct {
	LocationName string `json:"location_name" yaml:"location_name"`

	// RepresentativeAddress is the longest address seen among the items.
	RepresentativeAddress string `json:"representative_address,omitempty" yaml:"representative_address,omitempty"`

	Items []DisplayItem `json:"items" yaml:"items"`
}

// Citation is a web source reported by an upstream lookup.
type Citation struct {
	URI   string `json:"uri" yaml:"uri"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}
