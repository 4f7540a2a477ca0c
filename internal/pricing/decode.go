// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Outcome classifies the text returned by the price lookup service.
type Outcome int

const (
	// Malformed is any answer that is neither a valid record nor the sentinel.
	Malformed Outcome = iota
	// Sentinel is the literal "null" meaning not found at this location.
	Sentinel
	// Parsed is a record with an item name and a numeric price.
	Parsed
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Sentinel:
		return "sentinel"
	default:
		return "malformed"
	}
}

// sentinelToken is the exact answer the service gives when nothing is found.
const sentinelToken = "null"

// Decoded is the result of Decode. Record is only meaningful when Outcome
// is Parsed.
type Decoded struct {
	Outcome Outcome
	Record  RawRecord
	// Reason explains a Malformed outcome for logging.
	Reason string
}

// RawRecord is the upstream record before location backfill. Empty strings
// mean absent.
type RawRecord struct {
	FullItemName string
	StoreName    string
	StoreAddress string
	Price        float64
	Currency     string
	ProductURL   string
	ImageURL     string
	LastUpdated  string
	Notes        string
}

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// stripFences removes one enclosing Markdown code fence, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return text
}

// Decode classifies a free-text answer as Parsed, Sentinel or Malformed.
func Decode(text string) Decoded {
	body := stripFences(text)
	if body == "" {
		return Decoded{Outcome: Malformed, Reason: "empty answer"}
	}
	if body == sentinelToken {
		return Decoded{Outcome: Sentinel}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Decoded{Outcome: Malformed, Reason: "invalid JSON: " + err.Error()}
	}

	name, ok := fields["fullItemName"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Decoded{Outcome: Malformed, Reason: "missing fullItemName"}
	}
	price, ok := fields["price"].(float64)
	if !ok {
		return Decoded{Outcome: Malformed, Reason: "price is not a number"}
	}
	if price < 0 {
		return Decoded{Outcome: Malformed, Reason: "negative price"}
	}

	rec := RawRecord{
		FullItemName: strings.TrimSpace(name),
		StoreName:    optionalString(fields, "storeName"),
		StoreAddress: optionalString(fields, "storeAddress"),
		Price:        price,
		Currency:     optionalString(fields, "currency"),
		ProductURL:   optionalString(fields, "productUrl"),
		ImageURL:     optionalString(fields, "imageUrl"),
		LastUpdated:  optionalString(fields, "lastUpdated"),
		Notes:        optionalString(fields, "notes"),
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}
	return Decoded{Outcome: Parsed, Record: rec}
}

// optionalString returns the trimmed string field, treating non-strings,
// blanks and a literal "null" as absent.
func optionalString(fields map[string]any, key string) string {
	s, ok := fields[key].(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, sentinelToken) {
		return ""
	}
	return s
}
