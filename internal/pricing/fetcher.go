// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pricing asks an AI-backed lookup service for the price of an item
// at one candidate location and decodes its free-text answer.
package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/internal/metrics"
	"github.com/pdiddy/price-scout/pkg/types"
)

// Backend answers one price question. GeminiBackend is the production
// implementation; tests supply fakes.
type Backend interface {
	Lookup(ctx context.Context, lr LookupRequest) (LookupResponse, error)
}

// Cache stores encoded lookups by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Fetcher turns one (query, candidate) pair into at most one PriceRecord.
type Fetcher struct {
	Backend Backend
	Cache   Cache
	Metrics *metrics.Metrics
}

// NewFetcher returns a Fetcher with no cache.
func NewFetcher(b Backend) *Fetcher {
	return &Fetcher{Backend: b}
}

// Configured reports whether the backend has credentials. Backends that do
// not report it are assumed ready.
func (f *Fetcher) Configured() bool {
	c, ok := f.Backend.(interface{ Configured() bool })
	return !ok || c.Configured()
}

// FetchPrice never returns an error. Transport and API failures yield no
// record and no citations. A "not found" or unusable answer yields no record
// but keeps the citations the service reported, since they still describe
// what was consulted. Location fields missing from the answer are filled
// from the candidate.
func (f *Fetcher) FetchPrice(ctx context.Context, query string, cand types.CandidateLocation, radiusMiles float64) (*types.PriceRecord, []types.Citation) {
	lr := LookupRequest{
		Query:        query,
		StoreName:    cand.Name,
		StoreAddress: cand.Address,
		RadiusMiles:  radiusMiles,
	}

	resp, ok := f.cached(ctx, lr)
	if !ok {
		var err error
		resp, err = f.Backend.Lookup(ctx, lr)
		if err != nil {
			var apiErr *gemini.APIError
			if errors.As(err, &apiErr) && apiErr.InvalidKey() {
				slog.Error("price lookup rejected the API key", "location", cand.Name, "status", apiErr.Status)
			} else {
				slog.Warn("price lookup failed", "location", cand.Name, "error", err)
			}
			f.Metrics.Upstream(metrics.ServicePrice, metrics.OutcomeError)
			return nil, nil
		}
	}

	d := Decode(resp.Text)
	switch d.Outcome {
	case Sentinel:
		slog.Debug("item not found at location", "location", cand.Name)
		f.Metrics.Upstream(metrics.ServicePrice, metrics.OutcomeNotFound)
		return nil, resp.Citations
	case Malformed:
		slog.Debug("unusable price answer", "location", cand.Name, "reason", d.Reason)
		f.Metrics.Upstream(metrics.ServicePrice, metrics.OutcomeNotFound)
		return nil, resp.Citations
	}

	if !ok {
		f.store(ctx, lr, resp)
		f.Metrics.Upstream(metrics.ServicePrice, metrics.OutcomeOK)
	}

	raw := d.Record
	rec := &types.PriceRecord{
		ItemName:        raw.FullItemName,
		LocationName:    firstNonEmpty(raw.StoreName, cand.Name),
		LocationAddress: firstNonEmpty(raw.StoreAddress, cand.Address),
		Price:           raw.Price,
		Currency:        raw.Currency,
		ProductURL:      raw.ProductURL,
		ImageURL:        raw.ImageURL,
		LastUpdated:     raw.LastUpdated,
		Notes:           raw.Notes,
		Location:        cand.Location,
	}
	return rec, resp.Citations
}

// CacheKey derives the cache key for a lookup. The radius only shapes the
// prompt's context, so it is not part of the key.
func CacheKey(lr LookupRequest) string {
	h := sha256.New()
	for _, s := range []string{lr.Query, lr.StoreName, lr.StoreAddress} {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(s))))
		h.Write([]byte{0})
	}
	return "price:" + hex.EncodeToString(h.Sum(nil))[:32]
}

func (f *Fetcher) cached(ctx context.Context, lr LookupRequest) (LookupResponse, bool) {
	if f.Cache == nil {
		return LookupResponse{}, false
	}
	data, hit, err := f.Cache.Get(ctx, CacheKey(lr))
	if err != nil {
		slog.Warn("price cache read failed", "error", err)
		return LookupResponse{}, false
	}
	if !hit {
		return LookupResponse{}, false
	}
	var resp LookupResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return LookupResponse{}, false
	}
	f.Metrics.Upstream(metrics.ServicePriceHit, metrics.OutcomeOK)
	return resp, true
}

// store caches parsed answers only; "not found" is never cached.
func (f *Fetcher) store(ctx context.Context, lr LookupRequest, resp LookupResponse) {
	if f.Cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := f.Cache.Set(ctx, CacheKey(lr), data); err != nil {
		slog.Warn("price cache write failed", "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
