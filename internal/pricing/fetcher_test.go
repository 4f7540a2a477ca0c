// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	resp  LookupResponse
	err   error
	calls int
	last  LookupRequest
}

func (m *mockBackend) Lookup(_ context.Context, lr LookupRequest) (LookupResponse, error) {
	m.calls++
	m.last = lr
	return m.resp, m.err
}

// memCache is an in-memory Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c.err
}

var acme = types.CandidateLocation{
	Name:     "Acme Market",
	Address:  "1 Main St",
	Location: &types.Coordinates{Lat: 40.7, Lng: -74},
}

var sources = []types.Citation{{URI: "https://acme.example/bananas", Title: "Acme bananas"}}

// --- FetchPrice ---

func TestFetchPriceParsed(t *testing.T) {
	b := &mockBackend{resp: LookupResponse{
		Text:      `{"fullItemName":"Organic Bananas","price":3.99,"currency":"USD","notes":"per lb"}`,
		Citations: sources,
	}}

	rec, cites := NewFetcher(b).FetchPrice(context.Background(), "Organic Bananas", acme, 5)
	require.NotNil(t, rec)
	assert.Equal(t, "Organic Bananas", rec.ItemName)
	assert.Equal(t, 3.99, rec.Price)
	assert.Equal(t, "per lb", rec.Notes)
	assert.Equal(t, "Acme Market", rec.LocationName, "backfilled from candidate")
	assert.Equal(t, "1 Main St", rec.LocationAddress, "backfilled from candidate")
	assert.Equal(t, acme.Location, rec.Location)
	assert.Equal(t, sources, cites)

	assert.Equal(t, LookupRequest{Query: "Organic Bananas", StoreName: "Acme Market", StoreAddress: "1 Main St", RadiusMiles: 5}, b.last)
}

func TestFetchPriceKeepsUpstreamLocation(t *testing.T) {
	b := &mockBackend{resp: LookupResponse{
		Text: `{"fullItemName":"Bananas","price":1,"storeName":"Acme Market #12","storeAddress":"1 Main St Annex"}`,
	}}

	rec, _ := NewFetcher(b).FetchPrice(context.Background(), "bananas", acme, 5)
	require.NotNil(t, rec)
	assert.Equal(t, "Acme Market #12", rec.LocationName)
	assert.Equal(t, "1 Main St Annex", rec.LocationAddress)
}

func TestFetchPriceAbsent(t *testing.T) {
	tests := []struct {
		name      string
		backend   *mockBackend
		wantCites []types.Citation
	}{
		{"transport error drops citations", &mockBackend{err: errors.New("connection reset")}, nil},
		{"rejected key", &mockBackend{err: &gemini.APIError{Status: 400, Body: "API key not valid"}}, nil},
		{"sentinel keeps citations", &mockBackend{resp: LookupResponse{Text: "null", Citations: sources}}, sources},
		{"malformed keeps citations", &mockBackend{resp: LookupResponse{Text: "I could not find it.", Citations: sources}}, sources},
		{"empty answer", &mockBackend{resp: LookupResponse{}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, cites := NewFetcher(tt.backend).FetchPrice(context.Background(), "bananas", acme, 5)
			assert.Nil(t, rec)
			assert.Equal(t, tt.wantCites, cites)
		})
	}
}

func TestFetchPriceCache(t *testing.T) {
	b := &mockBackend{resp: LookupResponse{Text: `{"fullItemName":"Bananas","price":0.59}`, Citations: sources}}
	c := newMemCache()
	f := &Fetcher{Backend: b, Cache: c}

	first, _ := f.FetchPrice(context.Background(), "bananas", acme, 5)
	second, cites := f.FetchPrice(context.Background(), "Bananas ", acme, 10)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, b.calls, "second lookup served from cache")
	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, sources, cites)
}

func TestFetchPriceDoesNotCacheSentinel(t *testing.T) {
	b := &mockBackend{resp: LookupResponse{Text: "null"}}
	c := newMemCache()
	f := &Fetcher{Backend: b, Cache: c}

	f.FetchPrice(context.Background(), "bananas", acme, 5)
	f.FetchPrice(context.Background(), "bananas", acme, 5)

	assert.Equal(t, 2, b.calls)
	assert.Empty(t, c.data)
}

func TestFetchPriceCacheErrorFallsBackToLookup(t *testing.T) {
	b := &mockBackend{resp: LookupResponse{Text: `{"fullItemName":"Bananas","price":0.59}`}}
	c := newMemCache()
	c.err = errors.New("redis down")

	rec, _ := (&Fetcher{Backend: b, Cache: c}).FetchPrice(context.Background(), "bananas", acme, 5)
	require.NotNil(t, rec)
	assert.Equal(t, 1, b.calls)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(LookupRequest{Query: "Bananas", StoreName: "Acme", StoreAddress: "1 Main", RadiusMiles: 1})
	b := CacheKey(LookupRequest{Query: " bananas", StoreName: "ACME", StoreAddress: "1 main", RadiusMiles: 9})
	c := CacheKey(LookupRequest{Query: "bananas", StoreName: "Acme", StoreAddress: "2 Main"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "price:"))
	assert.Len(t, a, len("price:")+32)
}

// --- GeminiBackend ---

const sampleGenerateJSON = `{
  "candidates": [{
    "content": {"parts": [{"text": "` + "```json\\n{\\\"fullItemName\\\": \\\"Organic Bananas\\\", \\\"price\\\": 3.49}\\n```" + `"}]},
    "groundingMetadata": {
      "groundingChunks": [
        {"web": {"uri": "https://acme.example/p/1", "title": "Acme"}},
        {"web": {"uri": "https://acme.example/p/2"}},
        {"web": {"uri": ""}},
        {}
      ]
    }
  }]
}`

func TestGeminiBackendLookup(t *testing.T) {
	var captured generateRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+DefaultModel+":generateContent", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(sampleGenerateJSON))
	}))
	defer ts.Close()

	client := gemini.NewClient(ts.Client(), types.AIConfig{APIKey: "k", BaseURL: ts.URL})
	backend := NewGeminiBackend(client, "")
	require.True(t, backend.Configured())

	resp, err := backend.Lookup(context.Background(), LookupRequest{Query: "Organic Bananas", StoreName: "Acme Market", StoreAddress: "1 Main St", RadiusMiles: 5})
	require.NoError(t, err)

	assert.Equal(t, Parsed, Decode(resp.Text).Outcome)
	assert.Equal(t, []types.Citation{
		{URI: "https://acme.example/p/1", Title: "Acme"},
		{URI: "https://acme.example/p/2", Title: "https://acme.example/p/2"},
	}, resp.Citations)

	require.Len(t, captured.Contents, 1)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, `"Organic Bananas"`)
	assert.Contains(t, prompt, `"Acme Market" (around 1 Main St)`)
	assert.Contains(t, prompt, "within 5 miles")
	require.Len(t, captured.Tools, 1)
	assert.NotNil(t, captured.Tools[0].GoogleSearch)
	assert.Equal(t, 0.1, captured.GenerationConfig.Temperature)
}

func TestGeminiBackendNoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	backend := NewGeminiBackend(gemini.NewClient(ts.Client(), types.AIConfig{APIKey: "k", BaseURL: ts.URL}), "m")
	_, err := backend.Lookup(context.Background(), LookupRequest{Query: "x", StoreName: "y"})
	assert.ErrorContains(t, err, "no candidates")
}

func TestRenderPromptOmitsMissingAddress(t *testing.T) {
	prompt, err := renderPrompt(LookupRequest{Query: "Milk", StoreName: "Corner Grocer", RadiusMiles: 2.5})
	require.NoError(t, err)
	assert.Contains(t, prompt, `store "Corner Grocer".`)
	assert.NotContains(t, prompt, "(around")
	assert.Contains(t, prompt, "within 2.5 miles")
}
