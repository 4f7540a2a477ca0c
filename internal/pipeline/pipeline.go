// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one price search: resolve the location,
// discover nearby stores, fetch a price at each store, enrich priced items
// with an image and aggregate the results.
//
// Price lookups and image synthesis fan out per store and per item. Both
// stages join on every branch before the pipeline moves on, and a failed
// branch only shrinks the result. A newer search supersedes an older one:
// each run captures a generation number and drops its output once a later
// run has started.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/price-scout/internal/aggregate"
	"github.com/pdiddy/price-scout/internal/fanout"
	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/metrics"
	"github.com/pdiddy/price-scout/pkg/types"
)

// DefaultRadiusMiles applies when neither the request nor the orchestrator
// sets a radius.
const DefaultRadiusMiles = 5

// Geocoder resolves postal codes.
type Geocoder interface {
	geo.Geocoder
	Configured() bool
}

// Discoverer finds candidate stores around a point.
type Discoverer interface {
	FindNearby(ctx context.Context, center types.Coordinates, radiusMiles float64) ([]types.CandidateLocation, error)
	Configured() bool
}

// PriceLookup prices the query at one store. It never fails; a nil record
// means no price.
type PriceLookup interface {
	FetchPrice(ctx context.Context, query string, cand types.CandidateLocation, radiusMiles float64) (*types.PriceRecord, []types.Citation)
	Configured() bool
}

// ImageSynthesizer returns an image reference for an item or "".
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, itemName string) string
	Configured() bool
}

// Orchestrator runs searches and holds the latest observable snapshot.
type Orchestrator struct {
	Geocoder   Geocoder
	Discoverer Discoverer
	Prices     PriceLookup
	// Images is optional; nil or unconfigured disables enrichment.
	Images  ImageSynthesizer
	Metrics *metrics.Metrics

	// MaxConcurrency caps each fan-out stage. Zero means one goroutine per
	// branch.
	MaxConcurrency     int
	DefaultRadiusMiles float64

	// OnProgress, when set, receives every snapshot the current run publishes.
	OnProgress func(Snapshot)

	// NewToken returns the freshness token of a run. Defaults to a UUID.
	NewToken func() string

	mu         sync.Mutex
	generation uint64
	latest     Snapshot
}

// New returns an orchestrator over the given collaborators.
func New(g Geocoder, d Discoverer, p PriceLookup, img ImageSynthesizer) *Orchestrator {
	return &Orchestrator{Geocoder: g, Discoverer: d, Prices: p, Images: img}
}

// Status returns the latest published snapshot.
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// citationSink collects citations from concurrent price branches.
type citationSink struct {
	mu    sync.Mutex
	items []types.Citation
}

func (c *citationSink) add(cites []types.Citation) {
	if len(cites) == 0 {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, cites...)
	c.mu.Unlock()
}

func (c *citationSink) deduped() []types.Citation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return aggregate.Dedupe(c.items)
}

// run is the private state of one search.
type run struct {
	o         *Orchestrator
	gen       uint64
	snap      Snapshot
	citations citationSink
	start     time.Time
}

// errNoPrice marks a store branch that produced no record.
var errNoPrice = errors.New("no price")

// Search runs one search to a terminal state and returns its snapshot.
// Failed searches also return the typed error. Done and Empty return nil.
// A search overtaken by a newer one returns ErrSuperseded and publishes
// nothing further.
func (o *Orchestrator) Search(ctx context.Context, req Request) (Snapshot, error) {
	r := o.begin(req)
	slog.Info("search started", "run_id", r.snap.RunID, "query", req.Query)

	snap, err := r.execute(ctx, req)
	if errors.Is(err, ErrSuperseded) {
		slog.Info("search superseded", "run_id", snap.RunID)
		return snap, err
	}
	o.Metrics.Search(snap.State.String(), time.Since(r.start))
	slog.Info("search finished", "run_id", snap.RunID, "state", snap.State.String(),
		"groups", len(snap.Groups), "items", snap.ItemCount(), "citations", len(snap.Citations))
	return snap, err
}

// begin starts a new generation and clears all observable state.
func (o *Orchestrator) begin(req Request) *run {
	token := uuid.NewString()
	if o.NewToken != nil {
		token = o.NewToken()
	}

	o.mu.Lock()
	o.generation++
	r := &run{
		o:     o,
		gen:   o.generation,
		start: time.Now(),
	}
	r.snap = Snapshot{
		RunID:     token,
		State:     Idle,
		Query:     strings.TrimSpace(req.Query),
		StartedAt: r.start,
	}
	o.latest = r.snap
	o.mu.Unlock()
	return r
}

// publish copies the run's snapshot to the observable state if the run is
// still current.
func (r *run) publish() bool {
	r.o.mu.Lock()
	current := r.gen == r.o.generation
	if current {
		r.o.latest = r.snap
	}
	r.o.mu.Unlock()

	if current && r.o.OnProgress != nil {
		r.o.OnProgress(r.snap)
	}
	return current
}

func (r *run) enter(state State, progress string) error {
	r.snap.State = state
	r.snap.Progress = progress
	if !r.publish() {
		return ErrSuperseded
	}
	return nil
}

func (r *run) fail(err error) (Snapshot, error) {
	r.snap.State = Failed
	r.snap.Progress = ""
	r.snap.Error = err.Error()
	r.snap.Citations = r.citations.deduped()
	r.snap.FinishedAt = time.Now()
	if !r.publish() {
		return r.snap, ErrSuperseded
	}
	slog.Warn("search failed", "run_id", r.snap.RunID, "error", err)
	return r.snap, err
}

func (r *run) empty(reason, info string) (Snapshot, error) {
	r.snap.State = Empty
	r.snap.Progress = ""
	r.snap.Reason = reason
	r.snap.Info = info
	r.snap.Citations = r.citations.deduped()
	r.snap.FinishedAt = time.Now()
	if !r.publish() {
		return r.snap, ErrSuperseded
	}
	return r.snap, nil
}

// validate checks the request and the credentials it needs without any
// network activity.
func (o *Orchestrator) validate(req Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return &ValidationError{Err: ErrEmptyQuery}
	}
	src, err := geo.Pick(req.Hint())
	if err != nil {
		return &ValidationError{Err: err}
	}
	if o.Discoverer == nil || !o.Discoverer.Configured() {
		return &ValidationError{Err: fmt.Errorf("Google Maps %w", ErrMissingCredential)}
	}
	if src == geo.SourcePostalCode && (o.Geocoder == nil || !o.Geocoder.Configured()) {
		return &ValidationError{Err: fmt.Errorf("Google Maps %w", ErrMissingCredential)}
	}
	if o.Prices == nil || !o.Prices.Configured() {
		return &ValidationError{Err: fmt.Errorf("Gemini %w", ErrMissingCredential)}
	}
	return nil
}

func (o *Orchestrator) radius(req Request) float64 {
	switch {
	case req.RadiusMiles > 0:
		return req.RadiusMiles
	case o.DefaultRadiusMiles > 0:
		return o.DefaultRadiusMiles
	default:
		return DefaultRadiusMiles
	}
}

func (r *run) execute(ctx context.Context, req Request) (Snapshot, error) {
	o := r.o
	query := r.snap.Query
	radius := o.radius(req)
	r.snap.RadiusMiles = radius

	if err := o.validate(req); err != nil {
		return r.fail(err)
	}

	// Resolve.
	if err := r.enter(ResolvingLocation, "Determining search location..."); err != nil {
		return r.snap, err
	}
	var geocoder geo.Geocoder
	if o.Geocoder != nil {
		geocoder = o.Geocoder
	}
	center, src, err := geo.NewResolver(geocoder).Resolve(ctx, req.Hint())
	if err != nil {
		if src == geo.SourcePostalCode {
			o.Metrics.Upstream(metrics.ServiceGeocode, metrics.OutcomeError)
		}
		return r.fail(classifyResolve(err))
	}
	if src == geo.SourcePostalCode {
		o.Metrics.Upstream(metrics.ServiceGeocode, metrics.OutcomeOK)
	}

	postal := strings.TrimSpace(req.PostalCode)
	where := locationDescriptor(center, postal)
	r.snap.Center = &center
	r.snap.Source = src.String()
	r.snap.Descriptor = searchDescriptor(query, where, radius)

	// Discover.
	if err := r.enter(DiscoveringPlaces, "Finding nearby stores..."); err != nil {
		return r.snap, err
	}
	candidates, err := o.Discoverer.FindNearby(ctx, center, radius)
	if err != nil {
		o.Metrics.Upstream(metrics.ServicePlaces, metrics.OutcomeError)
		return r.fail(&DiscoveryError{Err: err})
	}
	o.Metrics.Upstream(metrics.ServicePlaces, metrics.OutcomeOK)
	r.snap.Candidates = len(candidates)
	if len(candidates) == 0 {
		return r.empty(ReasonNoStores,
			fmt.Sprintf("No grocery stores found %s. Try adjusting the radius or location.", where))
	}

	// Price every candidate; settle-all.
	if err := r.enter(FetchingPrices,
		fmt.Sprintf("Found %d store(s). Fetching item prices...", len(candidates))); err != nil {
		return r.snap, err
	}
	priced := fanout.Settle(ctx, candidates, o.MaxConcurrency,
		func(ctx context.Context, _ int, cand types.CandidateLocation) (types.PriceRecord, error) {
			rec, cites := o.Prices.FetchPrice(ctx, query, cand, radius)
			r.citations.add(cites)
			if rec == nil {
				return types.PriceRecord{}, errNoPrice
			}
			return *rec, nil
		})
	for i, out := range priced {
		if out.Err != nil && !errors.Is(out.Err, errNoPrice) {
			slog.Debug("price branch failed", "location", candidates[i].Name, "error", out.Err)
		}
	}
	records := fanout.Successes(priced)

	r.snap.Citations = r.citations.deduped()
	if len(records) == 0 {
		return r.empty(ReasonNoPricedItems,
			fmt.Sprintf("Found %d store(s), but no price for \"%s\" at any of them. Check sources for general store info.", len(candidates), query))
	}

	// Enrich; each call already degrades to no image.
	if err := r.enter(EnrichingImages,
		fmt.Sprintf("Found %d item(s). Generating images...", len(records))); err != nil {
		return r.snap, err
	}
	enriched := r.enrich(ctx, records)

	if err := r.enter(Aggregating, "Organizing results..."); err != nil {
		return r.snap, err
	}
	r.snap.Groups = aggregate.Aggregate(enriched, r.snap.RunID)
	r.snap.State = Done
	r.snap.Progress = ""
	r.snap.FinishedAt = time.Now()
	if !r.publish() {
		return r.snap, ErrSuperseded
	}
	return r.snap, nil
}

func (r *run) enrich(ctx context.Context, records []types.PriceRecord) []types.EnrichedRecord {
	images := r.o.Images
	if images == nil || !images.Configured() {
		out := make([]types.EnrichedRecord, len(records))
		for i, rec := range records {
			out[i] = types.EnrichedRecord{PriceRecord: rec}
		}
		return out
	}

	outcomes := fanout.Settle(ctx, records, r.o.MaxConcurrency,
		func(ctx context.Context, _ int, rec types.PriceRecord) (types.EnrichedRecord, error) {
			return types.EnrichedRecord{
				PriceRecord:    rec,
				GeneratedImage: images.Synthesize(ctx, rec.ItemName),
			}, nil
		})

	out := make([]types.EnrichedRecord, len(records))
	for i, oc := range outcomes {
		if oc.OK() {
			out[i] = oc.Value
		} else {
			// A panicking synthesizer still leaves the record without an image.
			out[i] = types.EnrichedRecord{PriceRecord: records[i]}
		}
	}
	return out
}
