// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"github.com/pdiddy/price-scout/internal/cache"
	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/httputil"
	"github.com/pdiddy/price-scout/internal/imagegen"
	"github.com/pdiddy/price-scout/internal/metrics"
	"github.com/pdiddy/price-scout/internal/pipeline"
	"github.com/pdiddy/price-scout/internal/places"
	"github.com/pdiddy/price-scout/internal/pricing"
	"github.com/pdiddy/price-scout/pkg/types"
)

// app bundles the collaborators built from configuration.
type app struct {
	cfg      types.AppConfig
	registry *prometheus.Registry
	orch     *pipeline.Orchestrator
	cache    *cache.Redis
}

// newApp loads configuration and builds the search pipeline.
func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mapsHTTP := httputil.NewClient(cfg.Maps.HTTPConfig)
	geocoder := geo.NewGoogleGeocoder(mapsHTTP, cfg.Maps)
	discoverer := places.NewClient(mapsHTTP, cfg.Maps)

	ai := gemini.NewClient(httputil.NewClient(cfg.AI.HTTPConfig), cfg.AI)
	fetcher := pricing.NewFetcher(pricing.NewGeminiBackend(ai, cfg.AI.PriceModel))
	fetcher.Metrics = m

	a := &app{cfg: cfg, registry: reg}
	if c := cache.New(cfg.Cache); c != nil {
		slog.Info("price cache enabled", "addr", cfg.Cache.Addr, "ttl", c.TTL())
		fetcher.Cache = c
		a.cache = c
	}

	var images pipeline.ImageSynthesizer
	if !cfg.AI.DisableImages {
		synth := imagegen.New(ai, cfg.AI.ImageModel)
		synth.Metrics = m
		images = synth
	}

	orch := pipeline.New(geocoder, discoverer, fetcher, images)
	orch.Metrics = m
	orch.MaxConcurrency = cfg.Search.MaxConcurrency
	orch.DefaultRadiusMiles = cfg.Search.DefaultRadiusMiles
	a.orch = orch
	return a, nil
}

// Close releases the cache connection, if any.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
