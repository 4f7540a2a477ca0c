// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/price-scout/internal/gemini"
	"github.com/pdiddy/price-scout/internal/geo"
	"github.com/pdiddy/price-scout/internal/imagegen"
	"github.com/pdiddy/price-scout/internal/places"
	"github.com/pdiddy/price-scout/internal/pricing"
	"github.com/pdiddy/price-scout/internal/secrets"
	"github.com/pdiddy/price-scout/pkg/types"
)

// setDefaults registers every configuration default in one place.
func setDefaults(v *viper.Viper) {
	userAgent := "price-scout/" + version

	v.SetDefault("log_level", "info")

	v.SetDefault("maps.timeout", 30*time.Second)
	v.SetDefault("maps.max_retries", 5)
	v.SetDefault("maps.user_agent", userAgent)
	v.SetDefault("maps.base_url", geo.DefaultMapsBaseURL)
	v.SetDefault("maps.place_types", places.DefaultPlaceTypes)
	// Registered so environment variables bind during Unmarshal.
	v.SetDefault("maps.api_key", "")

	v.SetDefault("ai.timeout", 90*time.Second)
	v.SetDefault("ai.max_retries", 5)
	v.SetDefault("ai.user_agent", userAgent)
	v.SetDefault("ai.base_url", gemini.DefaultBaseURL)
	v.SetDefault("ai.price_model", pricing.DefaultModel)
	v.SetDefault("ai.image_model", imagegen.DefaultModel)
	v.SetDefault("ai.disable_images", false)
	v.SetDefault("ai.api_key", "")

	v.SetDefault("search.default_radius_miles", 5.0)
	v.SetDefault("search.max_concurrency", 0)

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 6*time.Hour)

	v.SetDefault("store.data_dir", "data")
	v.SetDefault("server.addr", ":8080")
}

// loadConfig decodes the configuration and fills credentials missing from it
// with the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Set) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Maps.APIKey = s.Or(secrets.GoogleMapsAPIKey, cfg.Maps.APIKey)
	cfg.AI.APIKey = s.Or(secrets.GeminiAPIKey, cfg.AI.APIKey)
	cfg.Cache.Password = s.Or(secrets.RedisPassword, cfg.Cache.Password)
	return cfg, nil
}
