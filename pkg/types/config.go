package types

import "time"

// HTTPConfig holds shared HTTP settings used by every upstream client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "price-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// MapsConfig holds settings for geocoding and place discovery.
type MapsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey authenticates against the maps web services.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the maps API root (default https://maps.googleapis.com/maps/api).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PlaceTypes is the discovery type filter (default "grocery_or_supermarket|supermarket").
	PlaceTypes string `json:"place_types" yaml:"place_types" mapstructure:"place_types"`
}

// AIConfig holds shared settings for stages that call a generative AI API.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API root (default https://generativelanguage.googleapis.com/v1beta).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PriceModel is the text model used for price lookups.
	PriceModel string `json:"price_model" yaml:"price_model" mapstructure:"price_model"`

	// ImageModel is the model used for product image synthesis.
	ImageModel string `json:"image_model" yaml:"image_model" mapstructure:"image_model"`

	// DisableImages skips enrichment entirely.
	DisableImages bool `json:"disable_images" yaml:"disable_images" mapstructure:"disable_images"`
}

// SearchConfig holds settings for the orchestration pipeline.
type SearchConfig struct {
	// DefaultRadiusMiles is used when a request does not carry a radius (default 5).
	DefaultRadiusMiles float64 `json:"default_radius_miles" yaml:"default_radius_miles" mapstructure:"default_radius_miles"`

	// MaxConcurrency caps each fan-out stage. Zero means one goroutine per branch.
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// CacheConfig holds settings for the optional Redis price cache.
type CacheConfig struct {
	// Addr is the Redis address. Empty disables the cache.
	Addr     string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string        `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int           `json:"db" yaml:"db" mapstructure:"db"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// StoreConfig holds settings for the saved-items database.
type StoreConfig struct {
	// DataDir is the directory holding price-scout.db (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// AppConfig groups every section of price-scout.yaml.
type AppConfig struct {
	LogLevel string       `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Maps     MapsConfig   `json:"maps" yaml:"maps" mapstructure:"maps"`
	AI       AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Search   SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Cache    CacheConfig  `json:"cache" yaml:"cache" mapstructure:"cache"`
	Store    StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Server   ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
}
