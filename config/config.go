// Package config provides configuration loading and management for
// tripweave.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tripweave/tripweave/model"
)

// Config represents the complete tripweave configuration.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Places   PlacesConfig   `yaml:"places"`
	Images   ImagesConfig   `yaml:"images"`
	Insight  InsightConfig  `yaml:"insight"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
}

// ModelConfig configures model selection and generation behavior.
type ModelConfig struct {
	// Capabilities maps capability names to model preference chains.
	// Empty means the built-in default registry.
	Capabilities map[model.Capability]*model.CapabilityConfig `yaml:"capabilities"`

	// Endpoints maps model names to provider endpoints.
	Endpoints map[string]*model.EndpointConfig `yaml:"endpoints"`

	// Default is the model used when no capability matches.
	Default string `yaml:"default"`

	// Temperature controls randomness for generation stages (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	// Timeout is the maximum time to wait for model responses.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond throttles outbound generation calls. 0 disables.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// PlacesConfig configures the geocoding collaborator.
type PlacesConfig struct {
	// BaseURL is the geocoding API endpoint (Nominatim-compatible).
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each lookup call.
	Timeout time.Duration `yaml:"timeout"`

	// CacheTTL bounds how long resolved places are served from cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ImagesConfig configures the stock-image collaborator chain.
type ImagesConfig struct {
	// Providers lists provider names in priority order.
	Providers []string `yaml:"providers"`

	// Timeout bounds each provider call.
	Timeout time.Duration `yaml:"timeout"`

	// CacheTTL bounds how long image lists are served from cache.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// InsightConfig configures reference-link reading.
type InsightConfig struct {
	// Enabled turns link fetching on. Off by default; fetching user
	// URLs is an outbound-network decision the operator opts into.
	Enabled bool `yaml:"enabled"`

	// Timeout bounds each link fetch.
	Timeout time.Duration `yaml:"timeout"`

	// MaxContentBytes caps a fetched page body.
	MaxContentBytes int64 `yaml:"max_content_bytes"`
}

// PipelineConfig configures generation orchestration.
type PipelineConfig struct {
	// DayConcurrency is the number of day workers in flight per batch.
	DayConcurrency int `yaml:"day_concurrency"`

	// SceneConfirmation enables the LLM confirmation tier of the scene
	// classifier. The instant keyword tier always runs.
	SceneConfirmation bool `yaml:"scene_confirmation"`

	// ImagesPerDay is how many supporting images each day fetches.
	ImagesPerDay int `yaml:"images_per_day"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// AllowedOrigins configures CORS for browser clients.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RequestsPerMinute rate-limits generation starts per client IP.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Default:           "qwen",
			Temperature:       0.7,
			Timeout:           3 * time.Minute,
			RequestsPerSecond: 2,
		},
		Places: PlacesConfig{
			BaseURL:  "https://nominatim.openstreetmap.org",
			Timeout:  10 * time.Second,
			CacheTTL: 24 * time.Hour,
		},
		Images: ImagesConfig{
			Providers: []string{"unsplash", "pexels", "placeholder"},
			Timeout:   10 * time.Second,
			CacheTTL:  time.Hour,
		},
		Insight: InsightConfig{
			Enabled:         false,
			Timeout:         15 * time.Second,
			MaxContentBytes: 2 << 20, // 2MB
		},
		Pipeline: PipelineConfig{
			DayConcurrency:    3,
			SceneConfirmation: true,
			ImagesPerDay:      3,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"*"},
			RequestsPerMinute: 10,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Pipeline.DayConcurrency < 1 {
		return fmt.Errorf("pipeline.day_concurrency must be at least 1")
	}
	if c.Pipeline.ImagesPerDay < 0 {
		return fmt.Errorf("pipeline.images_per_day must not be negative")
	}
	if c.Places.BaseURL == "" {
		return fmt.Errorf("places.base_url is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load resolves the effective configuration: .env overlay, then the YAML
// file if given, then environment overrides.
func Load(path string) (*Config, error) {
	// A missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides select settings from the environment.
func (c *Config) applyEnv() {
	if addr := os.Getenv("TRIPWEAVE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if url := os.Getenv("TRIPWEAVE_PLACES_URL"); url != "" {
		c.Places.BaseURL = url
	}
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Model.Capabilities) > 0 {
		c.Model.Capabilities = other.Model.Capabilities
	}
	if len(other.Model.Endpoints) > 0 {
		c.Model.Endpoints = other.Model.Endpoints
	}
	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}
	if other.Model.RequestsPerSecond != 0 {
		c.Model.RequestsPerSecond = other.Model.RequestsPerSecond
	}

	if other.Places.BaseURL != "" {
		c.Places.BaseURL = other.Places.BaseURL
	}
	if len(other.Images.Providers) > 0 {
		c.Images.Providers = other.Images.Providers
	}
	if other.Pipeline.DayConcurrency != 0 {
		c.Pipeline.DayConcurrency = other.Pipeline.DayConcurrency
	}
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if len(other.Server.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = other.Server.AllowedOrigins
	}
}

// BuildRegistry constructs a model registry from the configuration,
// falling back to the built-in defaults when nothing is configured.
func (c *Config) BuildRegistry() *model.Registry {
	if len(c.Model.Capabilities) == 0 || len(c.Model.Endpoints) == 0 {
		return model.NewDefaultRegistry()
	}
	r := model.NewRegistry(c.Model.Capabilities, c.Model.Endpoints)
	if c.Model.Default != "" {
		r.SetDefault(c.Model.Default)
	}
	return r
}
