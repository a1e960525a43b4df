package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the feed ranker service.
// Environment variables are automatically parsed from the FEED_RANKER_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8000"`

	// Internal auth: backend-to-service calls must present this key.
	InternalAPIKey string `envconfig:"INTERNAL_API_KEY" default:""`

	// Vendor credentials and models
	VoyageAPIKey         string `envconfig:"VOYAGE_API_KEY" default:""`
	VoyageTextModel      string `envconfig:"VOYAGE_TEXT_MODEL" default:"voyage-3.5"`
	VoyageMultimodal     string `envconfig:"VOYAGE_MULTIMODAL_MODEL" default:"voyage-multimodal-3.5"`
	VoyageRerankModel    string `envconfig:"VOYAGE_RERANK_MODEL" default:"rerank-2.5"`
	VoyageDimensions     int    `envconfig:"VOYAGE_DIMENSIONS" default:"1024"`
	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	OpenAIAPIKey         string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModerationType string `envconfig:"OPENAI_MODERATION_MODEL" default:"omni-moderation-latest"`

	// Post index (host:port, no scheme)
	PostIndexURL string `envconfig:"POST_INDEX_URL" default:"weaviate:8080"`

	// Postgres for violation persistence; empty disables persistence.
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// IPFS gateway content-addressed media resolves through
	IPFSGateway string `envconfig:"IPFS_GATEWAY" default:"https://gateway.pinata.cloud/ipfs/"`

	// BootstrapTimeoutSeconds bounds startup dependency checks.
	BootstrapTimeoutSeconds int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"30"`
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with FEED_RANKER_, e.g. FEED_RANKER_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FEED_RANKER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if cfg.VoyageDimensions <= 0 {
		return nil, fmt.Errorf("VOYAGE_DIMENSIONS must be positive, got %d", cfg.VoyageDimensions)
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("post_index_url", cfg.PostIndexURL).
		Int("voyage_dimensions", cfg.VoyageDimensions).
		Str("ipfs_gateway", cfg.IPFSGateway).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("internal_auth_enabled", cfg.InternalAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:             EnvTesting,
		HTTPPort:                8000,
		VoyageTextModel:         "voyage-3.5",
		VoyageMultimodal:        "voyage-multimodal-3.5",
		VoyageRerankModel:       "rerank-2.5",
		VoyageDimensions:        1024,
		GeminiModel:             "gemini-2.0-flash",
		OpenAIModerationType:    "omni-moderation-latest",
		PostIndexURL:            "localhost:8081",
		IPFSGateway:             "https://gateway.pinata.cloud/ipfs/",
		BootstrapTimeoutSeconds: 30,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
