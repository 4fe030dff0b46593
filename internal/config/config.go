package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Providers ProvidersConfig
	Raster    RasterConfig
	Batch     BatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single extraction provider.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ProvidersConfig holds per-provider extraction settings. Both API keys are
// required at startup.
type ProvidersConfig struct {
	OpenAI     ProviderConfig `mapstructure:"openai"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

// RasterConfig holds PDF rasterization settings.
type RasterConfig struct {
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// BatchConfig holds batch processing settings. Concurrency bounds how many
// files of one batch are extracted in parallel; pages within a file are
// always sequential.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the DOCSIGHT_
// prefix. The provider API keys additionally fall back to the conventional
// OPENAI_API_KEY and OPENROUTER_API_KEY names.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8300")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "600s")
	v.SetDefault("server.environment", "development")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Provider defaults
	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.openai.timeout_secs", 120)
	v.SetDefault("providers.openrouter.api_key", "")
	v.SetDefault("providers.openrouter.timeout_secs", 120)

	// Raster defaults
	v.SetDefault("raster.jpeg_quality", 85)

	// Batch defaults: strictly sequential unless configured otherwise
	v.SetDefault("batch.concurrency", 1)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string][]string{
		"server.port":                       {"DOCSIGHT_SERVER_PORT"},
		"server.read_timeout":               {"DOCSIGHT_SERVER_READ_TIMEOUT"},
		"server.write_timeout":              {"DOCSIGHT_SERVER_WRITE_TIMEOUT"},
		"server.environment":                {"DOCSIGHT_SERVER_ENVIRONMENT"},
		"cors.allowed_origins":              {"DOCSIGHT_CORS_ALLOWED_ORIGINS"},
		"providers.openai.api_key":          {"DOCSIGHT_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"providers.openai.timeout_secs":     {"DOCSIGHT_PROVIDERS_OPENAI_TIMEOUT_SECS"},
		"providers.openrouter.api_key":      {"DOCSIGHT_PROVIDERS_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		"providers.openrouter.timeout_secs": {"DOCSIGHT_PROVIDERS_OPENROUTER_TIMEOUT_SECS"},
		"raster.jpeg_quality":               {"DOCSIGHT_RASTER_JPEG_QUALITY"},
		"batch.concurrency":                 {"DOCSIGHT_BATCH_CONCURRENCY"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCSIGHT_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCSIGHT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Providers = ProvidersConfig{
		OpenAI: ProviderConfig{
			APIKey:      v.GetString("providers.openai.api_key"),
			TimeoutSecs: v.GetInt("providers.openai.timeout_secs"),
		},
		OpenRouter: ProviderConfig{
			APIKey:      v.GetString("providers.openrouter.api_key"),
			TimeoutSecs: v.GetInt("providers.openrouter.timeout_secs"),
		},
	}

	cfg.Raster = RasterConfig{
		JPEGQuality: v.GetInt("raster.jpeg_quality"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}

	if cfg.Providers.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if cfg.Providers.OpenRouter.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}

	return cfg, nil
}
