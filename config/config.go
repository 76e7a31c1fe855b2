package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Zillow   ZillowConfig
	Pipeline PipelineConfig
	Output   OutputConfig
	Server   ServerConfig
}

// ZillowConfig holds upstream listing source configuration
type ZillowConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryMax      int           `mapstructure:"retry_max"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	BackoffCap    time.Duration `mapstructure:"backoff_cap"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

// PipelineConfig holds pipeline coordination configuration
type PipelineConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	ResolveCacheTTL time.Duration `mapstructure:"resolve_cache_ttl"`
}

// OutputConfig holds exporter configuration
type OutputConfig struct {
	Format string `mapstructure:"format"` // "json", "csv", or "both"
	Path   string `mapstructure:"path"`
}

// ServerConfig holds configuration for the optional HTTP serve mode
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/zillow-scrape/")

	v.SetEnvPrefix("ZSCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("zillow.base_url", "https://www.zillow.com")
	v.SetDefault("zillow.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("zillow.timeout", "15s")
	v.SetDefault("zillow.retry_max", 3)
	v.SetDefault("zillow.backoff_base", "500ms")
	v.SetDefault("zillow.backoff_cap", "8s")
	v.SetDefault("zillow.rate_per_second", 2.0)

	// Conservative by default to respect upstream rate limits
	v.SetDefault("pipeline.concurrency", 2)
	v.SetDefault("pipeline.resolve_cache_ttl", "1h")

	// No format default: an unset format lets the output path extension decide
	v.SetDefault("output.path", "output.json")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Pipeline.Concurrency < 1 {
		return fmt.Errorf("pipeline concurrency must be at least 1, got: %d", config.Pipeline.Concurrency)
	}

	if config.Zillow.RetryMax < 1 {
		return fmt.Errorf("zillow retry_max must be at least 1, got: %d", config.Zillow.RetryMax)
	}

	if config.Zillow.Timeout <= 0 {
		return fmt.Errorf("zillow timeout must be positive, got: %s", config.Zillow.Timeout)
	}

	switch config.Output.Format {
	case "json", "csv", "both", "":
	default:
		return fmt.Errorf("output format must be 'json', 'csv', or 'both', got: %s", config.Output.Format)
	}

	return nil
}
