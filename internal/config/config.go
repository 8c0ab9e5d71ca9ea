package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Catalog   CatalogConfig   `yaml:"catalog" envconfig:"CATALOG"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Discounts DiscountsConfig `yaml:"discounts"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"4567"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"true"`
}

// CatalogConfig locates the service catalog source
type CatalogConfig struct {
	Path string `yaml:"path" default:"data/services.json"`
}

// StorageConfig locates the saved-package store
type StorageConfig struct {
	PackagesFile string `yaml:"packages_file" envconfig:"PACKAGES_FILE" default:"data/packages.json"`
}

// DiscountsConfig carries the pricing rule tables. Tiers and bundles are
// deployment data, not code; when absent the defaults below apply.
type DiscountsConfig struct {
	VolumeTiers []VolumeTierConfig `yaml:"volume_tiers"`
	Bundles     []BundleConfig     `yaml:"bundles"`
}

// VolumeTierConfig is a single volume discount tier
type VolumeTierConfig struct {
	MinServices int `yaml:"min_services"`
	Percent     int `yaml:"percent"`
}

// BundleConfig is a fixed-amount discount over a named set of service ids.
// Name appears on discount lines; ShortName and Unit feed the advisory
// "add N more" warnings.
type BundleConfig struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	ShortName  string   `yaml:"short_name"`
	Unit       string   `yaml:"unit"`
	ServiceIDs []string `yaml:"service_ids"`
	Amount     float64  `yaml:"amount"`
}

// DefaultDiscounts returns the stock discount tables matching the shipped
// service catalog.
func DefaultDiscounts() DiscountsConfig {
	return DiscountsConfig{
		VolumeTiers: []VolumeTierConfig{
			{MinServices: 8, Percent: 15},
			{MinServices: 5, Percent: 10},
		},
		Bundles: []BundleConfig{
			{
				ID:         "criminal_bundle",
				Name:       "Criminal Bundle Discount (all 4 criminal searches)",
				ShortName:  "Criminal Bundle",
				Unit:       "criminal search",
				ServiceIDs: []string{"state_criminal", "county_criminal", "federal_criminal", "national_criminal"},
				Amount:     20.00,
			},
			{
				ID:         "verification_bundle",
				Name:       "Verification Bundle Discount (all 3 verification services)",
				ShortName:  "Verification Bundle",
				Unit:       "verification service",
				ServiceIDs: []string{"employment_verification", "education_verification", "professional_license"},
				Amount:     15.00,
			},
		},
	}
}

// Load loads configuration from environment variables and an optional
// YAML config file. Environment variables use the SCREENAPI prefix.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SCREENAPI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if len(cfg.Discounts.VolumeTiers) == 0 && len(cfg.Discounts.Bundles) == 0 {
		cfg.Discounts = DefaultDiscounts()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getConfigFilePath returns the config file path, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("SCREENAPI_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// mergeConfigs overlays non-zero file values onto the env-derived config.
// File values win so a deployment bundle fully describes itself.
func mergeConfigs(file, env Config) Config {
	merged := env

	if file.Server.Port != 0 {
		merged.Server.Port = file.Server.Port
	}
	if file.Server.ReadTimeout != 0 {
		merged.Server.ReadTimeout = file.Server.ReadTimeout
	}
	if file.Server.WriteTimeout != 0 {
		merged.Server.WriteTimeout = file.Server.WriteTimeout
	}
	if file.Server.IdleTimeout != 0 {
		merged.Server.IdleTimeout = file.Server.IdleTimeout
	}
	if file.Server.RequestTimeout != 0 {
		merged.Server.RequestTimeout = file.Server.RequestTimeout
	}
	if file.Server.ShutdownTimeout != 0 {
		merged.Server.ShutdownTimeout = file.Server.ShutdownTimeout
	}
	if len(file.Security.AllowedOrigins) > 0 {
		merged.Security.AllowedOrigins = file.Security.AllowedOrigins
	}
	if file.Security.RateLimit.RPS != 0 {
		merged.Security.RateLimit = file.Security.RateLimit
	}
	if file.Logging.Level != "" {
		merged.Logging.Level = file.Logging.Level
	}
	if file.Logging.Output != "" {
		merged.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" {
		merged.Logging.FilePath = file.Logging.FilePath
	}
	if file.Catalog.Path != "" {
		merged.Catalog.Path = file.Catalog.Path
	}
	if file.Storage.PackagesFile != "" {
		merged.Storage.PackagesFile = file.Storage.PackagesFile
	}
	if len(file.Discounts.VolumeTiers) > 0 || len(file.Discounts.Bundles) > 0 {
		merged.Discounts = file.Discounts
	}

	return merged
}

// validate checks configuration for invalid values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}
	if c.Storage.PackagesFile == "" {
		return fmt.Errorf("packages file path is required")
	}
	for _, tier := range c.Discounts.VolumeTiers {
		if tier.MinServices < 1 {
			return fmt.Errorf("volume tier min_services must be positive, got %d", tier.MinServices)
		}
		if tier.Percent < 0 || tier.Percent > 100 {
			return fmt.Errorf("volume tier percent out of range: %d", tier.Percent)
		}
	}
	for _, b := range c.Discounts.Bundles {
		if b.ID == "" || len(b.ServiceIDs) == 0 {
			return fmt.Errorf("bundle %q must have an id and at least one service id", b.ID)
		}
		if b.Amount < 0 {
			return fmt.Errorf("bundle %q amount must be non-negative", b.ID)
		}
	}
	return nil
}
