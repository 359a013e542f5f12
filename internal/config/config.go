// Package config loads and validates the CreatorPulse service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeout is the default HTTP read timeout
	DefaultReadTimeout = 10 * time.Second
	// DefaultWriteTimeout is the default HTTP write timeout
	DefaultWriteTimeout = 30 * time.Second
	// DefaultSweepInterval is how often the scheduling sweep runs
	DefaultSweepInterval = 60 * time.Second
	// DefaultMaxItems caps the items handed to the report prompt
	DefaultMaxItems = 60
	// DefaultFallbackMaxItems caps the items listed in the fallback report
	DefaultFallbackMaxItems = 30
	// DefaultLLMMaxAttempts is the generation retry budget
	DefaultLLMMaxAttempts = 3
	// DefaultLLMRetryDelay is the fixed delay between generation attempts
	DefaultLLMRetryDelay = 5 * time.Second
	// DefaultPerSourceLimit is the hard cap of items fetched per source
	DefaultPerSourceLimit = 15
	// DefaultFetchTimeout bounds a single source fetch
	DefaultFetchTimeout = 15 * time.Second
	// DefaultContentCacheTTL is how long per-source content stays cached
	DefaultContentCacheTTL = 10 * time.Minute
)

// Config is the root configuration for the service.
type Config struct {
	Debug    bool           `yaml:"debug"` // controls log level and format
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	LLM      LLMConfig      `yaml:"llm"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Options  OptionsConfig  `yaml:"options"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Sources  SourcesConfig  `yaml:"sources"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g. ":8090"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig configures the Redis client used for source-content caching.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SMTPConfig configures the outbound mailer.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// Addr returns the host:port dial address.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	MaxAttempts int           `yaml:"max_attempts"` // default: 3
	RetryDelay  time.Duration `yaml:"retry_delay"`  // default: 5s
}

// RankingConfig holds the source weight table.
type RankingConfig struct {
	SourceWeights SourceWeights `yaml:"source_weights"`
}

// OptionsConfig holds report sizing knobs.
type OptionsConfig struct {
	MaxItems         int `yaml:"max_items"`          // default: 60
	FallbackMaxItems int `yaml:"fallback_max_items"` // default: 30
}

// SweepConfig configures the scheduled-newsletter sweep.
type SweepConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"` // default: 60s
}

// SourcesConfig configures source fetching.
type SourcesConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`     // default: 15s
	PerSourceLimit  int           `yaml:"per_source_limit"`  // default: 15
	ContentCacheTTL time.Duration `yaml:"content_cache_ttl"` // default: 10m
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Sweep.Interval <= 0 {
		return fmt.Errorf("sweep.interval must be positive, got %v", c.Sweep.Interval)
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		return errors.New("llm.model is required when llm.enabled is true")
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8090"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "CreatorPulse"
	}
	if cfg.SMTP.FromEmail == "" {
		cfg.SMTP.FromEmail = cfg.SMTP.Username
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 8192
	}
	if cfg.LLM.MaxAttempts == 0 {
		cfg.LLM.MaxAttempts = DefaultLLMMaxAttempts
	}
	if cfg.LLM.RetryDelay == 0 {
		cfg.LLM.RetryDelay = DefaultLLMRetryDelay
	}
	if cfg.Options.MaxItems == 0 {
		cfg.Options.MaxItems = DefaultMaxItems
	}
	if cfg.Options.FallbackMaxItems == 0 {
		cfg.Options.FallbackMaxItems = DefaultFallbackMaxItems
	}
	if cfg.Sweep.Interval == 0 {
		cfg.Sweep.Interval = DefaultSweepInterval
	}
	if cfg.Sources.FetchTimeout == 0 {
		cfg.Sources.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Sources.PerSourceLimit == 0 {
		cfg.Sources.PerSourceLimit = DefaultPerSourceLimit
	}
	if cfg.Sources.ContentCacheTTL == 0 {
		cfg.Sources.ContentCacheTTL = DefaultContentCacheTTL
	}
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
	if v := os.Getenv("PULSE_PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	if v := os.Getenv("DATABASE_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DATABASE_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DATABASE_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		cfg.SMTP.FromEmail = v
	}
	if v := os.Getenv("FROM_NAME"); v != "" {
		cfg.SMTP.FromName = v
	}
}

// Load reads the YAML configuration at path, applies defaults, overlays
// environment variables, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string value as a boolean.
// Returns true for "true", "1", "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
