// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	CRM    CRMConfig    `yaml:"crm" mapstructure:"crm"`
	Sync   SyncConfig   `yaml:"sync" mapstructure:"sync"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the source-of-truth database.
type SourceConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	RowLimit    int    `yaml:"row_limit" mapstructure:"row_limit"`
}

// CRMConfig holds CRM API credentials, endpoint templates, and tunables.
type CRMConfig struct {
	Token     string          `yaml:"token" mapstructure:"token"`
	Endpoints EndpointsConfig `yaml:"endpoints" mapstructure:"endpoints"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
}

// EndpointsConfig holds the five contact URL templates. Each must contain
// the {contact} placeholder.
type EndpointsConfig struct {
	UpsertContact   string `yaml:"upsert_contact" mapstructure:"upsert_contact"`
	DeleteContact   string `yaml:"delete_contact" mapstructure:"delete_contact"`
	AddTags         string `yaml:"add_tags" mapstructure:"add_tags"`
	DeleteTags      string `yaml:"delete_tags" mapstructure:"delete_tags"`
	UpdateLifecycle string `yaml:"update_lifecycle" mapstructure:"update_lifecycle"`
}

// RetryConfig tunes the queue-aware retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// SyncConfig tunes batch processing.
type SyncConfig struct {
	// PacingInterval is the fixed delay between identities.
	PacingInterval time.Duration `yaml:"pacing_interval" mapstructure:"pacing_interval"`
	// ExtraTierTags is a comma-separated list of tier tag labels beyond
	// the canonical set.
	ExtraTierTags string `yaml:"extra_tier_tags" mapstructure:"extra_tier_tags"`
}

// ExtraTierTagList splits ExtraTierTags on commas, trimming whitespace and
// dropping empties.
func (s SyncConfig) ExtraTierTagList() []string {
	var out []string
	for _, tag := range strings.Split(s.ExtraTierTags, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ServerConfig configures the trigger/status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CREATORSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Required keys default to empty so environment-only values
	// still bind through Unmarshal.
	v.SetDefault("source.driver", "postgres")
	v.SetDefault("source.database_url", "")
	v.SetDefault("source.row_limit", 500)
	v.SetDefault("crm.token", "")
	v.SetDefault("crm.endpoints.upsert_contact", "")
	v.SetDefault("crm.endpoints.delete_contact", "")
	v.SetDefault("crm.endpoints.add_tags", "")
	v.SetDefault("crm.endpoints.delete_tags", "")
	v.SetDefault("crm.endpoints.update_lifecycle", "")
	v.SetDefault("crm.retry.max_attempts", 5)
	v.SetDefault("crm.retry.base_delay", "2s")
	v.SetDefault("crm.retry.max_delay", "30s")
	v.SetDefault("sync.pacing_interval", "1s")
	v.SetDefault("sync.extra_tier_tags", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a sync run cannot proceed without.
func (c *Config) Validate() error {
	switch c.Source.Driver {
	case "postgres", "sqlite":
	default:
		return eris.Errorf("config: unknown source driver %q", c.Source.Driver)
	}
	if c.Source.DatabaseURL == "" {
		return eris.New("config: source.database_url is required")
	}
	if c.CRM.Token == "" {
		return eris.New("config: crm.token is required")
	}

	endpoints := map[string]string{
		"crm.endpoints.upsert_contact":   c.CRM.Endpoints.UpsertContact,
		"crm.endpoints.delete_contact":   c.CRM.Endpoints.DeleteContact,
		"crm.endpoints.add_tags":         c.CRM.Endpoints.AddTags,
		"crm.endpoints.delete_tags":      c.CRM.Endpoints.DeleteTags,
		"crm.endpoints.update_lifecycle": c.CRM.Endpoints.UpdateLifecycle,
	}
	for key, url := range endpoints {
		if url == "" {
			return eris.Errorf("config: %s is required", key)
		}
		if !strings.Contains(url, "{contact}") {
			return eris.Errorf("config: %s must contain the {contact} placeholder", key)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
