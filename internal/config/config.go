// Package config loads application configuration from config.yaml and the
// environment, and owns global logger setup. Every tunable the matching
// engine uses (component weights, confidence bands, decision thresholds)
// is a named setting here, never a literal duplicated at a call site.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/compare"
	"github.com/shoreham-data/reconcile-cli/internal/similarity"
)

// Config holds the full application configuration.
type Config struct {
	Jurisdiction JurisdictionConfig   `yaml:"jurisdiction" mapstructure:"jurisdiction"`
	Similarity   similarity.Weights   `yaml:"similarity" mapstructure:"similarity"`
	Compare      compare.Weights      `yaml:"compare" mapstructure:"compare"`
	Thresholds   collision.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
	Ingest       IngestConfig         `yaml:"ingest" mapstructure:"ingest"`
	Store        StoreConfig          `yaml:"store" mapstructure:"store"`
	Server       ServerConfig         `yaml:"server" mapstructure:"server"`
	Batch        BatchConfig          `yaml:"batch" mapstructure:"batch"`
	Log          LogConfig            `yaml:"log" mapstructure:"log"`
}

// JurisdictionConfig names the jurisdiction and its reference data.
type JurisdictionConfig struct {
	City        string `yaml:"city" mapstructure:"city"`
	RefdataPath string `yaml:"refdata_path" mapstructure:"refdata_path"`
}

// IngestConfig configures the two source readers.
type IngestConfig struct {
	TaxRollPath     string `yaml:"tax_roll_path" mapstructure:"tax_roll_path"`
	DonorRosterPath string `yaml:"donor_roster_path" mapstructure:"donor_roster_path"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// BatchConfig configures batch comparison.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
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
	v.SetEnvPrefix("RECONCILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("jurisdiction.city", "NEW SHOREHAM")
	v.SetDefault("jurisdiction.refdata_path", "")
	v.SetDefault("similarity.edit", 0.80)
	v.SetDefault("similarity.phonetic", 0.15)
	v.SetDefault("similarity.positional", 0.05)
	v.SetDefault("similarity.exact_at", 1.0)
	v.SetDefault("similarity.high_at", 0.9)
	v.SetDefault("similarity.medium_at", 0.7)
	v.SetDefault("similarity.low_at", 0.5)
	v.SetDefault("compare.name", 0.5)
	v.SetDefault("compare.contact", 0.5)
	v.SetDefault("compare.primary_address", 0.6)
	v.SetDefault("compare.secondary_address", 0.4)
	v.SetDefault("compare.street_number", 0.20)
	v.SetDefault("compare.street_name", 0.35)
	v.SetDefault("compare.street_type", 0.05)
	v.SetDefault("compare.unit", 0.05)
	v.SetDefault("compare.city", 0.15)
	v.SetDefault("compare.state", 0.05)
	v.SetDefault("compare.zip", 0.15)
	v.SetDefault("compare.po_box", 0.80)
	v.SetDefault("thresholds.same_owner", 0.87)
	v.SetDefault("thresholds.name_floor", 0.30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "reconcile.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("batch.concurrency", 8)
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
