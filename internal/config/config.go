// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/refstore"
	"github.com/sells-group/outreach-cli/internal/zipcounty"
)

// Config holds the full application configuration.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	ZipMap       ZipMapConfig       `yaml:"zipmap" mapstructure:"zipmap"`
	Match        MatchConfig        `yaml:"match" mapstructure:"match"`
	Participants ParticipantsConfig `yaml:"participants" mapstructure:"participants"`
	Report       ReportConfig       `yaml:"report" mapstructure:"report"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the reference store backend.
type StoreConfig struct {
	Driver      string              `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string              `yaml:"database_url" mapstructure:"database_url"`
	Pool        refstore.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ZipMapConfig configures the ZIP→county map build and its cache.
type ZipMapConfig struct {
	CachePath  string                `yaml:"cache_path" mapstructure:"cache_path"`
	RangesPath string                `yaml:"ranges_path" mapstructure:"ranges_path"`
	Build      zipcounty.BuildConfig `yaml:"build" mapstructure:"build"`
}

// MatchConfig configures the batch resolution phase.
type MatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ParticipantsConfig configures campaign export ingestion.
type ParticipantsConfig struct {
	Charset string `yaml:"charset" mapstructure:"charset"`
}

// ReportConfig configures the export paths.
type ReportConfig struct {
	MatchedPath   string `yaml:"matched_path" mapstructure:"matched_path"`
	UnmatchedPath string `yaml:"unmatched_path" mapstructure:"unmatched_path"`
	SummaryPath   string `yaml:"summary_path" mapstructure:"summary_path"`
}

// ServerConfig configures the read-only status server.
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
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "outreach.db")
	v.SetDefault("zipmap.cache_path", "zipcode_county.json")
	v.SetDefault("zipmap.build.zip_low", 43000)
	v.SetDefault("zipmap.build.zip_high", 45999)
	v.SetDefault("match.concurrency", 8)
	v.SetDefault("report.matched_path", "matched.csv")
	v.SetDefault("report.unmatched_path", "unmatched_debug.csv")
	v.SetDefault("report.summary_path", "")
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
