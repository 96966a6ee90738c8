package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ReliabilityEntry maps a source-name fragment to a base reliability.
// Matching is case-insensitive substring, first entry wins, so order matters.
type ReliabilityEntry struct {
	Fragment string  `yaml:"fragment" mapstructure:"fragment"`
	Weight   float64 `yaml:"weight" mapstructure:"weight"`
}

// ScoringConfig holds the thresholds and heuristic tables the scorer uses.
// Values are fixed once a registry is constructed.
type ScoringConfig struct {
	SignalThreshold     int     `yaml:"signal_threshold" mapstructure:"signal_threshold"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	PruneMinSignal      int     `yaml:"prune_min_signal" mapstructure:"prune_min_signal"`
	PruneMinConfidence  float64 `yaml:"prune_min_confidence" mapstructure:"prune_min_confidence"`

	FreshnessWeights  map[string]float64 `yaml:"freshness_weights" mapstructure:"freshness_weights"`
	SourceReliability []ReliabilityEntry `yaml:"source_reliability" mapstructure:"source_reliability"`

	MetricKeywords []string `yaml:"metric_keywords" mapstructure:"metric_keywords"`
	HedgeWords     []string `yaml:"hedge_words" mapstructure:"hedge_words"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
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
	v.SetEnvPrefix("CITATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 25.0)
	v.SetDefault("server.rate_limit_burst", 50)
	v.SetDefault("scoring.signal_threshold", 60)
	v.SetDefault("scoring.confidence_threshold", 0.5)
	v.SetDefault("scoring.prune_min_signal", 30)
	v.SetDefault("scoring.prune_min_confidence", 0.3)

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
