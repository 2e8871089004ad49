// Package config loads and validates application configuration from
// defaults, an optional config.yaml file, and CHATLORE_* environment
// variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every error returned by Load.
var ErrConfiguration = errors.New("configuration error")

// Default values for optional parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultServerAddr           = ":8080"
	DefaultServerRequestTimeout = 60 * time.Second

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 0.7
	DefaultGeminiMaxAttempts = 3
	DefaultGeminiRetryDelay  = time.Second

	DefaultClusterEps       = 0.3
	DefaultClusterMinPoints = 2
	DefaultClusterMetric    = "cosine"
)

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Search SearchConfig `mapstructure:"search"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"            validate:"required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=10m"`
}

// GeminiConfig controls the insight oracle. APIKey is optional; without it
// the oracle is disabled and AI-backed operations degrade to fallbacks.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"        validate:"required"`
	Temperature float32       `mapstructure:"temperature"  validate:"min=0,max=2"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1,max=10"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"  validate:"min=100ms,max=1m"`
}

// SearchConfig tunes topic clustering.
type SearchConfig struct {
	ClusterEps       float64 `mapstructure:"cluster_eps"        validate:"gt=0,lte=2"`
	ClusterMinPoints int     `mapstructure:"cluster_min_points" validate:"min=1"`
	ClusterMetric    string  `mapstructure:"cluster_metric"     validate:"oneof=cosine euclidean"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. config.yaml file (optional)
// 3. CHATLORE_* environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CHATLORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		// Missing config file is fine, defaults and env apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", DefaultServerRequestTimeout)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.max_attempts", DefaultGeminiMaxAttempts)
	v.SetDefault("gemini.retry_delay", DefaultGeminiRetryDelay)

	v.SetDefault("search.cluster_eps", DefaultClusterEps)
	v.SetDefault("search.cluster_min_points", DefaultClusterMinPoints)
	v.SetDefault("search.cluster_metric", DefaultClusterMetric)
}
