// Package config loads and validates the coordination engine's static
// configuration: logging, telemetry, the operator API server, the
// relational declaration store, the KV/stream store, DSS connectivity, the
// scheduler worker pool, and the notification bus.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (BLENDER_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Environment variables only override keys that the configuration file
// sets; when no configuration file is found, Load returns the defaults and
// does not read the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the coordination engine's full static configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	KVStore   KVStoreConfig   `mapstructure:"kvstore" yaml:"kvstore"`
	DSS       DSSConfig       `mapstructure:"dss" yaml:"dss"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify" yaml:"notify"`
	Weather   WeatherConfig   `mapstructure:"weather" yaml:"weather"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool            `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string          `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool            `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64         `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls the Pyroscope continuous profiler.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ServerConfig controls the operator/peer-USS HTTP API.
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Port         int           `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	JWTSecret    string        `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`
}

// DatabaseConfig configures the relational flight declaration store.
type DatabaseConfig struct {
	// Driver selects the GORM dialect: "postgres" (production) or "sqlite" (dev/test).
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite" yaml:"driver"`
	DSN    string `mapstructure:"dsn" validate:"required" yaml:"dsn"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// KVStoreConfig configures the key-value/stream store (component A).
type KVStoreConfig struct {
	// Backend selects the kvstore implementation: "badger" (durable) or "memory".
	Backend string `mapstructure:"backend" validate:"required,oneof=badger memory" yaml:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// DSSConfig configures outbound calls to the Discovery and Synchronization
// Service and its peer-USS notification path.
type DSSConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required" yaml:"base_url"`
	TokenURL        string        `mapstructure:"token_url" validate:"required" yaml:"token_url"`
	ClientID        string        `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret    string        `mapstructure:"client_secret" yaml:"client_secret,omitempty"`
	Audience        string        `mapstructure:"audience" yaml:"audience"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	NotifyTimeout   time.Duration `mapstructure:"notify_timeout" yaml:"notify_timeout"`
	KVTimeout       time.Duration `mapstructure:"kv_timeout" yaml:"kv_timeout"`
	USSBaseURL      string        `mapstructure:"uss_base_url" validate:"required" yaml:"uss_base_url"`
}

// SchedulerConfig configures the background worker pool that runs
// conformance checks and DSS housekeeping jobs.
type SchedulerConfig struct {
	Workers           int           `mapstructure:"workers" validate:"omitempty,min=1" yaml:"workers"`
	ConformancePeriod time.Duration `mapstructure:"conformance_period" yaml:"conformance_period"`
	QueueDepth        int           `mapstructure:"queue_depth" validate:"omitempty,min=1" yaml:"queue_depth"`
	MaxAttempts       int           `mapstructure:"max_attempts" validate:"omitempty,min=1" yaml:"max_attempts"`
}

// NotifyConfig configures the operational-update bus (SPEC_FULL §10.3).
type NotifyConfig struct {
	// Backend selects "inprocess" (single-node) or "amqp" (multi-node, via RabbitMQ).
	Backend  string `mapstructure:"backend" validate:"required,oneof=inprocess amqp" yaml:"backend"`
	AMQPURL  string `mapstructure:"amqp_url" yaml:"amqp_url,omitempty"`
	Exchange string `mapstructure:"exchange" yaml:"exchange,omitempty"`
}

// WeatherConfig configures the advisory weather client (SPEC_FULL §10.2).
type WeatherConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning an actionable error if no config
// file exists at the resolved path.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  blender init\n\n"+
				"Or specify a custom config file:\n"+
				"  blender serve --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("BLENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook lets config files express durations as human-readable
// strings ("30s", "5m") instead of raw nanosecond integers.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "flight-blender")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "flight-blender")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
