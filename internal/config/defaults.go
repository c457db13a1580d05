package config

import (
	"strings"
	"time"
)

// GetDefaultConfig returns a complete configuration populated with defaults,
// suitable for local development against the in-memory KV store and SQLite.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with sensible defaults. It is
// called after unmarshalling file/environment configuration so that a
// partially-specified config file still produces a valid Config.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyKVStoreDefaults(&cfg.KVStore)
	applyDSSDefaults(&cfg.DSS)
	applySchedulerDefaults(&cfg.Scheduler)
	applyNotifyDefaults(&cfg.Notify)
	applyWeatherDefaults(&cfg.Weather)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space"}
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.DSN == "" {
		cfg.DSN = "flight_blender.db"
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = time.Hour
	}
}

func applyKVStoreDefaults(cfg *KVStoreConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "memory"
	}
	if cfg.Dir == "" {
		cfg.Dir = "./data/kv"
	}
}

func applyDSSDefaults(cfg *DSSConfig) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.NotifyTimeout == 0 {
		cfg.NotifyTimeout = 5 * time.Second
	}
	if cfg.KVTimeout == 0 {
		cfg.KVTimeout = 2 * time.Second
	}
}

func applySchedulerDefaults(cfg *SchedulerConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.ConformancePeriod == 0 {
		cfg.ConformancePeriod = 5 * time.Second
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 256
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
}

func applyNotifyDefaults(cfg *NotifyConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "inprocess"
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "flight-blender.operational-updates"
	}
}

func applyWeatherDefaults(cfg *WeatherConfig) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
}
