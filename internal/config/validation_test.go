package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "test.db"
	cfg.DSS.BaseURL = "https://dss.example.com"
	cfg.DSS.TokenURL = "https://auth.example.com/token"
	cfg.DSS.USSBaseURL = "https://uss.example.com"
	return cfg
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsMissingDSSBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DSS.BaseURL = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownDatabaseDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "mysql"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsZeroShutdownTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.ShutdownTimeout = 0
	assert.Error(t, Validate(cfg))
}
