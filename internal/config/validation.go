package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks structural constraints on cfg (required fields, value
// ranges, enum membership) via struct tags. It does not reach out to the
// network, so DSS reachability is not checked.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
