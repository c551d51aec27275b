package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every construction-time validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports one invalid construction parameter.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func requirePositive(field string, v float64) error {
	if !(v > 0) {
		return configErr(field, v, "must be > 0")
	}
	return nil
}

func requirePositiveInt(field string, v int) error {
	if v <= 0 {
		return configErr(field, v, "must be > 0")
	}
	return nil
}
