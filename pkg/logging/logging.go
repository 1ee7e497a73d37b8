// Package logging builds the zap logger shared by both listeners.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	// Format is the output format: json or text
	Format string `yaml:"format" envconfig:"LOG_FORMAT" default:"json"`
}

// DefaultConfig returns the logging defaults
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
	}
}

// Validate checks level and format against the supported values
func (c Config) Validate() error {
	if err := ValidateLevel(c.Level); err != nil {
		return err
	}
	return ValidateFormat(c.Format)
}

// ValidateLevel accepts debug, info, warn and error
func ValidateLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be one of debug, info, warn, error, got: %q", level)
}

// ValidateFormat accepts json and text
func ValidateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("must be json or text, got: %q", format)
	}
	return nil
}

// NewLogger creates a zap logger. JSON uses the production encoder, text the
// development (console) encoder.
func NewLogger(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	return zapCfg.Build()
}

// ParseLevel converts a string level to zapcore.Level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
