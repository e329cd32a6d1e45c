// Package logging builds zap loggers for the command line tools.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level ("debug", "info", "warn", "error") and the
// encoding ("console" or "json") of a logger. Empty fields select info and
// console.
type Config struct {
	Level  string
	Format string
}

// ConfigFromEnv reads LOG_LEVEL and LOG_FORMAT.
func ConfigFromEnv() Config {
	return Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// Merge returns c with empty fields taken from fallback.
func (c Config) Merge(fallback Config) Config {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = fallback.Level
	}
	if strings.TrimSpace(c.Format) == "" {
		c.Format = fallback.Format
	}
	return c
}

// New builds a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	zapCfg, err := build(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func build(cfg Config) (zap.Config, error) {
	level := strings.ToLower(strings.TrimSpace(cfg.Level))
	if level == "" {
		level = "info"
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = "console"
	}

	var zapCfg zap.Config
	switch format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return zap.Config{}, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	atomLevel := zap.NewAtomicLevel()
	if err := atomLevel.UnmarshalText([]byte(level)); err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	zapCfg.Level = atomLevel
	zapCfg.DisableStacktrace = true
	return zapCfg, nil
}
