// Package logging builds the zap loggers used by haloctl and the mock server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log encoding.
type Format string

const (
	// FormatJSON writes one JSON object per entry.
	FormatJSON Format = "json"

	// FormatConsole writes colored, human-readable lines.
	FormatConsole Format = "console"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum enabled level (debug, info, warn, error).
	Level string

	// Format is the encoding. Console output also enables development mode.
	Format Format

	// OutputPaths lists the sinks, e.g. "stderr" or a file path.
	OutputPaths []string

	// DisableCaller omits the caller from every entry.
	DisableCaller bool
}

// DefaultConfig logs info and above as JSON to stderr. haloctl writes command
// output to stdout, so logs stay out of the way.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      FormatJSON,
		OutputPaths: []string{"stderr"},
	}
}

// NewLogger creates a zap logger from cfg.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	development := cfg.Format == FormatConsole

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       development,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: !development,
		Encoding:          string(formatOrDefault(cfg.Format)),
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}
	if !development {
		zapConfig.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}

// New returns a console debug logger when dev is set and a JSON logger at
// level otherwise. An empty level means info.
func New(dev bool, level string) (*zap.Logger, error) {
	cfg := DefaultConfig()
	if level != "" {
		cfg.Level = level
	}
	if dev {
		cfg.Format = FormatConsole
		if level == "" {
			cfg.Level = "debug"
		}
	}
	return NewLogger(cfg)
}

// ParseLevel converts a case-insensitive level name. An empty name is info.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func formatOrDefault(f Format) Format {
	if f == "" {
		return FormatJSON
	}
	return f
}
