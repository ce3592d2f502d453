// Package logging builds the zap loggers used by the CLI and the stream
// server. The level comes from KINELAB_LOG_LEVEL (debug, info, warn, error)
// and defaults to info.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable read by [New].
const EnvLevel = "KINELAB_LOG_LEVEL"

// LevelFromEnv parses KINELAB_LOG_LEVEL. Unknown values fall back to info.
func LevelFromEnv() zapcore.Level {
	return ParseLevel(os.Getenv(EnvLevel))
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a console logger writing to stderr, so it never mixes with
// data printed on stdout.
func New() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(LevelFromEnv())
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// NewJSON returns a production logger for long-running servers.
func NewJSON() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(LevelFromEnv())
	return cfg.Build()
}

// Must is New that falls back to a no-op logger instead of failing.
func Must() *zap.Logger {
	log, err := New()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
