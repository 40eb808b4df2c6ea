// Package logger wraps zap with the level-string configuration used
// across the server and CLI entry points.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the configured zap instance. The zero value is usable
// only after Init.
type Logger struct {
	Log *zap.Logger
}

// New returns an uninitialized Logger; call Init before logging.
func New() *Logger {
	return &Logger{}
}

// Init builds a production zap logger at the given level ("Debug",
// "Info", "Warn", "Error"). It replaces any previously built logger.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = built
	return nil
}
