// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production JSON logger at the given level. An unparsable
// level falls back to info; the returned bool reports whether that happened.
func New(level string) (*zap.Logger, bool, error) {
	config := zap.NewProductionConfig()

	fallback := false
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
		fallback = true
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, false, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, fallback, nil
}
