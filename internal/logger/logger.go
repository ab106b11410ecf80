// Package logger builds the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a JSON production logger, or a console development logger at debug level.
func New(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProductionConfig().Build()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	return cfg.Build()
}
