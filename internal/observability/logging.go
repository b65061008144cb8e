// Package observability provides logging for the battle simulator.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Zeldazackman/VoreWar/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("observability.NewLogger: parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("observability.NewLogger: unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Every notice is kept.
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("observability.NewLogger: building logger: %w", err)
	}
	return logger, nil
}

// ZapEventLog writes battle notices as Info entries tagged with the turn
// they happened on.
type ZapEventLog struct {
	logger *zap.Logger
	turn   func() int
}

// NewZapEventLog returns an event log backed by logger. turn may be nil,
// in which case entries carry no turn field.
//
// Precondition: logger must be non-nil.
func NewZapEventLog(logger *zap.Logger, turn func() int) *ZapEventLog {
	if logger == nil {
		panic("observability.NewZapEventLog: logger must not be nil")
	}
	return &ZapEventLog{logger: logger.Named("battle"), turn: turn}
}

// Notice implements the battle event sink.
func (e *ZapEventLog) Notice(msg string) {
	if e.turn == nil {
		e.logger.Info(msg, zap.String("kind", "notice"))
		return
	}
	e.logger.Info(msg, zap.String("kind", "notice"), zap.Int("turn", e.turn()))
}
