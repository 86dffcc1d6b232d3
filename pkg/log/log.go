// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface used across the bridge
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	With(fields ...zap.Field) Logger
	Sync() error
}

// zapLogger wraps a zap.Logger
type zapLogger struct {
	log *zap.Logger
}

// New creates a new logger at info level
func New() Logger {
	return NewWithLevel("info")
}

// NewWithLevel creates a new logger with a specific level
func NewWithLevel(level string) Logger {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	case "fatal":
		lvl = zapcore.FatalLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return &noOpLogger{}
	}

	return &zapLogger{log: log.Named("adbridge")}
}

func (l *zapLogger) Debug(msg string) { l.log.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.log.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.log.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.log.Error(msg) }
func (l *zapLogger) Fatal(msg string) { l.log.Fatal(msg) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{log: l.log.With(fields...)}
}

func (l *zapLogger) Sync() error { return l.log.Sync() }

// NoOp returns a no-op logger
func NoOp() Logger {
	return &noOpLogger{}
}

type noOpLogger struct{}

func (n *noOpLogger) Debug(msg string)                {}
func (n *noOpLogger) Info(msg string)                 {}
func (n *noOpLogger) Warn(msg string)                 {}
func (n *noOpLogger) Error(msg string)                {}
func (n *noOpLogger) Fatal(msg string)                {}
func (n *noOpLogger) With(fields ...zap.Field) Logger { return n }
func (n *noOpLogger) Sync() error                     { return nil }
