// Package logger wraps zap with the printf-style surface used across the
// analyzer plus structured helpers for the pipeline.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zap.Field

type Config struct {
	Level       string
	Development bool
	OutputPaths []string
}

type Logger struct {
	z *zap.Logger
	s *zap.SugaredLogger
}

func NewWithConfig(cfg Config) (*Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}
	if cfg.Development {
		zcfg.Sampling = nil
	}
	z, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return wrap(z), nil
}

func NewNop() *Logger { return wrap(zap.NewNop()) }

func wrap(z *zap.Logger) *Logger {
	return &Logger{z: z, s: z.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
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

func (l *Logger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

func (l *Logger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...Field) *Logger { return wrap(l.z.With(fields...)) }

func (l *Logger) Sync() error { return l.z.Sync() }

func String(key, val string) Field         { return zap.String(key, val) }
func Int(key string, val int) Field        { return zap.Int(key, val) }
func Int64(key string, val int64) Field    { return zap.Int64(key, val) }
func Bool(key string, val bool) Field      { return zap.Bool(key, val) }
func Strings(key string, v []string) Field { return zap.Strings(key, v) }
func Err(err error) Field                  { return zap.Error(err) }
