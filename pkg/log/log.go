// Copyright 2024 The RINA Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides structured logging with key/value context on top of
// zap. The root logger is process-global and is configured once via Setup.
package log

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the verbosity level of a log statement.
type Level = zapcore.Level

// Available levels.
const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Logger describes the logger interface. Context is given as alternating
// string keys and arbitrary values.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Config configures the process-wide logger.
type Config struct {
	// Level of the logging (debug|info|error), defaults to info.
	Level string `toml:"level,omitempty"`
	// Console forces the human-readable console encoder instead of JSON.
	Console bool `toml:"console,omitempty"`
}

// InitDefaults populates unset fields with default values.
func (cfg *Config) InitDefaults() {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
}

// Setup configures the process-wide root logger. It must be called before
// the first use of the root logger.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("unsupported log level %q", cfg.Level)
	}
	zCfg := zap.NewProductionConfig()
	zCfg.Level = zap.NewAtomicLevelAt(lvl)
	zCfg.DisableStacktrace = true
	if cfg.Console {
		zCfg.Encoding = "console"
		zCfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zLogger, err := zCfg.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(zLogger)
	return nil
}

// New creates a logger with the given context, based on the root logger.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Root returns the root logger. It never returns nil.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return &logger{logger: zap.NewNop()}
}

// Flush writes out buffered log entries.
func Flush() error {
	return zap.L().Sync()
}

// HandlePanic catches panics, logs them and panics again with the same
// value. Every goroutine must have this as the first deferred call.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg),
			zap.ByteString("stack", debug.Stack()))
		_ = zap.L().Sync()
		panic(msg)
	}
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(lvl)
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(ctx[i].(string), ctx[i+1]))
	}
	return fields
}
