// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog is the console log of the collision tools. It discards
// everything until Init is called.
package conlog

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	current atomic.Pointer[zap.Logger]
)

func init() {
	current.Store(zap.NewNop())
}

type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Quiet disables the console core, only the file gets written.
	Quiet bool
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func Init(cfg Config) {
	lvl := parseLevel(cfg.Level)
	var cores []zapcore.Core
	ec := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	if !cfg.Quiet {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.AddSync(os.Stderr), lvl))
	}
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
		fc := ec
		fc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fc), zapcore.AddSync(w), lvl))
	}
	SetLogger(zap.New(zapcore.NewTee(cores...)))
}

// SetLogger replaces the logger, nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

func Logger() *zap.Logger {
	return current.Load()
}

func Printf(format string, v ...interface{}) {
	current.Load().Sugar().Infof(format, v...)
}

// DPrintf only prints at debug level.
func DPrintf(format string, v ...interface{}) {
	current.Load().Sugar().Debugf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	current.Load().Sugar().Warnf(format, v...)
}

func Sync() {
	_ = current.Load().Sync()
}
