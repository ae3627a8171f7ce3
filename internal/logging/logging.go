// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the subset of application configuration the logger needs.
type Config interface {
	GetAppName() string
	GetLogLevel() string
	GetLogDirectory() string
	GetLogMaxSizeMB() int
	GetLogMaxBackups() int
	GetLogMaxAgeDays() int
	IsProduction() bool
	IsTest() bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger returns a text logger on stderr in development, a JSON logger
// on stderr plus a rotated file in production, and a discarding logger in
// tests. The returned closer flushes and closes the log file.
func NewLogger(cfg Config) (*slog.Logger, io.Closer) {
	if cfg.IsTest() {
		return slog.New(slog.DiscardHandler), nopCloser{}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.GetLogLevel())}
	if !cfg.IsProduction() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}
	}

	file := RotatingFile(cfg)
	return slog.New(slog.NewJSONHandler(io.MultiWriter(os.Stderr, file), opts)), file
}

// RotatingFile returns the lumberjack writer for <logsdir>/<appname>.log.
func RotatingFile(cfg Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.GetLogDirectory(), cfg.GetAppName()+".log"),
		MaxSize:    cfg.GetLogMaxSizeMB(),
		MaxBackups: cfg.GetLogMaxBackups(),
		MaxAge:     cfg.GetLogMaxAgeDays(),
		Compress:   true,
	}
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
